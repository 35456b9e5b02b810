package appointment

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicdesk/frontdesk-api/internal/handler"
	"github.com/clinicdesk/frontdesk-api/internal/model"
	"github.com/clinicdesk/frontdesk-api/internal/repository"
	"github.com/clinicdesk/frontdesk-api/internal/service/scheduler"
)

// Handler exposes the today board and the monthly calendar.
type Handler struct {
	scheduler  *scheduler.Service
	outboxRepo repository.OutboxRepository
}

func NewHandler(schedulerSvc *scheduler.Service, outboxRepo repository.OutboxRepository) *Handler {
	return &Handler{
		scheduler:  schedulerSvc,
		outboxRepo: outboxRepo,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.BookAppointment)
		appointments.GET("/today", h.TodaysAppointments)
		appointments.GET("/calendar", h.MonthCalendar)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appointment, err := h.scheduler.Book(c.Request.Context(), &req)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}

	h.emitEvent(c, model.EventAppointmentBooked, appointment)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) TodaysAppointments(c *gin.Context) {
	appointments, err := h.scheduler.TodaysAppointments(c.Request.Context())
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

// MonthCalendar returns the grid view-model for ?year=&month=, defaulting
// to the current month.
func (h *Handler) MonthCalendar(c *gin.Context) {
	now := time.Now()
	year := now.Year()
	month := now.Month()

	if y := c.Query("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid year"))
			return
		}
		year = parsed
	}
	if m := c.Query("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid month"))
			return
		}
		month = time.Month(parsed)
	}

	grid, err := h.scheduler.MonthGrid(c.Request.Context(), year, month)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(grid))
}

func (h *Handler) emitEvent(c *gin.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal %s payload: %v", eventType, err)
		return
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	}
	if err := h.outboxRepo.Create(c.Request.Context(), event); err != nil {
		log.Printf("failed to create outbox event %s: %v", eventType, err)
	}
}
