package patient

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicdesk/frontdesk-api/internal/handler"
	"github.com/clinicdesk/frontdesk-api/internal/model"
	"github.com/clinicdesk/frontdesk-api/internal/repository"
	"github.com/clinicdesk/frontdesk-api/internal/service/directory"
	"github.com/clinicdesk/frontdesk-api/internal/service/ledger"
)

// Handler exposes the patient registry and the per-patient ledger.
type Handler struct {
	directory  *directory.Service
	ledger     *ledger.Service
	outboxRepo repository.OutboxRepository
}

func NewHandler(directorySvc *directory.Service, ledgerSvc *ledger.Service, outboxRepo repository.OutboxRepository) *Handler {
	return &Handler{
		directory:  directorySvc,
		ledger:     ledgerSvc,
		outboxRepo: outboxRepo,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.RegisterPatient)
		patients.GET("", h.ListPatients)
		patients.GET("/search", h.SearchPatients)
		patients.GET("/:id", h.GetPatient)
		patients.DELETE("/:id", h.DeletePatient)

		patients.PUT("/:id/cost", h.UpdateCost)
		patients.POST("/:id/visits", h.AddVisit)
		patients.DELETE("/:id/visits/:visitId", h.RemoveVisit)
	}
}

// patientDetail is the single-patient read model: the stored record plus
// the derived ledger totals, which are never persisted.
type patientDetail struct {
	*model.Patient
	Ledger model.LedgerTotals `json:"ledger"`
}

func detail(p *model.Patient) patientDetail {
	return patientDetail{Patient: p, Ledger: ledger.ComputeTotals(p)}
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patient, err := h.directory.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}

	h.emitEvent(c, model.EventPatientRegistered, patient)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(detail(patient)))
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.directory.List(c.Request.Context())
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}

	if term := c.Query("filter"); term != "" {
		patients = directory.FilterLocal(patients, term)
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) SearchPatients(c *gin.Context) {
	patients, err := h.directory.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	patient, err := h.directory.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail(patient)))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	if err := h.directory.Delete(c.Request.Context(), id); err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}

	h.emitEvent(c, model.EventPatientDeleted, gin.H{"id": id})
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": id}))
}

func (h *Handler) UpdateCost(c *gin.Context) {
	patient, ok := h.loadPatient(c)
	if !ok {
		return
	}

	var req model.UpdateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	newCost := 0.0
	if req.TotalCost != nil {
		newCost = *req.TotalCost
	}

	updated, err := h.ledger.SetAgreedCost(c.Request.Context(), patient, newCost)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail(updated)))
}

func (h *Handler) AddVisit(c *gin.Context) {
	patient, ok := h.loadPatient(c)
	if !ok {
		return
	}

	var draft model.VisitDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.ledger.AddVisit(c.Request.Context(), patient, draft)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}

	h.emitEvent(c, model.EventVisitRecorded, gin.H{
		"patient_id": updated.ID,
		"visit":      updated.Visits[0],
	})
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(detail(updated)))
}

func (h *Handler) RemoveVisit(c *gin.Context) {
	patient, ok := h.loadPatient(c)
	if !ok {
		return
	}

	updated, err := h.ledger.RemoveVisit(c.Request.Context(), patient, c.Param("visitId"))
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail(updated)))
}

func (h *Handler) loadPatient(c *gin.Context) (*model.Patient, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return nil, false
	}

	patient, err := h.directory.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(handler.StatusFor(err), handler.NewErrorResponse(err.Error()))
		return nil, false
	}
	return patient, true
}

// emitEvent records an outbox row for the broker. Event failures are
// logged, not surfaced: the mutation itself already succeeded.
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
