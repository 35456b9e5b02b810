package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicdesk/frontdesk-api/internal/model"
	"github.com/clinicdesk/frontdesk-api/internal/repository"
	"github.com/clinicdesk/frontdesk-api/pkg/errors"
)

// DefaultSlotMinutes is the fixed appointment slot length.
const DefaultSlotMinutes = 30

const monthCacheTTL = 5 * time.Minute

// Service owns calendar time arithmetic and appointment booking. It keeps
// a short-lived cache of the month bucket; a successful booking
// invalidates the affected month so the grid and the today board re-read
// fresh data on the next request.
type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	cache    *gocache.Cache
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		cache:    gocache.New(monthCacheTTL, 10*time.Minute),
		validate: validator.New(),
		now:      time.Now,
	}
}

// DayWindow returns the inclusive local midnight-to-23:59:59 range of the
// given date.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
	return start, end
}

// MonthWindow returns the first instant of the month through the last
// second of its final day. Day 0 of the following month resolves to the
// last day, which handles 28/29/30/31-day months uniformly.
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(year, month+1, 0, 23, 59, 59, 0, time.Local)
	return start, end
}

// DaysInMonth counts the days of the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

// LayoutMonth computes the calendar grid shape for a Saturday-first week
// (header order Sat, Sun, Mon, Tue, Wed, Thu, Fri). The +1 rotation maps
// Saturday (weekday 6) to offset 0 and Friday (weekday 5) to offset 6.
func LayoutMonth(year int, month time.Month) (leadingBlanks, dayCount int) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	leadingBlanks = (int(first.Weekday()) + 1) % 7
	dayCount = DaysInMonth(year, month)
	return leadingBlanks, dayCount
}

// AppointmentsForDay filters a month's appointments to one calendar day
// and sorts them chronologically. Pure recompute, no caching per cell.
func AppointmentsForDay(monthAppointments []*model.Appointment, day int) []*model.Appointment {
	out := make([]*model.Appointment, 0)
	for _, a := range monthAppointments {
		if a.StartTime.Local().Day() == day {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// ListAppointmentsInRange fetches appointments starting inside the
// inclusive window, joined with patient display fields, in chronological
// order.
func (s *Service) ListAppointmentsInRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	appointments, err := s.repo.ListInRange(ctx, from, to)
	if err != nil {
		return nil, errors.Persistence("list appointments", err)
	}
	return appointments, nil
}

// TodaysAppointments returns the current day's bucket in start-time order.
func (s *Service) TodaysAppointments(ctx context.Context) ([]*model.Appointment, error) {
	from, to := DayWindow(s.now())
	return s.ListAppointmentsInRange(ctx, from, to)
}

// MonthGrid builds the calendar view-model for one month. The month bucket
// is cached briefly; rapid month switching can therefore serve a stale
// bucket until the TTL or the next booking, which matches the single-desk
// last-write-wins model.
func (s *Service) MonthGrid(ctx context.Context, year int, month time.Month) (*model.MonthGrid, error) {
	appointments, err := s.monthAppointments(ctx, year, month)
	if err != nil {
		return nil, err
	}

	leadingBlanks, dayCount := LayoutMonth(year, month)
	grid := &model.MonthGrid{
		Year:          year,
		Month:         month,
		LeadingBlanks: leadingBlanks,
		Days:          make([]model.MonthGridDay, 0, dayCount),
	}
	for day := 1; day <= dayCount; day++ {
		grid.Days = append(grid.Days, model.MonthGridDay{
			Day:          day,
			Appointments: AppointmentsForDay(appointments, day),
		})
	}
	return grid, nil
}

// Book creates a 30-minute appointment (unless the request overrides the
// duration) at date+timeOfDay. No overlap check is performed: overlapping
// bookings are permitted by the model.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Validation(err.Error())
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", req.Date))
	}
	clock, err := time.Parse("15:04", req.TimeOfDay)
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("invalid time %q: expected HH:MM", req.TimeOfDay))
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = DefaultSlotMinutes
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local)
	appointment := &model.Appointment{
		PatientID: req.PatientID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(duration) * time.Minute),
		Procedure: req.Procedure,
		Status:    model.AppointmentStatusScheduled,
		Notes:     req.Notes,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, errors.Persistence("book appointment", err)
	}

	s.cache.Delete(monthKey(start.Year(), start.Month()))
	return appointment, nil
}

func (s *Service) monthAppointments(ctx context.Context, year int, month time.Month) ([]*model.Appointment, error) {
	key := monthKey(year, month)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Appointment), nil
	}

	from, to := MonthWindow(year, month)
	appointments, err := s.ListAppointmentsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, appointments, gocache.DefaultExpiration)
	return appointments, nil
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}
