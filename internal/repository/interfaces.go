package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/frontdesk-api/internal/model"
)

// PatientRepository is the gateway to the patients collection. The store
// assigns id, file_number and created_at on insert; visits are an embedded
// list and are always rewritten whole.
type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
	Search(ctx context.Context, term string, limit int) ([]*model.Patient, error)
	UpdateTotalCost(ctx context.Context, id uuid.UUID, totalCost float64) error
	UpdateVisits(ctx context.Context, id uuid.UUID, visits model.VisitList) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AppointmentRepository is the gateway to the appointments collection.
// Range listings join patient display fields for the calendar and the
// today board.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	ListInRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string) error
}
