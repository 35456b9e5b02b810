package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicdesk/frontdesk-api/internal/model"
	"github.com/clinicdesk/frontdesk-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, start_time, end_time,
			procedure, status, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Procedure,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// ListInRange returns appointments whose start time falls inside the
// inclusive window, joined with the patient fields the calendar and the
// today board display.
func (r *appointmentRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.start_time, a.end_time,
			   a.procedure, a.status, a.notes, a.created_at,
			   p.full_name AS patient_name,
			   p.file_number AS patient_file_number,
			   p.phone AS patient_phone
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.start_time >= $1
		AND a.start_time <= $2
		ORDER BY a.start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
