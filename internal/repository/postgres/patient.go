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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

// Create inserts a new patient row. The file number comes from a database
// sequence so the desk never supplies one; the assigned values are read
// back into the passed record.
func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, full_name, dob, job, address, phone, email,
			medical_history, questions, medications,
			total_cost, visits, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING file_number
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()

	err := r.db.QueryRowxContext(ctx, query,
		patient.ID,
		patient.FullName,
		patient.DOB,
		patient.Job,
		patient.Address,
		patient.Phone,
		patient.Email,
		patient.MedicalHistory,
		patient.Questions,
		patient.Medications,
		patient.TotalCost,
		patient.Visits,
		patient.CreatedAt,
	).Scan(&patient.FileNumber)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT * FROM patients ORDER BY created_at DESC`
	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// Search matches names and phones by substring and file numbers exactly,
// mirroring the booking-modal lookup.
func (r *patientRepository) Search(ctx context.Context, term string, limit int) ([]*model.Patient, error) {
	query := `
		SELECT * FROM patients
		WHERE full_name ILIKE '%' || $1 || '%'
		   OR file_number = $1
		   OR phone LIKE '%' || $1 || '%'
		LIMIT $2
	`
	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, term, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) UpdateTotalCost(ctx context.Context, id uuid.UUID, totalCost float64) error {
	query := `UPDATE patients SET total_cost = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, totalCost, id)
	if err != nil {
		return fmt.Errorf("failed to update total cost: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}
	return nil
}

// UpdateVisits rewrites the entire embedded visit list. There is no
// row-level visit update; this is the stored-data contract.
func (r *patientRepository) UpdateVisits(ctx context.Context, id uuid.UUID, visits model.VisitList) error {
	query := `UPDATE patients SET visits = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, visits, id)
	if err != nil {
		return fmt.Errorf("failed to update visits: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM patients WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

// Exists backs the post-delete verification read: row-level policies can
// report a delete as successful without removing the row.
func (r *patientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to check patient existence: %w", err)
	}
	return exists, nil
}
