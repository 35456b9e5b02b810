package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/frontdesk-api/internal/model"
)

func TestAppointmentCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	start := time.Date(2024, time.March, 15, 14, 0, 0, 0, time.Local)
	appointment := &model.Appointment{
		PatientID: uuid.New(),
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Procedure: "كشف",
		Status:    model.AppointmentStatusScheduled,
	}

	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), appointment)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, appointment.ID)
	assert.False(t, appointment.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentListInRange(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(db)

	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.Local)

	start := time.Date(2024, time.March, 15, 14, 0, 0, 0, time.Local)
	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "start_time", "end_time",
		"procedure", "status", "notes", "created_at",
		"patient_name", "patient_file_number", "patient_phone",
	}).AddRow(
		uuid.New(), uuid.New(), start, start.Add(30*time.Minute),
		"كشف", "scheduled", "", time.Now(),
		"Ahmed Mostafa", "12", "01001234567",
	)

	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs(from, to).
		WillReturnRows(rows)

	appointments, err := repo.ListInRange(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, appointments, 1)

	got := appointments[0]
	assert.Equal(t, "Ahmed Mostafa", got.PatientName)
	assert.Equal(t, "12", got.PatientFileNumber)
	assert.Equal(t, model.AppointmentStatusScheduled, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
