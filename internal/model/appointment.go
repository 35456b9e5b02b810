package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

// The status set is closed. Booking only ever produces Scheduled; the
// other two states exist so stored data can represent them, no transition
// is wired yet.
const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	StartTime time.Time         `db:"start_time" json:"start_time"`
	EndTime   time.Time         `db:"end_time" json:"end_time"`
	Procedure string            `db:"procedure" json:"procedure"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Notes     string            `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`

	// Joined patient display fields, populated by range queries only.
	PatientName       string `db:"patient_name" json:"patient_name,omitempty"`
	PatientFileNumber string `db:"patient_file_number" json:"patient_file_number,omitempty"`
	PatientPhone      string `db:"patient_phone" json:"patient_phone,omitempty"`
}

type BookAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patient_id" validate:"required"`
	Date            string    `json:"date" validate:"required"`
	TimeOfDay       string    `json:"time_of_day" validate:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Procedure       string    `json:"procedure" validate:"required"`
	Notes           string    `json:"notes"`
}

// MonthGridDay is one calendar cell: the day number and that day's
// appointments in chronological order.
type MonthGridDay struct {
	Day          int            `json:"day"`
	Appointments []*Appointment `json:"appointments"`
}

// MonthGrid is the view-model the calendar renders from. LeadingBlanks is
// the number of empty cells before day 1 in a Saturday-first week.
type MonthGrid struct {
	Year          int            `json:"year"`
	Month         time.Month     `json:"month"`
	LeadingBlanks int            `json:"leading_blanks"`
	Days          []MonthGridDay `json:"days"`
}
