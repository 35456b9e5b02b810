package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MedicalHistory is the fixed set of intake history flags. The key set is
// closed on purpose: every flag is a named field so a typo is a compile
// error, not a silently-false lookup.
type MedicalHistory struct {
	HighBloodPressure  bool `json:"high_blood_pressure"`
	Diabetes           bool `json:"diabetes"`
	StomachUlcer       bool `json:"stomach_ulcer"`
	RheumaticFever     bool `json:"rheumatic_fever"`
	Hepatitis          bool `json:"hepatitis"`
	PregnancyOrNursing bool `json:"pregnancy_or_nursing"`
}

// MedicalQuestions are the yes/no intake questions. An unanswered question
// is stored as false.
type MedicalQuestions struct {
	AntibioticAllergy bool `json:"antibiotic_allergy"`
	AnesthesiaAllergy bool `json:"anesthesia_allergy"`
	HeartProblems     bool `json:"heart_problems"`
	KidneyProblems    bool `json:"kidney_problems"`
	LiverProblems     bool `json:"liver_problems"`
	RegularMedication bool `json:"regular_medication"`
}

type Medications struct {
	BloodPressure bool   `json:"blood_pressure"`
	Diabetes      bool   `json:"diabetes"`
	BloodThinners bool   `json:"blood_thinners"`
	Other         string `json:"other"`
}

// Visit is a single dated encounter with the amount paid that day. Visits
// live inside the patient row, so ids are generated client-side and the
// whole list is rewritten on every mutation.
type Visit struct {
	ID         string  `json:"id"`
	VisitDate  string  `json:"visit_date"`
	Procedure  string  `json:"procedure"`
	PaidAmount float64 `json:"paid_amount"`
}

// VisitList is stored as a JSONB array on the patients row, newest first.
type VisitList []Visit

func (v VisitList) Value() (driver.Value, error) {
	if v == nil {
		v = VisitList{}
	}
	return json.Marshal(v)
}

func (v *VisitList) Scan(src interface{}) error {
	return scanJSON(src, v)
}

func (m MedicalHistory) Value() (driver.Value, error)   { return json.Marshal(m) }
func (m *MedicalHistory) Scan(src interface{}) error    { return scanJSON(src, m) }
func (q MedicalQuestions) Value() (driver.Value, error) { return json.Marshal(q) }
func (q *MedicalQuestions) Scan(src interface{}) error  { return scanJSON(src, q) }
func (m Medications) Value() (driver.Value, error)      { return json.Marshal(m) }
func (m *Medications) Scan(src interface{}) error       { return scanJSON(src, m) }

func scanJSON(src, dst interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON field", src)
	}
}

type Patient struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	FileNumber     string           `db:"file_number" json:"file_number"`
	FullName       string           `db:"full_name" json:"full_name"`
	DOB            string           `db:"dob" json:"dob"`
	Job            string           `db:"job" json:"job"`
	Address        string           `db:"address" json:"address"`
	Phone          string           `db:"phone" json:"phone"`
	Email          string           `db:"email" json:"email"`
	MedicalHistory MedicalHistory   `db:"medical_history" json:"medical_history"`
	Questions      MedicalQuestions `db:"questions" json:"questions"`
	Medications    Medications      `db:"medications" json:"medications"`
	TotalCost      float64          `db:"total_cost" json:"total_cost"`
	Visits         VisitList        `db:"visits" json:"visits"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

type RegisterPatientRequest struct {
	FullName       string           `json:"full_name" binding:"required"`
	DOB            string           `json:"dob"`
	Job            string           `json:"job"`
	Address        string           `json:"address"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email"`
	MedicalHistory MedicalHistory   `json:"medical_history"`
	Questions      MedicalQuestions `json:"questions"`
	Medications    Medications      `json:"medications"`
}

// UpdateCostRequest carries the agreed total treatment cost. A missing
// value means 0, matching the blank-input convention of the desk UI.
type UpdateCostRequest struct {
	TotalCost *float64 `json:"total_cost"`
}

type VisitDraft struct {
	VisitDate  string  `json:"visit_date"`
	Procedure  string  `json:"procedure"`
	PaidAmount float64 `json:"paid_amount"`
}

// LedgerTotals is the derived financial summary for a patient. Remaining is
// never stored; it is recomputed from the visit list on every read and may
// be negative when a patient has overpaid.
type LedgerTotals struct {
	TotalCost float64 `json:"total_cost"`
	TotalPaid float64 `json:"total_paid"`
	Remaining float64 `json:"remaining"`
}
