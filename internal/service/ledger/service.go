package ledger

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/frontdesk-api/internal/model"
	"github.com/clinicdesk/frontdesk-api/internal/repository"
	"github.com/clinicdesk/frontdesk-api/pkg/errors"
)

// Service owns the per-patient financial ledger: the agreed treatment cost
// and the embedded visit list it is settled against.
type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

// ComputeTotals derives the paid and remaining amounts from the visit
// list. Remaining is total cost minus payments and may go negative on
// overpayment; it is never clamped. Unparsable payment amounts count as 0
// so the totals stay numeric.
func ComputeTotals(patient *model.Patient) model.LedgerTotals {
	var paid float64
	for _, v := range patient.Visits {
		if math.IsNaN(v.PaidAmount) || math.IsInf(v.PaidAmount, 0) {
			continue
		}
		paid += v.PaidAmount
	}
	return model.LedgerTotals{
		TotalCost: patient.TotalCost,
		TotalPaid: paid,
		Remaining: patient.TotalCost - paid,
	}
}

// SetAgreedCost persists a new agreed total cost. Only the cost field is
// written; the in-memory patient is updated only after the store accepts
// the change.
func (s *Service) SetAgreedCost(ctx context.Context, patient *model.Patient, newCost float64) (*model.Patient, error) {
	if newCost < 0 {
		return nil, errors.Validation("total cost cannot be negative")
	}
	if math.IsNaN(newCost) || math.IsInf(newCost, 0) {
		newCost = 0
	}

	if err := s.repo.UpdateTotalCost(ctx, patient.ID, newCost); err != nil {
		return nil, errors.Persistence("update total cost", err)
	}

	updated := *patient
	updated.TotalCost = newCost
	return &updated, nil
}

// AddVisit prepends a new visit and rewrites the whole list. Newest-first
// ordering is a consequence of prepending, not a sort.
func (s *Service) AddVisit(ctx context.Context, patient *model.Patient, draft model.VisitDraft) (*model.Patient, error) {
	if draft.Procedure == "" {
		return nil, errors.Validation("procedure is required")
	}
	if draft.VisitDate == "" {
		draft.VisitDate = time.Now().Format("2006-01-02")
	}
	if math.IsNaN(draft.PaidAmount) || math.IsInf(draft.PaidAmount, 0) {
		draft.PaidAmount = 0
	}

	visit := model.Visit{
		ID:         uuid.New().String(),
		VisitDate:  draft.VisitDate,
		Procedure:  draft.Procedure,
		PaidAmount: draft.PaidAmount,
	}

	visits := make(model.VisitList, 0, len(patient.Visits)+1)
	visits = append(visits, visit)
	visits = append(visits, patient.Visits...)

	if err := s.repo.UpdateVisits(ctx, patient.ID, visits); err != nil {
		return nil, errors.Persistence("add visit", err)
	}

	updated := *patient
	updated.Visits = visits
	return &updated, nil
}

// RemoveVisit filters the matching entry out and rewrites the list. An
// unknown id still results in a write of the unchanged list.
func (s *Service) RemoveVisit(ctx context.Context, patient *model.Patient, visitID string) (*model.Patient, error) {
	visits := make(model.VisitList, 0, len(patient.Visits))
	for _, v := range patient.Visits {
		if v.ID == visitID {
			continue
		}
		visits = append(visits, v)
	}

	if err := s.repo.UpdateVisits(ctx, patient.ID, visits); err != nil {
		return nil, errors.Persistence("remove visit", err)
	}

	updated := *patient
	updated.Visits = visits
	return &updated, nil
}
