package ledger

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/frontdesk-api/internal/model"
	"github.com/clinicdesk/frontdesk-api/pkg/errors"
)

type fakePatientRepo struct {
	updateCostErr   error
	updateVisitsErr error

	lastCostID   uuid.UUID
	lastCost     float64
	lastVisitsID uuid.UUID
	lastVisits   model.VisitList
	updateCalls  int
}

func (f *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, nil
}
func (f *fakePatientRepo) List(ctx context.Context) ([]*model.Patient, error) { return nil, nil }
func (f *fakePatientRepo) Search(ctx context.Context, term string, limit int) ([]*model.Patient, error) {
	return nil, nil
}
func (f *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakePatientRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakePatientRepo) UpdateTotalCost(ctx context.Context, id uuid.UUID, totalCost float64) error {
	f.updateCalls++
	if f.updateCostErr != nil {
		return f.updateCostErr
	}
	f.lastCostID = id
	f.lastCost = totalCost
	return nil
}

func (f *fakePatientRepo) UpdateVisits(ctx context.Context, id uuid.UUID, visits model.VisitList) error {
	f.updateCalls++
	if f.updateVisitsErr != nil {
		return f.updateVisitsErr
	}
	f.lastVisitsID = id
	f.lastVisits = visits
	return nil
}

func newPatient(totalCost float64, visits ...model.Visit) *model.Patient {
	return &model.Patient{
		ID:        uuid.New(),
		FullName:  "Test Patient",
		TotalCost: totalCost,
		Visits:    visits,
	}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name          string
		patient       *model.Patient
		wantPaid      float64
		wantRemaining float64
	}{
		{
			name: "partial payments",
			patient: newPatient(1000,
				model.Visit{ID: "a", PaidAmount: 300},
				model.Visit{ID: "b", PaidAmount: 200},
			),
			wantPaid:      500,
			wantRemaining: 500,
		},
		{
			name:          "no visits",
			patient:       newPatient(750),
			wantPaid:      0,
			wantRemaining: 750,
		},
		{
			name: "overpayment goes negative",
			patient: newPatient(0,
				model.Visit{ID: "a", PaidAmount: 150},
			),
			wantPaid:      150,
			wantRemaining: -150,
		},
		{
			name: "non-numeric amounts count as zero",
			patient: newPatient(100,
				model.Visit{ID: "a", PaidAmount: math.NaN()},
				model.Visit{ID: "b", PaidAmount: 40},
			),
			wantPaid:      40,
			wantRemaining: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeTotals(tt.patient)
			assert.Equal(t, tt.patient.TotalCost, totals.TotalCost)
			assert.Equal(t, tt.wantPaid, totals.TotalPaid)
			assert.Equal(t, tt.wantRemaining, totals.Remaining)
		})
	}
}

func TestSetAgreedCost(t *testing.T) {
	ctx := context.Background()

	t.Run("persists new cost", func(t *testing.T) {
		repo := &fakePatientRepo{}
		svc := NewService(repo)
		patient := newPatient(1000)

		updated, err := svc.SetAgreedCost(ctx, patient, 2500)
		require.NoError(t, err)
		assert.Equal(t, 2500.0, updated.TotalCost)
		assert.Equal(t, patient.ID, repo.lastCostID)
		assert.Equal(t, 2500.0, repo.lastCost)

		// the passed-in patient is untouched
		assert.Equal(t, 1000.0, patient.TotalCost)
	})

	t.Run("rejects negative cost", func(t *testing.T) {
		repo := &fakePatientRepo{}
		svc := NewService(repo)

		_, err := svc.SetAgreedCost(ctx, newPatient(0), -1)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.Zero(t, repo.updateCalls)
	})

	t.Run("non-numeric cost stored as zero", func(t *testing.T) {
		repo := &fakePatientRepo{}
		svc := NewService(repo)

		updated, err := svc.SetAgreedCost(ctx, newPatient(500), math.NaN())
		require.NoError(t, err)
		assert.Equal(t, 0.0, updated.TotalCost)
		assert.Equal(t, 0.0, repo.lastCost)
	})

	t.Run("store failure leaves patient unmodified", func(t *testing.T) {
		repo := &fakePatientRepo{updateCostErr: fmt.Errorf("connection refused")}
		svc := NewService(repo)
		patient := newPatient(1000)

		_, err := svc.SetAgreedCost(ctx, patient, 2000)
		require.Error(t, err)
		assert.True(t, errors.IsPersistence(err))
		assert.Equal(t, 1000.0, patient.TotalCost)
	})
}

func TestAddVisit(t *testing.T) {
	ctx := context.Background()

	t.Run("prepends new visit", func(t *testing.T) {
		repo := &fakePatientRepo{}
		svc := NewService(repo)
		patient := newPatient(1000, model.Visit{ID: "old", VisitDate: "2024-01-10", Procedure: "حشو", PaidAmount: 200})

		updated, err := svc.AddVisit(ctx, patient, model.VisitDraft{
			VisitDate:  "2024-02-01",
			Procedure:  "كشف",
			PaidAmount: 300,
		})
		require.NoError(t, err)
		require.Len(t, updated.Visits, 2)

		newest := updated.Visits[0]
		assert.NotEmpty(t, newest.ID)
		assert.Equal(t, "2024-02-01", newest.VisitDate)
		assert.Equal(t, "كشف", newest.Procedure)
		assert.Equal(t, 300.0, newest.PaidAmount)
		assert.Equal(t, "old", updated.Visits[1].ID)

		// whole list was written
		assert.Len(t, repo.lastVisits, 2)
		assert.Len(t, patient.Visits, 1)
	})

	t.Run("empty procedure rejected", func(t *testing.T) {
		repo := &fakePatientRepo{}
		svc := NewService(repo)

		_, err := svc.AddVisit(ctx, newPatient(0), model.VisitDraft{PaidAmount: 100})
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.Zero(t, repo.updateCalls)
	})

	t.Run("missing date defaults to today", func(t *testing.T) {
		repo := &fakePatientRepo{}
		svc := NewService(repo)

		updated, err := svc.AddVisit(ctx, newPatient(0), model.VisitDraft{Procedure: "كشف"})
		require.NoError(t, err)
		assert.Equal(t, time.Now().Format("2006-01-02"), updated.Visits[0].VisitDate)
	})

	t.Run("non-numeric amount stored as zero", func(t *testing.T) {
		repo := &fakePatientRepo{}
		svc := NewService(repo)

		updated, err := svc.AddVisit(ctx, newPatient(0), model.VisitDraft{
			Procedure:  "كشف",
			PaidAmount: math.Inf(1),
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, updated.Visits[0].PaidAmount)
	})
}

func TestRemoveVisit(t *testing.T) {
	ctx := context.Background()

	t.Run("removes matching visit", func(t *testing.T) {
		repo := &fakePatientRepo{}
		svc := NewService(repo)
		patient := newPatient(1000,
			model.Visit{ID: "keep", PaidAmount: 100},
			model.Visit{ID: "drop", PaidAmount: 200},
		)

		updated, err := svc.RemoveVisit(ctx, patient, "drop")
		require.NoError(t, err)
		require.Len(t, updated.Visits, 1)
		assert.Equal(t, "keep", updated.Visits[0].ID)
		assert.Len(t, repo.lastVisits, 1)
	})

	t.Run("unknown id still writes unchanged list", func(t *testing.T) {
		repo := &fakePatientRepo{}
		svc := NewService(repo)
		patient := newPatient(1000, model.Visit{ID: "keep"})

		updated, err := svc.RemoveVisit(ctx, patient, "missing")
		require.NoError(t, err)
		assert.Len(t, updated.Visits, 1)
		assert.Equal(t, 1, repo.updateCalls)
	})
}
