package directory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicdesk/frontdesk-api/internal/model"
	"github.com/clinicdesk/frontdesk-api/internal/repository"
	"github.com/clinicdesk/frontdesk-api/pkg/errors"
)

// MinSearchTermLength keeps single-character lookups from issuing
// over-broad store queries.
const MinSearchTermLength = 2

// SearchLimit caps the booking-modal lookup result.
const SearchLimit = 5

const listCacheKey = "patients"

// Service is the patient directory: registration, the full registry list,
// the remote booking-modal search and the local list filter. The loaded
// list is cached and invalidated on successful mutation.
type Service struct {
	repo  repository.PatientRepository
	cache *gocache.Cache
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

// Register creates a new patient record. The store assigns the id, the
// sequential file number and the creation timestamp; all flag groups
// default to unchecked.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return nil, errors.Validation("full name is required")
	}

	patient := &model.Patient{
		FullName:       strings.TrimSpace(req.FullName),
		DOB:            req.DOB,
		Job:            req.Job,
		Address:        req.Address,
		Phone:          req.Phone,
		Email:          req.Email,
		MedicalHistory: req.MedicalHistory,
		Questions:      req.Questions,
		Medications:    req.Medications,
		Visits:         model.VisitList{},
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, errors.Persistence("register patient", err)
	}

	s.cache.Delete(listCacheKey)
	return patient, nil
}

// List returns the registry newest-first. The result is cached briefly;
// mutations through this service invalidate it.
func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cached.([]*model.Patient), nil
	}

	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Persistence("list patients", err)
	}

	s.cache.Set(listCacheKey, patients, gocache.DefaultExpiration)
	return patients, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("patient", err)
	}
	return patient, nil
}

// Search is the remote booking-modal lookup: name or phone substring, or
// exact file number. Terms under two characters return empty without
// touching the store.
func (s *Service) Search(ctx context.Context, term string) ([]*model.Patient, error) {
	term = strings.TrimSpace(term)
	if len(term) < MinSearchTermLength {
		return []*model.Patient{}, nil
	}

	patients, err := s.repo.Search(ctx, term, SearchLimit)
	if err != nil {
		return nil, errors.Persistence("search patients", err)
	}
	return patients, nil
}

// FilterLocal narrows an already-loaded list without a store round trip:
// case-insensitive substring match on name, phone or file number.
func FilterLocal(patients []*model.Patient, term string) []*model.Patient {
	if term == "" {
		return patients
	}

	needle := strings.ToLower(term)
	out := make([]*model.Patient, 0, len(patients))
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.FullName), needle) ||
			strings.Contains(p.Phone, term) ||
			strings.Contains(p.FileNumber, term) {
			out = append(out, p)
		}
	}
	return out
}

// Delete removes a patient and then re-reads the row. Store-side policies
// can no-op a delete while still reporting success, so a row that is
// still present after the delete is a verification failure and the cached
// list is left as is.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Persistence("delete patient", err)
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return errors.Persistence("verify patient deletion", err)
	}
	if exists {
		return errors.Verification("patient record still present after delete; check store permissions")
	}

	s.cache.Delete(listCacheKey)
	return nil
}
