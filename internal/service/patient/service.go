package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
	"github.com/jwalitptl/ehr-api/internal/service"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

// RecentLimit caps the recent patients listing
const RecentLimit = 10

type PatientService interface {
	CreatePatient(ctx context.Context, patient *model.Patient) (*model.PatientDetail, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, apply func(*model.Patient)) (*model.PatientDetail, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, search string) ([]model.PatientListItem, error)
	RecentPatients(ctx context.Context, search string) ([]model.PatientListItem, error)
}

type Service struct {
	repo        repository.PatientRepository
	medicalRepo repository.MedicalRecordRepository
	invalidator service.Invalidator
	now         func() time.Time
}

func NewService(repo repository.PatientRepository, medicalRepo repository.MedicalRecordRepository) *Service {
	return &Service{
		repo:        repo,
		medicalRepo: medicalRepo,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for timestamps and ages
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithInvalidator registers a target notified after every successful write
func (s *Service) WithInvalidator(inv service.Invalidator) *Service {
	s.invalidator = inv
	return s
}

func (s *Service) CreatePatient(ctx context.Context, patient *model.Patient) (*model.PatientDetail, error) {
	patient.Base = model.NewBase(s.now())

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, s.writeError(err)
	}
	service.Invalidate(s.invalidator)

	log.Info().Str("patient_id", patient.ID.String()).Msg("patient created")
	return model.NewPatientDetail(patient, nil), nil
}

// GetPatient returns the patient with its medical records expanded
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.StorageError("patient", err)
	}

	records, err := s.medicalRepo.List(ctx, &model.RecordFilters{PatientID: &id})
	if err != nil {
		return nil, service.StorageError("medical records", err)
	}

	return model.NewPatientDetail(patient, records), nil
}

// UpdatePatient loads the patient, lets apply mutate it and stores the
// result.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, apply func(*model.Patient)) (*model.PatientDetail, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.StorageError("patient", err)
	}

	apply(patient)
	patient.ID = id
	patient.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, s.writeError(err)
	}
	service.Invalidate(s.invalidator)

	return s.GetPatient(ctx, id)
}

// DeletePatient removes the patient together with its records and
// prescriptions.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.StorageError("patient", err)
	}
	service.Invalidate(s.invalidator)
	log.Info().Str("patient_id", id.String()).Msg("patient deleted")
	return nil
}

func (s *Service) ListPatients(ctx context.Context, search string) ([]model.PatientListItem, error) {
	return s.list(ctx, &model.PatientFilters{Search: search})
}

// RecentPatients returns the newest patients, narrowed by search first
// when a term is given.
func (s *Service) RecentPatients(ctx context.Context, search string) ([]model.PatientListItem, error) {
	return s.list(ctx, &model.PatientFilters{Search: search, Limit: RecentLimit})
}

func (s *Service) list(ctx context.Context, filters *model.PatientFilters) ([]model.PatientListItem, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, service.StorageError("patients", err)
	}
	return model.NewPatientList(patients, s.now()), nil
}

func (s *Service) writeError(err error) error {
	if service.IsDuplicate(err) {
		return apperrors.Conflict("patient with this national_id already exists", err)
	}
	return service.StorageError("patient", err)
}
