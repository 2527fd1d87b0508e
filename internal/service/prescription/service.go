package prescription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
	"github.com/jwalitptl/ehr-api/internal/service"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

type PrescriptionService interface {
	CreatePrescription(ctx context.Context, prescription *model.Prescription) (*model.PrescriptionView, error)
	GetPrescription(ctx context.Context, id uuid.UUID) (*model.PrescriptionView, error)
	UpdatePrescription(ctx context.Context, id uuid.UUID, apply func(*model.Prescription)) (*model.PrescriptionView, error)
	DeletePrescription(ctx context.Context, id uuid.UUID) error
	ListPrescriptions(ctx context.Context, filters *model.PrescriptionFilters) ([]model.PrescriptionView, error)
}

type Service struct {
	repo        repository.PrescriptionRepository
	userRepo    repository.UserRepository
	invalidator service.Invalidator
	now         func() time.Time
}

func NewService(repo repository.PrescriptionRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// WithInvalidator registers a target notified after every successful write
func (s *Service) WithInvalidator(inv service.Invalidator) *Service {
	s.invalidator = inv
	return s
}

// CreatePrescription stores a new prescription. A referenced doctor must
// exist and hold the DOCTOR role; the issue date defaults to now.
func (s *Service) CreatePrescription(ctx context.Context, prescription *model.Prescription) (*model.PrescriptionView, error) {
	if err := s.validateDoctor(ctx, prescription.DoctorID); err != nil {
		return nil, err
	}

	now := s.now()
	prescription.Base = model.NewBase(now)
	if prescription.IssueDate.IsZero() {
		prescription.IssueDate = now
	}

	if err := s.repo.Create(ctx, prescription); err != nil {
		return nil, writeError(err)
	}
	service.Invalidate(s.invalidator)

	log.Info().
		Str("prescription_id", prescription.ID.String()).
		Str("patient_id", prescription.PatientID.String()).
		Msg("prescription created")

	return s.GetPrescription(ctx, prescription.ID)
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*model.PrescriptionView, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.StorageError("prescription", err)
	}
	view := model.NewPrescriptionView(detail)
	return &view, nil
}

// UpdatePrescription applies a change. The doctor rule is checked only
// when the doctor reference changes, so dispensing a prescription whose
// prescriber has since changed role still works.
func (s *Service) UpdatePrescription(ctx context.Context, id uuid.UUID, apply func(*model.Prescription)) (*model.PrescriptionView, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.StorageError("prescription", err)
	}

	prescription := detail.Prescription
	previousDoctor := prescription.DoctorID

	apply(&prescription)
	prescription.ID = id
	prescription.UpdatedAt = s.now()

	if !sameDoctor(previousDoctor, prescription.DoctorID) {
		if err := s.validateDoctor(ctx, prescription.DoctorID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, &prescription); err != nil {
		return nil, writeError(err)
	}
	service.Invalidate(s.invalidator)

	return s.GetPrescription(ctx, id)
}

func (s *Service) DeletePrescription(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.StorageError("prescription", err)
	}
	service.Invalidate(s.invalidator)
	return nil
}

// ListPrescriptions applies patient and dispensed filters together,
// newest issue date first.
func (s *Service) ListPrescriptions(ctx context.Context, filters *model.PrescriptionFilters) ([]model.PrescriptionView, error) {
	details, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, service.StorageError("prescriptions", err)
	}
	return model.NewPrescriptionViews(details), nil
}

func (s *Service) validateDoctor(ctx context.Context, doctorID *uuid.UUID) error {
	if doctorID == nil {
		return nil
	}
	user, err := s.userRepo.Get(ctx, *doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.Validation(apperrors.Field("doctor", "user does not exist"))
		}
		return service.StorageError("user", err)
	}
	if user.Role != model.RoleDoctor {
		return apperrors.Validation(apperrors.Field("doctor", "user is not a doctor"))
	}
	return nil
}

func sameDoctor(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func writeError(err error) error {
	if service.IsForeignKey(err) {
		return apperrors.Validation(apperrors.Field("patient", "patient does not exist"))
	}
	return service.StorageError("prescription", err)
}
