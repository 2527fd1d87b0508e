package medical

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
	"github.com/jwalitptl/ehr-api/internal/service"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

type MedicalRecordService interface {
	CreateRecord(ctx context.Context, record *model.MedicalRecord) (*model.MedicalRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, apply func(*model.MedicalRecord)) (*model.MedicalRecord, error)
	DeleteRecord(ctx context.Context, id uuid.UUID) error
	ListRecords(ctx context.Context, filters *model.RecordFilters) ([]*model.MedicalRecord, error)
}

type Service struct {
	repo        repository.MedicalRecordRepository
	invalidator service.Invalidator
	now         func() time.Time
}

func NewService(repo repository.MedicalRecordRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithInvalidator registers a target notified after every successful write
func (s *Service) WithInvalidator(inv service.Invalidator) *Service {
	s.invalidator = inv
	return s
}

func (s *Service) CreateRecord(ctx context.Context, record *model.MedicalRecord) (*model.MedicalRecord, error) {
	record.Base = model.NewBase(s.now())

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, writeError(err)
	}
	service.Invalidate(s.invalidator)
	return record, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.StorageError("medical record", err)
	}
	return record, nil
}

func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, apply func(*model.MedicalRecord)) (*model.MedicalRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.StorageError("medical record", err)
	}

	apply(record)
	record.ID = id
	record.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, writeError(err)
	}
	service.Invalidate(s.invalidator)
	return record, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.StorageError("medical record", err)
	}
	service.Invalidate(s.invalidator)
	return nil
}

// ListRecords returns records newest visit first, optionally limited to
// one patient. An unknown patient yields an empty list.
func (s *Service) ListRecords(ctx context.Context, filters *model.RecordFilters) ([]*model.MedicalRecord, error) {
	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, service.StorageError("medical records", err)
	}
	return records, nil
}

func writeError(err error) error {
	if service.IsForeignKey(err) {
		return apperrors.Validation(apperrors.Field("patient", "patient does not exist"))
	}
	return service.StorageError("medical record", err)
}
