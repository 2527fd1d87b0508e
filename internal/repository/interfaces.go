package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ehr-api/internal/model"
)

// Storage-level failures translated from driver errors
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate key")
	ErrForeignKey = errors.New("foreign key violation")
)

// All repository interfaces in one file
type (
	// PatientRepository handles patient persistence and search
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
		Update(ctx context.Context, record *model.MedicalRecord) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.RecordFilters) ([]*model.MedicalRecord, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id uuid.UUID) (*model.PrescriptionDetail, error)
		Update(ctx context.Context, prescription *model.Prescription) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.PrescriptionDetail, error)
	}

	// UserRepository reads accounts owned by the identity service
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	}

	// DashboardRepository computes the summary counters as of a date
	DashboardRepository interface {
		Stats(ctx context.Context, today model.Date) (*model.DashboardStats, error)
	}

	// TokenRevocationStore remembers revoked bearer tokens until they expire
	TokenRevocationStore interface {
		Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
		IsRevoked(ctx context.Context, tokenID string) (bool, error)
	}
)
