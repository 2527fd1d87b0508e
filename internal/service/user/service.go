package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
	"github.com/jwalitptl/ehr-api/internal/service"
)

type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListDoctors(ctx context.Context) ([]model.DoctorChoice, error)
}

type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.StorageError("user", err)
	}
	return user, nil
}

// ListDoctors returns the users a prescription may reference
func (s *Service) ListDoctors(ctx context.Context) ([]model.DoctorChoice, error) {
	users, err := s.repo.ListByRole(ctx, model.RoleDoctor)
	if err != nil {
		return nil, service.StorageError("users", err)
	}
	return model.NewDoctorChoices(users), nil
}
