package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

type fakeUserRepo struct {
	users []*model.User
}

func (r *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	out := []*model.User{}
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestListDoctors(t *testing.T) {
	doctor := &model.User{Base: model.Base{ID: uuid.New()}, Username: "dr.mona", FirstName: "Mona", LastName: "Said", Role: model.RoleDoctor}
	svc := NewService(&fakeUserRepo{users: []*model.User{
		doctor,
		{Base: model.Base{ID: uuid.New()}, Username: "pharm", Role: model.RolePharmacist},
	}})

	choices, err := svc.ListDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.Equal(t, "Mona Said", choices[0].FullName)
	assert.Equal(t, doctor.ID, choices[0].ID)
}

func TestGetProfile(t *testing.T) {
	u := &model.User{Base: model.Base{ID: uuid.New()}, Username: "admin", Role: model.RoleAdmin}
	svc := NewService(&fakeUserRepo{users: []*model.User{u}})

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	_, err = svc.GetProfile(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}
