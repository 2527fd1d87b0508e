package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
)

const userColumns = `id, username, email, first_name, last_name, role, phone_number, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.User, err error) {
	defer r.observe("user.get")(&err)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err = r.GetDB().GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) (users []*model.User, err error) {
	defer r.observe("user.list_by_role")(&err)

	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY last_name, first_name`

	users = []*model.User{}
	if err = r.GetDB().SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
