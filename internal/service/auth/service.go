package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
	"github.com/jwalitptl/ehr-api/pkg/auth"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

var (
	ErrTokenRevoked = errors.New("token has been revoked")
	ErrUnknownRole  = errors.New("token carries an unknown role")
)

// TokenValidator checks a raw bearer token and returns its claims
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

type AuthService interface {
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
	Logout(ctx context.Context, principal *model.Principal) error
}

type Service struct {
	validator   TokenValidator
	revocations repository.TokenRevocationStore
	now         func() time.Time
}

// NewService wires token validation. revocations may be nil, in which
// case logout cannot invalidate tokens before they expire.
func NewService(validator TokenValidator, revocations repository.TokenRevocationStore) *Service {
	return &Service{
		validator:   validator,
		revocations: revocations,
		now:         time.Now,
	}
}

// Authenticate turns a bearer token into the caller's identity
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.validator.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	userID, err := claims.SubjectID()
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	role := model.ParseRole(claims.Role)
	if !role.Valid() {
		return nil, apperrors.Unauthorized(fmt.Errorf("%w: %q", ErrUnknownRole, claims.Role))
	}

	principal := &model.Principal{
		UserID:  userID,
		Role:    role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}

	if s.revocations != nil && principal.TokenID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, principal.TokenID)
		if err != nil {
			return nil, apperrors.Unauthorized(err)
		}
		if revoked {
			return nil, apperrors.Unauthorized(ErrTokenRevoked)
		}
	}

	return principal, nil
}

// Logout revokes the presented token for the rest of its lifetime
func (s *Service) Logout(ctx context.Context, principal *model.Principal) error {
	if s.revocations == nil {
		log.Warn().Str("user_id", principal.UserID.String()).Msg("logout without revocation store, token stays valid until expiry")
		return nil
	}
	if principal.TokenID == "" {
		return apperrors.BadRequest("token has no jti claim and cannot be revoked", nil)
	}

	ttl := principal.ExpiresAt.Sub(s.now())
	if err := s.revocations.Revoke(ctx, principal.TokenID, ttl); err != nil {
		return apperrors.Internal(err)
	}

	log.Info().Str("user_id", principal.UserID.String()).Msg("token revoked")
	return nil
}
