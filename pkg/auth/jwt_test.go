package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func claimsFor(id uuid.UUID, role string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		UserID: id.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func TestValidate(t *testing.T) {
	v := NewTokenValidator(testSecret, "", 0)
	id := uuid.New()

	token, err := Sign(testSecret, claimsFor(id, "DOCTOR", time.Hour))
	require.NoError(t, err)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "DOCTOR", claims.Role)

	subject, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, id, subject)
}

func TestValidate_Rejects(t *testing.T) {
	v := NewTokenValidator(testSecret, "ehr-identity", 0)
	id := uuid.New()

	withIssuer := func(c *Claims) *Claims {
		c.Issuer = "ehr-identity"
		return c
	}

	tests := []struct {
		name   string
		secret string
		claims *Claims
	}{
		{"wrong secret", "other-secret", withIssuer(claimsFor(id, "ADMIN", time.Hour))},
		{"expired", testSecret, withIssuer(claimsFor(id, "ADMIN", -time.Minute))},
		{"wrong issuer", testSecret, claimsFor(id, "ADMIN", time.Hour)},
		{"no role", testSecret, withIssuer(claimsFor(id, "", time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Sign(tt.secret, tt.claims)
			require.NoError(t, err)

			_, err = v.Validate(token)
			assert.Error(t, err)
		})
	}

	_, err := v.Validate("not-a-token")
	assert.Error(t, err)
}

func TestValidate_RequiresExpiry(t *testing.T) {
	v := NewTokenValidator(testSecret, "", 0)
	c := claimsFor(uuid.New(), "ADMIN", time.Hour)
	c.ExpiresAt = nil

	token, err := Sign(testSecret, c)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.Error(t, err)
}

func TestSubjectID(t *testing.T) {
	id := uuid.New()

	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}}
	got, err := c.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = (&Claims{}).SubjectID()
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = (&Claims{UserID: "42"}).SubjectID()
	assert.Error(t, err)
}
