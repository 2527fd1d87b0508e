package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSubject = errors.New("token has no subject")
	ErrMissingRole    = errors.New("token has no role")
)

// Claims are the bearer token claims issued by the identity service
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID returns the caller id, preferring user_id over sub
func (c *Claims) SubjectID() (uuid.UUID, error) {
	raw := c.UserID
	if raw == "" {
		raw = c.RegisteredClaims.Subject
	}
	if raw == "" {
		return uuid.Nil, ErrMissingSubject
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject: %w", err)
	}
	return id, nil
}

// TokenValidator verifies HS256 signed tokens
type TokenValidator struct {
	secret []byte
	parser *jwt.Parser
}

func NewTokenValidator(secret, issuer string, leeway time.Duration) *TokenValidator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &TokenValidator{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}
}

// Validate parses the token and checks signature, expiry and issuer
func (v *TokenValidator) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Role == "" {
		return nil, ErrMissingRole
	}
	return claims, nil
}

// Sign issues a token for the given claims. The identity service owns
// issuance; this exists for tooling and tests.
func Sign(secret string, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
