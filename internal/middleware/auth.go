package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/service/auth"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

// Context keys set by Authenticate
const (
	ContextPrincipal = "principal"
	ContextUserID    = "user_id"
	ContextRole      = "role"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errInvalidAuthorization = errors.New("invalid authorization format")
)

type AuthMiddleware struct {
	authService auth.AuthService
}

func NewAuthMiddleware(authService auth.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and stores the caller in the
// context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.Unauthorized(errMissingAuthorization))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortWithError(c, apperrors.Unauthorized(errInvalidAuthorization))
			return
		}

		principal, err := m.authService.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Set(ContextUserID, principal.UserID.String())
		c.Set(ContextRole, string(principal.Role))
		c.Next()
	}
}

// PrincipalFrom returns the caller stored by Authenticate
func PrincipalFrom(c *gin.Context) (*model.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil, false
	}
	principal, ok := v.(*model.Principal)
	return principal, ok
}

// abortWithError records err for ErrorHandler and stops the chain
func abortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}
