package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ehr-api/internal/handler"
	"github.com/jwalitptl/ehr-api/internal/middleware"
	"github.com/jwalitptl/ehr-api/internal/service/auth"
	"github.com/jwalitptl/ehr-api/internal/service/user"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

var errNoPrincipal = errors.New("no authenticated caller in context")

type Handler struct {
	authService auth.AuthService
	userService user.UserService
}

func NewHandler(authService auth.AuthService, userService user.UserService) *Handler {
	return &Handler{authService: authService, userService: userService}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/auth")
	{
		group.GET("/me/", h.Me)
		group.POST("/logout/", h.Logout)
	}
}

// Me returns the profile of the authenticated caller
func (h *Handler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.Error(apperrors.Unauthorized(errNoPrincipal))
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Logout revokes the bearer token used for this request
func (h *Handler) Logout(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.Error(apperrors.Unauthorized(errNoPrincipal))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), principal); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("Successfully logged out", nil))
}
