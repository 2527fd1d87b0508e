package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ehr-api/internal/service/user"
)

type Handler struct {
	service user.UserService
}

func NewHandler(service user.UserService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/doctors/", h.ListDoctors)
	}
}

// ListDoctors returns the users a prescription may name as prescriber
func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}
