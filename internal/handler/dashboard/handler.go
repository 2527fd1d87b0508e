package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ehr-api/internal/service/dashboard"
)

type Handler struct {
	service dashboard.DashboardService
}

func NewHandler(service dashboard.DashboardService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/stats/", h.Stats)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
