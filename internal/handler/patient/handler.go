package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ehr-api/internal/handler"
	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/service/patient"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("/", h.ListPatients)
		patients.POST("/", h.CreatePatient)
		patients.GET("/recent/", h.RecentPatients)
		patients.GET("/:id/", h.GetPatient)
		patients.PUT("/:id/", h.UpdatePatient)
		patients.PATCH("/:id/", h.PatchPatient)
		patients.DELETE("/:id/", h.DeletePatient)
	}
}

// ListPatients answers GET /patients/?search=
func (h *Handler) ListPatients(c *gin.Context) {
	items, err := h.service.ListPatients(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// RecentPatients answers GET /patients/recent/?search=
func (h *Handler) RecentPatients(c *gin.Context) {
	items, err := h.service.RecentPatients(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	detail, err := h.service.CreatePatient(c.Request.Context(), req.ToPatient())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := handler.ParseID(c, "patient")
	if err != nil {
		c.Error(err)
		return
	}

	detail, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdatePatient replaces every field (PUT)
func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := handler.ParseID(c, "patient")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.CreatePatientRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	detail, err := h.service.UpdatePatient(c.Request.Context(), id, req.Replace)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// PatchPatient changes only the fields present in the body
func (h *Handler) PatchPatient(c *gin.Context) {
	id, err := handler.ParseID(c, "patient")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.UpdatePatientRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	detail, err := h.service.UpdatePatient(c.Request.Context(), id, req.Apply)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := handler.ParseID(c, "patient")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
