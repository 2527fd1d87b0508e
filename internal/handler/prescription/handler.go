package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ehr-api/internal/handler"
	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/service/prescription"
)

type Config struct {
	// StrictBooleans rejects is_filled values other than true/false
	StrictBooleans bool
}

type Handler struct {
	service prescription.PrescriptionService
	config  Config
}

func NewHandler(service prescription.PrescriptionService, config Config) *Handler {
	return &Handler{service: service, config: config}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.GET("/", h.ListPrescriptions)
		prescriptions.POST("/", h.CreatePrescription)
		prescriptions.GET("/:id/", h.GetPrescription)
		prescriptions.PUT("/:id/", h.UpdatePrescription)
		prescriptions.PATCH("/:id/", h.PatchPrescription)
		prescriptions.DELETE("/:id/", h.DeletePrescription)
	}
}

// ListPrescriptions answers GET /prescriptions/?patient=&is_filled=
func (h *Handler) ListPrescriptions(c *gin.Context) {
	dispensed, err := handler.ParseBoolFilter(c, "is_filled", h.config.StrictBooleans)
	if err != nil {
		c.Error(err)
		return
	}

	patientID, ok := handler.ParsePatientFilter(c)
	if !ok {
		c.JSON(http.StatusOK, []model.PrescriptionView{})
		return
	}

	views, err := h.service.ListPrescriptions(c.Request.Context(), &model.PrescriptionFilters{
		PatientID:   patientID,
		IsDispensed: dispensed,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	view, err := h.service.CreatePrescription(c.Request.Context(), req.ToPrescription())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) GetPrescription(c *gin.Context) {
	id, err := handler.ParseID(c, "prescription")
	if err != nil {
		c.Error(err)
		return
	}

	view, err := h.service.GetPrescription(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) UpdatePrescription(c *gin.Context) {
	id, err := handler.ParseID(c, "prescription")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.CreatePrescriptionRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	view, err := h.service.UpdatePrescription(c.Request.Context(), id, req.Replace)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) PatchPrescription(c *gin.Context) {
	id, err := handler.ParseID(c, "prescription")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.UpdatePrescriptionRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	view, err := h.service.UpdatePrescription(c.Request.Context(), id, req.Apply)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) DeletePrescription(c *gin.Context) {
	id, err := handler.ParseID(c, "prescription")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeletePrescription(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
