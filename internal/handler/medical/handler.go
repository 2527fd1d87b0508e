package medical

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ehr-api/internal/handler"
	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/service/medical"
)

type Handler struct {
	service medical.MedicalRecordService
}

func NewHandler(service medical.MedicalRecordService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/medical-records")
	{
		records.GET("/", h.ListRecords)
		records.POST("/", h.CreateRecord)
		records.GET("/:id/", h.GetRecord)
		records.PUT("/:id/", h.UpdateRecord)
		records.PATCH("/:id/", h.PatchRecord)
		records.DELETE("/:id/", h.DeleteRecord)
	}
}

// ListRecords answers GET /medical-records/?patient=. A patient value
// that is not a valid id matches nothing.
func (h *Handler) ListRecords(c *gin.Context) {
	patientID, ok := handler.ParsePatientFilter(c)
	if !ok {
		c.JSON(http.StatusOK, []*model.MedicalRecord{})
		return
	}

	records, err := h.service.ListRecords(c.Request.Context(), &model.RecordFilters{PatientID: patientID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var req model.CreateMedicalRecordRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	record, err := h.service.CreateRecord(c.Request.Context(), req.ToRecord())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, err := handler.ParseID(c, "medical record")
	if err != nil {
		c.Error(err)
		return
	}

	record, err := h.service.GetRecord(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	id, err := handler.ParseID(c, "medical record")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.CreateMedicalRecordRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	record, err := h.service.UpdateRecord(c.Request.Context(), id, req.Replace)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) PatchRecord(c *gin.Context) {
	id, err := handler.ParseID(c, "medical record")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.UpdateMedicalRecordRequest
	if err := handler.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	record, err := h.service.UpdateRecord(c.Request.Context(), id, req.Apply)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, err := handler.ParseID(c, "medical record")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteRecord(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
