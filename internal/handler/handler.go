package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwalitptl/ehr-api/internal/middleware"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

// BindJSON decodes and validates the request body, classifying failures
// as validation or bad request errors.
func BindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperrors.Validation(middleware.FieldErrors(validationErrs)...)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperrors.BadRequest("request body too large", err)
	}

	return apperrors.BadRequest(fmt.Sprintf("invalid request body: %v", err), err)
}

// ParseID reads the :id path parameter
func ParseID(c *gin.Context, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("invalid "+resource+" ID", err)
	}
	return id, nil
}

// ParsePatientFilter reads the optional ?patient= filter. ok is false
// when the value is present but cannot identify any patient, so the
// caller should answer with an empty list.
func ParsePatientFilter(c *gin.Context) (id *uuid.UUID, ok bool) {
	raw, present := c.GetQuery("patient")
	if !present || strings.TrimSpace(raw) == "" {
		return nil, true
	}
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

// ParseBoolFilter reads a boolean query flag. Only a case-insensitive
// "true" is true; any other value is false unless strict is set, in
// which case values other than true/false are rejected.
func ParseBoolFilter(c *gin.Context, name string, strict bool) (*bool, error) {
	raw, present := c.GetQuery(name)
	if !present {
		return nil, nil
	}

	value := strings.EqualFold(strings.TrimSpace(raw), "true")
	if strict && !value && !strings.EqualFold(strings.TrimSpace(raw), "false") {
		return nil, apperrors.Validation(apperrors.Field(name, "Must be true or false."))
	}
	return &value, nil
}
