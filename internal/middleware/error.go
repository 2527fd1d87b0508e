package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Fields  []apperrors.FieldError `json:"fields,omitempty"`
	TraceID string                 `json:"trace_id,omitempty"`
}

// ErrorHandler renders the last error pushed with c.Error
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle errors if they exist
		if len(c.Errors) == 0 {
			return
		}

		traceID := c.GetString(ContextRequestID)
		appErr := toAppError(c.Errors.Last().Err)
		status := appErr.StatusCode()

		var event *zerolog.Event
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else {
			event = log.Warn()
		}
		event.
			Err(appErr).
			Str("trace_id", traceID).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Msg("Request error")

		if c.Writer.Written() {
			return
		}

		message := appErr.Message
		if status >= http.StatusInternalServerError {
			message = "internal server error"
		}

		c.JSON(status, ErrorResponse{
			Status:  "error",
			Code:    status,
			Message: message,
			Fields:  appErr.Fields,
			TraceID: traceID,
		})
	}
}

// toAppError classifies any handler error into the API taxonomy
func toAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperrors.Validation(FieldErrors(validationErrs)...)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.BadRequest("malformed JSON body", err)
	case errors.As(err, &typeErr):
		return apperrors.Validation(apperrors.Field(typeErr.Field, "has the wrong type"))
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperrors.BadRequest("request body too large", err)
	}

	return apperrors.Internal(err)
}
