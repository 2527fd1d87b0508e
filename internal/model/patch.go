package model

import (
	"bytes"
	"encoding/json"

	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

// nullKeys holds the keys a PATCH body sent as an explicit JSON null
type nullKeys map[string]bool

// readNullKeys collects the null-valued top level keys of body. Keys in
// required may not be null and are reported as validation failures.
func readNullKeys(body []byte, required ...string) (nullKeys, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil
	}

	nulls := nullKeys{}
	for key, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			nulls[key] = true
		}
	}

	var fields []apperrors.FieldError
	for _, key := range required {
		if nulls[key] {
			fields = append(fields, apperrors.Field(key, "This field may not be null."))
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}
	return nulls, nil
}

// patchNullable sets *dst to v when v was sent, and clears it when the
// key was sent as null.
func patchNullable[T any](dst **T, v *T, null bool) {
	if v != nil || null {
		*dst = v
	}
}
