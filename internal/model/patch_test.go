package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestUpdateMedicalRecordRequest_Apply(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantTreatment *string
		wantNotes     *string
	}{
		{name: "null clears treatment", body: `{"treatment":null}`, wantNotes: strPtr("rest")},
		{name: "absent key keeps treatment", body: `{"notes":"fluids"}`, wantTreatment: strPtr("aspirin"), wantNotes: strPtr("fluids")},
		{name: "value replaces treatment", body: `{"treatment":"ibuprofen"}`, wantTreatment: strPtr("ibuprofen"), wantNotes: strPtr("rest")},
		{name: "both cleared", body: `{"treatment":null,"notes":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &MedicalRecord{Diagnosis: "Flu", Treatment: strPtr("aspirin"), Notes: strPtr("rest")}

			var req UpdateMedicalRecordRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			req.Apply(rec)

			assert.Equal(t, tt.wantTreatment, rec.Treatment)
			assert.Equal(t, tt.wantNotes, rec.Notes)
			assert.Equal(t, "Flu", rec.Diagnosis)
		})
	}
}

func TestUpdatePrescriptionRequest_Apply(t *testing.T) {
	doctorID := uuid.New()

	var req UpdatePrescriptionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"doctor":null,"frequency":null}`), &req))

	p := &Prescription{DoctorID: &doctorID, Frequency: strPtr("daily"), Duration: strPtr("7 days"), IsDispensed: true}
	req.Apply(p)

	assert.Nil(t, p.DoctorID)
	assert.Nil(t, p.Frequency)
	assert.Equal(t, strPtr("7 days"), p.Duration)
	assert.True(t, p.IsDispensed)

	other := uuid.New()
	require.NoError(t, json.Unmarshal([]byte(`{"doctor":"`+other.String()+`"}`), &req))
	req.Apply(p)
	require.NotNil(t, p.DoctorID)
	assert.Equal(t, other, *p.DoctorID)
}

func TestUpdatePatientRequest_Apply(t *testing.T) {
	var req UpdatePatientRequest
	require.NoError(t, json.Unmarshal([]byte(`{"blood_type":null,"allergies":null,"first_name":"Hassan"}`), &req))

	p := &Patient{FirstName: "Ali", BloodType: strPtr("O+"), Allergies: strPtr("penicillin"), Email: strPtr("ali@example.com")}
	req.Apply(p)

	assert.Equal(t, "Hassan", p.FirstName)
	assert.Nil(t, p.BloodType)
	assert.Nil(t, p.Allergies)
	assert.Equal(t, strPtr("ali@example.com"), p.Email)
}

func TestPatchRejectsNullRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		target interface{}
		body   string
		fields []string
	}{
		{name: "record diagnosis", target: &UpdateMedicalRecordRequest{}, body: `{"diagnosis":null}`, fields: []string{"diagnosis"}},
		{name: "record patient and date", target: &UpdateMedicalRecordRequest{}, body: `{"visit_date":null,"patient":null}`, fields: []string{"patient", "visit_date"}},
		{name: "prescription dosage", target: &UpdatePrescriptionRequest{}, body: `{"dosage":null,"doctor":null}`, fields: []string{"dosage"}},
		{name: "patient gender", target: &UpdatePatientRequest{}, body: `{"gender":null}`, fields: []string{"gender"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := json.Unmarshal([]byte(tt.body), tt.target)
			require.Error(t, err)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrValidation, appErr.Code)

			var got []string
			for _, f := range appErr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}
