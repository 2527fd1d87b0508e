package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// MedicalRecord is a single visit entry for a patient
type MedicalRecord struct {
	Base
	PatientID uuid.UUID `json:"patient" db:"patient_id"`
	Diagnosis string    `json:"diagnosis" db:"diagnosis"`
	Treatment *string   `json:"treatment" db:"treatment"`
	Notes     *string   `json:"notes" db:"notes"`
	VisitDate Date      `json:"visit_date" db:"visit_date"`
}

// RecordFilters narrows a medical record listing. A nil PatientID lists
// records for every patient.
type RecordFilters struct {
	PatientID *uuid.UUID
}

type CreateMedicalRecordRequest struct {
	PatientID uuid.UUID `json:"patient" binding:"required"`
	Diagnosis string    `json:"diagnosis" binding:"required"`
	Treatment *string   `json:"treatment"`
	Notes     *string   `json:"notes"`
	VisitDate *Date     `json:"visit_date" binding:"required"`
}

func (r *CreateMedicalRecordRequest) ToRecord() *MedicalRecord {
	rec := &MedicalRecord{
		PatientID: r.PatientID,
		Diagnosis: r.Diagnosis,
		Treatment: r.Treatment,
		Notes:     r.Notes,
	}
	if r.VisitDate != nil {
		rec.VisitDate = *r.VisitDate
	}
	return rec
}

// Replace overwrites every mutable field, as a full PUT does
func (r *CreateMedicalRecordRequest) Replace(rec *MedicalRecord) {
	next := r.ToRecord()
	next.Base = rec.Base
	*rec = *next
}

type UpdateMedicalRecordRequest struct {
	PatientID *uuid.UUID `json:"patient"`
	Diagnosis *string    `json:"diagnosis" binding:"omitempty,min=1"`
	Treatment *string    `json:"treatment"`
	Notes     *string    `json:"notes"`
	VisitDate *Date      `json:"visit_date"`

	nulls nullKeys
}

func (r *UpdateMedicalRecordRequest) UnmarshalJSON(b []byte) error {
	type body UpdateMedicalRecordRequest
	if err := json.Unmarshal(b, (*body)(r)); err != nil {
		return err
	}
	nulls, err := readNullKeys(b, "patient", "diagnosis", "visit_date")
	if err != nil {
		return err
	}
	r.nulls = nulls
	return nil
}

// Apply copies the fields present in a PATCH body. Treatment and notes
// sent as null are cleared.
func (r *UpdateMedicalRecordRequest) Apply(rec *MedicalRecord) {
	if r.PatientID != nil {
		rec.PatientID = *r.PatientID
	}
	if r.Diagnosis != nil {
		rec.Diagnosis = *r.Diagnosis
	}
	patchNullable(&rec.Treatment, r.Treatment, r.nulls["treatment"])
	patchNullable(&rec.Notes, r.Notes, r.nulls["notes"])
	if r.VisitDate != nil {
		rec.VisitDate = *r.VisitDate
	}
}
