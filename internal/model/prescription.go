package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Prescription struct {
	Base
	PatientID      uuid.UUID  `json:"patient" db:"patient_id"`
	DoctorID       *uuid.UUID `json:"doctor" db:"doctor_id"`
	MedicationName string     `json:"medication_name" db:"medication_name"`
	Dosage         string     `json:"dosage" db:"dosage"`
	Frequency      *string    `json:"frequency" db:"frequency"`
	Duration       *string    `json:"duration" db:"duration"`
	Instructions   string     `json:"instructions" db:"instructions"`
	IsDispensed    bool       `json:"is_dispensed" db:"is_dispensed"`
	IssueDate      time.Time  `json:"issue_date" db:"issue_date"`
}

// PrescriptionDetail is a prescription joined with the names needed for
// display. The doctor columns come from a LEFT JOIN and are nil when the
// doctor reference is empty.
type PrescriptionDetail struct {
	Prescription
	PatientFirstName string  `db:"patient_first_name"`
	PatientLastName  string  `db:"patient_last_name"`
	DoctorFirstName  *string `db:"doctor_first_name"`
	DoctorLastName   *string `db:"doctor_last_name"`
}

// PrescriptionFilters narrows a prescription listing. Nil fields do not
// filter.
type PrescriptionFilters struct {
	PatientID   *uuid.UUID
	IsDispensed *bool
}

type CreatePrescriptionRequest struct {
	PatientID      uuid.UUID  `json:"patient" binding:"required"`
	DoctorID       *uuid.UUID `json:"doctor"`
	MedicationName string     `json:"medication_name" binding:"required,max=200"`
	Dosage         string     `json:"dosage" binding:"required,max=100"`
	Frequency      *string    `json:"frequency" binding:"omitempty,max=100"`
	Duration       *string    `json:"duration" binding:"omitempty,max=100"`
	Instructions   string     `json:"instructions" binding:"required"`
	IsDispensed    bool       `json:"is_dispensed"`
	IssueDate      *time.Time `json:"issue_date"`
}

func (r *CreatePrescriptionRequest) ToPrescription() *Prescription {
	p := &Prescription{
		PatientID:      r.PatientID,
		DoctorID:       r.DoctorID,
		MedicationName: r.MedicationName,
		Dosage:         r.Dosage,
		Frequency:      r.Frequency,
		Duration:       r.Duration,
		Instructions:   r.Instructions,
		IsDispensed:    r.IsDispensed,
	}
	if r.IssueDate != nil {
		p.IssueDate = *r.IssueDate
	}
	return p
}

// Replace overwrites every mutable field. The issue date is kept when the
// body omits it.
func (r *CreatePrescriptionRequest) Replace(p *Prescription) {
	next := r.ToPrescription()
	next.Base = p.Base
	if r.IssueDate == nil {
		next.IssueDate = p.IssueDate
	}
	*p = *next
}

type UpdatePrescriptionRequest struct {
	PatientID      *uuid.UUID `json:"patient"`
	DoctorID       *uuid.UUID `json:"doctor"`
	MedicationName *string    `json:"medication_name" binding:"omitempty,min=1,max=200"`
	Dosage         *string    `json:"dosage" binding:"omitempty,min=1,max=100"`
	Frequency      *string    `json:"frequency" binding:"omitempty,max=100"`
	Duration       *string    `json:"duration" binding:"omitempty,max=100"`
	Instructions   *string    `json:"instructions" binding:"omitempty,min=1"`
	IsDispensed    *bool      `json:"is_dispensed"`
	IssueDate      *time.Time `json:"issue_date"`

	nulls nullKeys
}

func (r *UpdatePrescriptionRequest) UnmarshalJSON(b []byte) error {
	type body UpdatePrescriptionRequest
	if err := json.Unmarshal(b, (*body)(r)); err != nil {
		return err
	}
	nulls, err := readNullKeys(b, "patient", "medication_name", "dosage", "instructions", "is_dispensed", "issue_date")
	if err != nil {
		return err
	}
	r.nulls = nulls
	return nil
}

// Apply copies the fields present in a PATCH body. A null doctor,
// frequency or duration clears the field.
func (r *UpdatePrescriptionRequest) Apply(p *Prescription) {
	if r.PatientID != nil {
		p.PatientID = *r.PatientID
	}
	patchNullable(&p.DoctorID, r.DoctorID, r.nulls["doctor"])
	if r.MedicationName != nil {
		p.MedicationName = *r.MedicationName
	}
	if r.Dosage != nil {
		p.Dosage = *r.Dosage
	}
	patchNullable(&p.Frequency, r.Frequency, r.nulls["frequency"])
	patchNullable(&p.Duration, r.Duration, r.nulls["duration"])
	if r.Instructions != nil {
		p.Instructions = *r.Instructions
	}
	if r.IsDispensed != nil {
		p.IsDispensed = *r.IsDispensed
	}
	if r.IssueDate != nil {
		p.IssueDate = *r.IssueDate
	}
}
