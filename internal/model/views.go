package model

import (
	"time"

	"github.com/google/uuid"
)

// FullName joins first and last name with a single space
func FullName(first, last string) string {
	return first + " " + last
}

// Age returns completed years between dob and today, or nil when dob is
// unset.
func Age(dob Date, today time.Time) *int {
	if dob.IsZero() {
		return nil
	}
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return &age
}

// PatientListItem is the reduced projection used by list endpoints
type PatientListItem struct {
	ID          uuid.UUID `json:"id"`
	NationalID  string    `json:"national_id"`
	FullName    string    `json:"full_name"`
	Age         *int      `json:"age"`
	Gender      string    `json:"gender"`
	PhoneNumber *string   `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPatientListItem projects p with derived fields evaluated at today
func NewPatientListItem(p *Patient, today time.Time) PatientListItem {
	return PatientListItem{
		ID:          p.ID,
		NationalID:  p.NationalID,
		FullName:    FullName(p.FirstName, p.LastName),
		Age:         Age(p.DateOfBirth, today),
		Gender:      p.Gender,
		PhoneNumber: p.PhoneNumber,
		CreatedAt:   p.CreatedAt,
	}
}

// NewPatientList projects every patient; never returns nil
func NewPatientList(patients []*Patient, today time.Time) []PatientListItem {
	items := make([]PatientListItem, 0, len(patients))
	for _, p := range patients {
		items = append(items, NewPatientListItem(p, today))
	}
	return items
}

// PatientDetail is every patient field plus the nested medical records
type PatientDetail struct {
	*Patient
	MedicalRecords []*MedicalRecord `json:"medical_records"`
}

func NewPatientDetail(p *Patient, records []*MedicalRecord) *PatientDetail {
	if records == nil {
		records = []*MedicalRecord{}
	}
	return &PatientDetail{Patient: p, MedicalRecords: records}
}

// PrescriptionView adds display names to a prescription
type PrescriptionView struct {
	Prescription
	PatientName string  `json:"patient_name"`
	DoctorName  *string `json:"doctor_name"`
}

// NewPrescriptionView derives names from already joined columns. A
// missing doctor yields a nil doctor_name.
func NewPrescriptionView(d *PrescriptionDetail) PrescriptionView {
	v := PrescriptionView{
		Prescription: d.Prescription,
		PatientName:  FullName(d.PatientFirstName, d.PatientLastName),
	}
	if d.DoctorID != nil && d.DoctorFirstName != nil && d.DoctorLastName != nil {
		name := FullName(*d.DoctorFirstName, *d.DoctorLastName)
		v.DoctorName = &name
	}
	return v
}

func NewPrescriptionViews(details []*PrescriptionDetail) []PrescriptionView {
	views := make([]PrescriptionView, 0, len(details))
	for _, d := range details {
		views = append(views, NewPrescriptionView(d))
	}
	return views
}

// DoctorChoice is a selectable prescriber
type DoctorChoice struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

func NewDoctorChoices(users []*User) []DoctorChoice {
	out := make([]DoctorChoice, 0, len(users))
	for _, u := range users {
		out = append(out, DoctorChoice{ID: u.ID, Username: u.Username, FullName: u.FullName()})
	}
	return out
}
