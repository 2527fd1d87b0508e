package model

import "encoding/json"

// Gender values accepted for a patient
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// BloodTypes lists the accepted ABO/Rh blood types
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Patient is the central entity; medical records and prescriptions hang
// off it and are removed with it.
type Patient struct {
	Base
	NationalID            string  `json:"national_id" db:"national_id"`
	FirstName             string  `json:"first_name" db:"first_name"`
	LastName              string  `json:"last_name" db:"last_name"`
	DateOfBirth           Date    `json:"date_of_birth" db:"date_of_birth"`
	Gender                string  `json:"gender" db:"gender"`
	PhoneNumber           *string `json:"phone_number" db:"phone_number"`
	Email                 *string `json:"email" db:"email"`
	Address               *string `json:"address" db:"address"`
	BloodType             *string `json:"blood_type" db:"blood_type"`
	Allergies             *string `json:"allergies" db:"allergies"`
	ChronicConditions     *string `json:"chronic_conditions" db:"chronic_conditions"`
	EmergencyContactName  *string `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" db:"emergency_contact_phone"`
}

// PatientFilters narrows a patient listing
type PatientFilters struct {
	Search string
	Limit  int
}

type CreatePatientRequest struct {
	NationalID            string  `json:"national_id" binding:"required,max=20"`
	FirstName             string  `json:"first_name" binding:"required,max=100"`
	LastName              string  `json:"last_name" binding:"required,max=100"`
	DateOfBirth           *Date   `json:"date_of_birth" binding:"required"`
	Gender                string  `json:"gender" binding:"required,gender"`
	PhoneNumber           *string `json:"phone_number" binding:"omitempty,max=20"`
	Email                 *string `json:"email" binding:"omitempty,email"`
	Address               *string `json:"address"`
	BloodType             *string `json:"blood_type" binding:"omitempty,bloodtype"`
	Allergies             *string `json:"allergies"`
	ChronicConditions     *string `json:"chronic_conditions"`
	EmergencyContactName  *string `json:"emergency_contact_name" binding:"omitempty,max=100"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" binding:"omitempty,max=20"`
}

// ToPatient copies the request onto a new patient. Id and timestamps are
// stamped by the service.
func (r *CreatePatientRequest) ToPatient() *Patient {
	p := &Patient{
		NationalID:            r.NationalID,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Gender:                r.Gender,
		PhoneNumber:           r.PhoneNumber,
		Email:                 r.Email,
		Address:               r.Address,
		BloodType:             r.BloodType,
		Allergies:             r.Allergies,
		ChronicConditions:     r.ChronicConditions,
		EmergencyContactName:  r.EmergencyContactName,
		EmergencyContactPhone: r.EmergencyContactPhone,
	}
	if r.DateOfBirth != nil {
		p.DateOfBirth = *r.DateOfBirth
	}
	return p
}

// Replace overwrites every mutable field, as a full PUT does
func (r *CreatePatientRequest) Replace(p *Patient) {
	next := r.ToPatient()
	next.Base = p.Base
	*p = *next
}

type UpdatePatientRequest struct {
	NationalID            *string `json:"national_id" binding:"omitempty,min=1,max=20"`
	FirstName             *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName              *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	DateOfBirth           *Date   `json:"date_of_birth"`
	Gender                *string `json:"gender" binding:"omitempty,gender"`
	PhoneNumber           *string `json:"phone_number" binding:"omitempty,max=20"`
	Email                 *string `json:"email" binding:"omitempty,email"`
	Address               *string `json:"address"`
	BloodType             *string `json:"blood_type" binding:"omitempty,bloodtype"`
	Allergies             *string `json:"allergies"`
	ChronicConditions     *string `json:"chronic_conditions"`
	EmergencyContactName  *string `json:"emergency_contact_name" binding:"omitempty,max=100"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" binding:"omitempty,max=20"`

	nulls nullKeys
}

func (r *UpdatePatientRequest) UnmarshalJSON(b []byte) error {
	type body UpdatePatientRequest
	if err := json.Unmarshal(b, (*body)(r)); err != nil {
		return err
	}
	nulls, err := readNullKeys(b, "national_id", "first_name", "last_name", "date_of_birth", "gender")
	if err != nil {
		return err
	}
	r.nulls = nulls
	return nil
}

// Apply copies only the fields present in a PATCH body. Optional contact
// and clinical fields sent as null are cleared.
func (r *UpdatePatientRequest) Apply(p *Patient) {
	if r.NationalID != nil {
		p.NationalID = *r.NationalID
	}
	if r.FirstName != nil {
		p.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		p.LastName = *r.LastName
	}
	if r.DateOfBirth != nil {
		p.DateOfBirth = *r.DateOfBirth
	}
	if r.Gender != nil {
		p.Gender = *r.Gender
	}
	patchNullable(&p.PhoneNumber, r.PhoneNumber, r.nulls["phone_number"])
	patchNullable(&p.Email, r.Email, r.nulls["email"])
	patchNullable(&p.Address, r.Address, r.nulls["address"])
	patchNullable(&p.BloodType, r.BloodType, r.nulls["blood_type"])
	patchNullable(&p.Allergies, r.Allergies, r.nulls["allergies"])
	patchNullable(&p.ChronicConditions, r.ChronicConditions, r.nulls["chronic_conditions"])
	patchNullable(&p.EmergencyContactName, r.EmergencyContactName, r.nulls["emergency_contact_name"])
	patchNullable(&p.EmergencyContactPhone, r.EmergencyContactPhone, r.nulls["emergency_contact_phone"])
}
