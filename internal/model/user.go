package model

import (
	"strings"
)

// Role is the authorization role carried by a user account
type Role string

// User roles
const (
	RoleAdmin      Role = "ADMIN"
	RoleDoctor     Role = "DOCTOR"
	RolePharmacist Role = "PHARMACIST"
	RoleLabTech    Role = "LAB_TECH"
	RolePatient    Role = "PATIENT"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePharmacist, RoleLabTech, RolePatient:
		return true
	}
	return false
}

// ParseRole normalises a role claim such as "doctor" to DOCTOR
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// User is an account owned by the identity service. This service only
// reads it.
type User struct {
	Base
	Username    string  `json:"username" db:"username"`
	Email       string  `json:"email" db:"email"`
	FirstName   string  `json:"first_name" db:"first_name"`
	LastName    string  `json:"last_name" db:"last_name"`
	Role        Role    `json:"role" db:"role"`
	PhoneNumber *string `json:"phone_number" db:"phone_number"`
}

// FullName joins first and last name with a single space
func (u *User) FullName() string {
	return FullName(u.FirstName, u.LastName)
}
