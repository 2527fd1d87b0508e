package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
)

const patientColumns = `id, national_id, first_name, last_name, date_of_birth, gender,
	phone_number, email, address, blood_type, allergies, chronic_conditions,
	emergency_contact_name, emergency_contact_phone, created_at, updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) (err error) {
	defer r.observe("patient.create")(&err)

	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = r.GetDB().ExecContext(ctx, query,
		patient.ID,
		patient.NationalID,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.PhoneNumber,
		patient.Email,
		patient.Address,
		patient.BloodType,
		patient.Allergies,
		patient.ChronicConditions,
		patient.EmergencyContactName,
		patient.EmergencyContactPhone,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", translate(err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Patient, err error) {
	defer r.observe("patient.get")(&err)

	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	if err = r.GetDB().GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", translate(err))
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) (err error) {
	defer r.observe("patient.update")(&err)

	query := `
		UPDATE patients SET
			national_id = $1,
			first_name = $2,
			last_name = $3,
			date_of_birth = $4,
			gender = $5,
			phone_number = $6,
			email = $7,
			address = $8,
			blood_type = $9,
			allergies = $10,
			chronic_conditions = $11,
			emergency_contact_name = $12,
			emergency_contact_phone = $13,
			updated_at = $14
		WHERE id = $15
	`
	err = r.execAffecting(ctx, query,
		patient.NationalID,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.PhoneNumber,
		patient.Email,
		patient.Address,
		patient.BloodType,
		patient.Allergies,
		patient.ChronicConditions,
		patient.EmergencyContactName,
		patient.EmergencyContactPhone,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// Delete removes the patient. Records and prescriptions go with it through
// ON DELETE CASCADE.
func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer r.observe("patient.delete")(&err)

	if err = r.execAffecting(ctx, `DELETE FROM patients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

// List returns patients newest first. A search term matches first name,
// last name or national id case-insensitively; the three conditions share
// one WHERE clause so a patient matching several of them appears once.
func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) (patients []*model.Patient, err error) {
	defer r.observe("patient.list")(&err)

	query := `SELECT ` + patientColumns + ` FROM patients`
	args := []interface{}{}

	if filters != nil {
		if term := strings.TrimSpace(filters.Search); term != "" {
			args = append(args, "%"+escapeLike(term)+"%")
			n := len(args)
			query += fmt.Sprintf(" WHERE (first_name ILIKE $%d OR last_name ILIKE $%d OR national_id ILIKE $%d)", n, n, n)
		}
	}

	query += " ORDER BY created_at DESC, id"

	if filters != nil && filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filters.Limit)
	}

	patients = []*model.Patient{}
	if err = r.GetDB().SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
