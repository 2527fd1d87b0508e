package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
)

const prescriptionColumns = `id, patient_id, doctor_id, medication_name, dosage, frequency, duration,
	instructions, is_dispensed, issue_date, created_at, updated_at`

// prescriptionDetailQuery fetches prescriptions with patient and doctor
// names in one round trip. The doctor join is LEFT so a nulled doctor
// reference still yields the row.
const prescriptionDetailQuery = `
	SELECT
		rx.id, rx.patient_id, rx.doctor_id, rx.medication_name, rx.dosage,
		rx.frequency, rx.duration, rx.instructions, rx.is_dispensed,
		rx.issue_date, rx.created_at, rx.updated_at,
		p.first_name AS patient_first_name,
		p.last_name AS patient_last_name,
		d.first_name AS doctor_first_name,
		d.last_name AS doctor_last_name
	FROM prescriptions rx
	JOIN patients p ON p.id = rx.patient_id
	LEFT JOIN users d ON d.id = rx.doctor_id`

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) (err error) {
	defer r.observe("prescription.create")(&err)

	query := `
		INSERT INTO prescriptions (` + prescriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.GetDB().ExecContext(ctx, query,
		prescription.ID,
		prescription.PatientID,
		prescription.DoctorID,
		prescription.MedicationName,
		prescription.Dosage,
		prescription.Frequency,
		prescription.Duration,
		prescription.Instructions,
		prescription.IsDispensed,
		prescription.IssueDate,
		prescription.CreatedAt,
		prescription.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", translate(err))
	}
	return nil
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.PrescriptionDetail, err error) {
	defer r.observe("prescription.get")(&err)

	query := prescriptionDetailQuery + ` WHERE rx.id = $1`

	var detail model.PrescriptionDetail
	if err = r.GetDB().GetContext(ctx, &detail, query, id); err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", translate(err))
	}
	return &detail, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, prescription *model.Prescription) (err error) {
	defer r.observe("prescription.update")(&err)

	query := `
		UPDATE prescriptions SET
			patient_id = $1,
			doctor_id = $2,
			medication_name = $3,
			dosage = $4,
			frequency = $5,
			duration = $6,
			instructions = $7,
			is_dispensed = $8,
			issue_date = $9,
			updated_at = $10
		WHERE id = $11
	`
	err = r.execAffecting(ctx, query,
		prescription.PatientID,
		prescription.DoctorID,
		prescription.MedicationName,
		prescription.Dosage,
		prescription.Frequency,
		prescription.Duration,
		prescription.Instructions,
		prescription.IsDispensed,
		prescription.IssueDate,
		prescription.UpdatedAt,
		prescription.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer r.observe("prescription.delete")(&err)

	if err = r.execAffecting(ctx, `DELETE FROM prescriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete prescription: %w", err)
	}
	return nil
}

// List applies the patient and dispensed filters together and orders by
// issue date, newest first.
func (r *prescriptionRepository) List(ctx context.Context, filters *model.PrescriptionFilters) (details []*model.PrescriptionDetail, err error) {
	defer r.observe("prescription.list")(&err)

	var conditions []string
	args := []interface{}{}

	if filters != nil {
		if filters.PatientID != nil {
			args = append(args, *filters.PatientID)
			conditions = append(conditions, fmt.Sprintf("rx.patient_id = $%d", len(args)))
		}
		if filters.IsDispensed != nil {
			args = append(args, *filters.IsDispensed)
			conditions = append(conditions, fmt.Sprintf("rx.is_dispensed = $%d", len(args)))
		}
	}

	query := prescriptionDetailQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY rx.issue_date DESC, rx.created_at DESC"

	details = []*model.PrescriptionDetail{}
	if err = r.GetDB().SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return details, nil
}
