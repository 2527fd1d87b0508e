package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
)

const medicalRecordColumns = `id, patient_id, diagnosis, treatment, notes, visit_date, created_at, updated_at`

type medicalRecordRepository struct {
	BaseRepository
}

func NewMedicalRecordRepository(base BaseRepository) repository.MedicalRecordRepository {
	return &medicalRecordRepository{base}
}

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) (err error) {
	defer r.observe("medical_record.create")(&err)

	query := `
		INSERT INTO medical_records (` + medicalRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.GetDB().ExecContext(ctx, query,
		record.ID,
		record.PatientID,
		record.Diagnosis,
		record.Treatment,
		record.Notes,
		record.VisitDate,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", translate(err))
	}
	return nil
}

func (r *medicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.MedicalRecord, err error) {
	defer r.observe("medical_record.get")(&err)

	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE id = $1`

	var record model.MedicalRecord
	if err = r.GetDB().GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", translate(err))
	}
	return &record, nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, record *model.MedicalRecord) (err error) {
	defer r.observe("medical_record.update")(&err)

	query := `
		UPDATE medical_records SET
			patient_id = $1,
			diagnosis = $2,
			treatment = $3,
			notes = $4,
			visit_date = $5,
			updated_at = $6
		WHERE id = $7
	`
	err = r.execAffecting(ctx, query,
		record.PatientID,
		record.Diagnosis,
		record.Treatment,
		record.Notes,
		record.VisitDate,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer r.observe("medical_record.delete")(&err)

	if err = r.execAffecting(ctx, `DELETE FROM medical_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete medical record: %w", err)
	}
	return nil
}

// List returns records by visit date, most recent first
func (r *medicalRecordRepository) List(ctx context.Context, filters *model.RecordFilters) (records []*model.MedicalRecord, err error) {
	defer r.observe("medical_record.list")(&err)

	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records`
	args := []interface{}{}

	if filters != nil && filters.PatientID != nil {
		query += fmt.Sprintf(" WHERE patient_id = $%d", len(args)+1)
		args = append(args, *filters.PatientID)
	}

	query += " ORDER BY visit_date DESC, created_at DESC"

	records = []*model.MedicalRecord{}
	if err = r.GetDB().SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}
