package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ehr-api/internal/config"
	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
	"github.com/jwalitptl/ehr-api/pkg/metrics"
)

func newMock(t *testing.T) (BaseRepository, sqlmock.Sqlmock, *metrics.Metrics) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := metrics.New("test")
	return NewBaseRepository(sqlx.NewDb(db, "postgres"), m), mock, m
}

var patientRowColumns = strings.Fields(strings.ReplaceAll(patientColumns, ",", " "))

func patientRow(rows *sqlmock.Rows, id uuid.UUID, nationalID, first, last string) *sqlmock.Rows {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id.String(), nationalID, first, last,
		time.Date(2001, 2, 1, 0, 0, 0, 0, time.UTC), "M",
		nil, nil, nil, nil, nil, nil, nil, nil,
		now, now,
	)
}

func TestPatientRepository_ListSearch(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewPatientRepository(base)

	ali, hassan := uuid.New(), uuid.New()
	rows := sqlmock.NewRows(patientRowColumns)
	patientRow(rows, ali, "N-1", "Ali", "Karim")
	patientRow(rows, hassan, "N-2", "Hassan", "Ali")

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM patients WHERE (first_name ILIKE $1 OR last_name ILIKE $1 OR national_id ILIKE $1) ORDER BY created_at DESC, id",
	)).WithArgs("%ali%").WillReturnRows(rows)

	patients, err := repo.List(context.Background(), &model.PatientFilters{Search: "  ali "})
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, ali, patients[0].ID)
	assert.Equal(t, "Hassan", patients[1].FirstName)
	assert.Equal(t, "2001-02-01", patients[0].DateOfBirth.String())
	assert.Nil(t, patients[0].PhoneNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_ListEscapesWildcards(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewPatientRepository(base)

	mock.ExpectQuery("FROM patients WHERE").
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows(patientRowColumns))

	patients, err := repo.List(context.Background(), &model.PatientFilters{Search: "50%_off"})
	require.NoError(t, err)
	assert.NotNil(t, patients)
	assert.Empty(t, patients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_ListRecent(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewPatientRepository(base)

	mock.ExpectQuery(regexp.QuoteMeta("FROM patients ORDER BY created_at DESC, id LIMIT $1")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(patientRowColumns))

	_, err := repo.List(context.Background(), &model.PatientFilters{Limit: 10})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_CreateDuplicate(t *testing.T) {
	base, mock, m := newMock(t)
	repo := NewPatientRepository(base)

	mock.ExpectExec("INSERT INTO patients").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "patients_national_id_key"})

	p := &model.Patient{Base: model.NewBase(time.Now()), NationalID: "N-1", FirstName: "Ali", LastName: "Karim", Gender: "M"}
	err := repo.Create(context.Background(), p)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Contains(t, err.Error(), "patients_national_id_key")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("patient.create", "error")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_GetNotFound(t *testing.T) {
	base, mock, m := newMock(t)
	repo := NewPatientRepository(base)

	id := uuid.New()
	mock.ExpectQuery("FROM patients WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(patientRowColumns))

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("patient.get", "error")))
}

func TestPatientRepository_DeleteMissing(t *testing.T) {
	base, mock, m := newMock(t)
	repo := NewPatientRepository(base)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM patients WHERE id = \\$1").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	mock.ExpectExec("DELETE FROM patients WHERE id = \\$1").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), id))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("patient.delete", "ok")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalRecordRepository_CreateMissingPatient(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewMedicalRecordRepository(base)

	mock.ExpectExec("INSERT INTO medical_records").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "medical_records_patient_id_fkey"})

	visit, _ := model.ParseDate("2025-01-15")
	err := repo.Create(context.Background(), &model.MedicalRecord{
		Base:      model.NewBase(time.Now()),
		PatientID: uuid.New(),
		Diagnosis: "Flu",
		VisitDate: visit,
	})
	assert.ErrorIs(t, err, repository.ErrForeignKey)
}

func TestMedicalRecordRepository_ListByPatient(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewMedicalRecordRepository(base)

	patientID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "patient_id", "diagnosis", "treatment", "notes", "visit_date", "created_at", "updated_at"}).
		AddRow(uuid.NewString(), patientID.String(), "Flu", "Rest", nil, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM medical_records WHERE patient_id = $1 ORDER BY visit_date DESC, created_at DESC")).
		WithArgs(patientID).
		WillReturnRows(rows)

	records, err := repo.List(context.Background(), &model.RecordFilters{PatientID: &patientID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, patientID, records[0].PatientID)
	require.NotNil(t, records[0].Treatment)
	assert.Equal(t, "Rest", *records[0].Treatment)
	assert.Nil(t, records[0].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var prescriptionDetailColumns = []string{
	"id", "patient_id", "doctor_id", "medication_name", "dosage", "frequency", "duration",
	"instructions", "is_dispensed", "issue_date", "created_at", "updated_at",
	"patient_first_name", "patient_last_name", "doctor_first_name", "doctor_last_name",
}

func TestPrescriptionRepository_ListFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters *model.PrescriptionFilters
		where   string
		args    int
	}{
		{"none", nil, "LEFT JOIN users d ON d.id = rx.doctor_id ORDER BY", 0},
		{"dispensed", &model.PrescriptionFilters{IsDispensed: boolPtr(true)}, "WHERE rx.is_dispensed = $1 ORDER BY", 1},
		{"both", &model.PrescriptionFilters{PatientID: uuidPtr(uuid.New()), IsDispensed: boolPtr(false)}, "WHERE rx.patient_id = $1 AND rx.is_dispensed = $2 ORDER BY", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, mock, _ := newMock(t)
			repo := NewPrescriptionRepository(base)

			args := make([]driver.Value, tt.args)
			for i := range args {
				args[i] = sqlmock.AnyArg()
			}
			q := mock.ExpectQuery(regexp.QuoteMeta(tt.where))
			if len(args) > 0 {
				q = q.WithArgs(args...)
			}
			q.WillReturnRows(sqlmock.NewRows(prescriptionDetailColumns))

			details, err := repo.List(context.Background(), tt.filters)
			require.NoError(t, err)
			assert.NotNil(t, details)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPrescriptionRepository_GetWithoutDoctor(t *testing.T) {
	base, mock, m := newMock(t)
	repo := NewPrescriptionRepository(base)

	id, patientID := uuid.New(), uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(prescriptionDetailColumns).AddRow(
		id.String(), patientID.String(), nil, "Amoxicillin", "500mg", "3x daily", nil,
		"After meals", false, now, now, now,
		"Ali", "Karim", nil, nil,
	)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE rx.id = $1")).WithArgs(id).WillReturnRows(rows)

	detail, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, detail.DoctorID)
	assert.Equal(t, "Ali", detail.PatientFirstName)

	view := model.NewPrescriptionView(detail)
	assert.Equal(t, "Ali Karim", view.PatientName)
	assert.Nil(t, view.DoctorName)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("prescription.get", "ok")))
}

func TestUserRepository_ListByRole(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewUserRepository(base)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "username", "email", "first_name", "last_name", "role", "phone_number", "created_at", "updated_at"}).
		AddRow(uuid.NewString(), "dr.mona", "mona@example.com", "Mona", "Said", "DOCTOR", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE role = $1 ORDER BY last_name, first_name")).
		WithArgs("DOCTOR").
		WillReturnRows(rows)

	users, err := repo.ListByRole(context.Background(), model.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleDoctor, users[0].Role)
}

func TestDashboardRepository_Stats(t *testing.T) {
	base, mock, _ := newMock(t)
	repo := NewDashboardRepository(base)

	today, _ := model.ParseDate("2025-01-15")
	rows := sqlmock.NewRows([]string{"total_patients", "today_appointments", "pending_prescriptions", "lab_results_ready"}).
		AddRow(12, 3, 5, 2)
	mock.ExpectQuery(regexp.QuoteMeta("visit_date BETWEEN $2 AND $1 AND treatment IS NOT NULL")).
		WithArgs("2025-01-15", "2025-01-08").
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, &model.DashboardStats{TotalPatients: 12, TodayAppointments: 3, PendingPrescriptions: 5, LabResultsReady: 2}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardRepository_StatsError(t *testing.T) {
	base, mock, m := newMock(t)
	repo := NewDashboardRepository(base)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	_, err := repo.Stats(context.Background(), model.NewDate(time.Now()))
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("dashboard.stats", "error")))
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.ErrorIs(t, translate(&pq.Error{Code: "23503"}), repository.ErrForeignKey)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestSchema(t *testing.T) {
	assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS patients")
	assert.Contains(t, Schema, "REFERENCES patients (id) ON DELETE CASCADE")
	assert.Contains(t, Schema, "REFERENCES users (id) ON DELETE SET NULL")
	assert.Contains(t, Schema, "patients_national_id_key UNIQUE (national_id)")
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "ehr", Name: "ehr", SSLMode: "disable"})
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "dbname=ehr")
	assert.Contains(t, dsn, "sslmode=disable")
}

func boolPtr(b bool) *bool { return &b }

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }
