package prescription

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

type fakePrescriptionRepo struct {
	patients      map[uuid.UUID]string
	users         map[uuid.UUID]*model.User
	prescriptions map[uuid.UUID]*model.Prescription
	lastFilters   *model.PrescriptionFilters
}

func (r *fakePrescriptionRepo) Create(ctx context.Context, p *model.Prescription) error {
	if _, ok := r.patients[p.PatientID]; !ok {
		return repository.ErrForeignKey
	}
	copied := *p
	r.prescriptions[p.ID] = &copied
	return nil
}

func (r *fakePrescriptionRepo) Get(ctx context.Context, id uuid.UUID) (*model.PrescriptionDetail, error) {
	p, ok := r.prescriptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.detail(p), nil
}

func (r *fakePrescriptionRepo) detail(p *model.Prescription) *model.PrescriptionDetail {
	d := &model.PrescriptionDetail{Prescription: *p, PatientFirstName: r.patients[p.PatientID], PatientLastName: "Karim"}
	if p.DoctorID != nil {
		if u, ok := r.users[*p.DoctorID]; ok {
			d.DoctorFirstName = &u.FirstName
			d.DoctorLastName = &u.LastName
		}
	}
	return d
}

func (r *fakePrescriptionRepo) Update(ctx context.Context, p *model.Prescription) error {
	if _, ok := r.prescriptions[p.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *p
	r.prescriptions[p.ID] = &copied
	return nil
}

func (r *fakePrescriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.prescriptions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.prescriptions, id)
	return nil
}

func (r *fakePrescriptionRepo) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.PrescriptionDetail, error) {
	r.lastFilters = filters
	out := []*model.PrescriptionDetail{}
	for _, p := range r.prescriptions {
		if filters.PatientID != nil && p.PatientID != *filters.PatientID {
			continue
		}
		if filters.IsDispensed != nil && p.IsDispensed != *filters.IsDispensed {
			continue
		}
		out = append(out, r.detail(p))
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	return nil, nil
}

type fixture struct {
	svc        *Service
	repo       *fakePrescriptionRepo
	patientID  uuid.UUID
	doctor     *model.User
	pharmacist *model.User
}

func newFixture() *fixture {
	patientID := uuid.New()
	doctor := &model.User{Base: model.Base{ID: uuid.New()}, FirstName: "Mona", LastName: "Said", Role: model.RoleDoctor}
	pharmacist := &model.User{Base: model.Base{ID: uuid.New()}, FirstName: "Tarek", LastName: "Fahmy", Role: model.RolePharmacist}
	users := map[uuid.UUID]*model.User{doctor.ID: doctor, pharmacist.ID: pharmacist}

	repo := &fakePrescriptionRepo{
		patients:      map[uuid.UUID]string{patientID: "Ali"},
		users:         users,
		prescriptions: map[uuid.UUID]*model.Prescription{},
	}
	svc := NewService(repo, &fakeUserRepo{users: users})
	svc.now = func() time.Time { return time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC) }

	return &fixture{svc: svc, repo: repo, patientID: patientID, doctor: doctor, pharmacist: pharmacist}
}

func (f *fixture) prescription(doctorID *uuid.UUID) *model.Prescription {
	return &model.Prescription{
		PatientID:      f.patientID,
		DoctorID:       doctorID,
		MedicationName: "Amoxicillin",
		Dosage:         "500mg",
		Instructions:   "After meals",
	}
}

func assertFieldError(t *testing.T, err error, field, message string) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, field, appErr.Fields[0].Field)
	assert.Equal(t, message, appErr.Fields[0].Message)
}

func TestCreatePrescription(t *testing.T) {
	f := newFixture()

	view, err := f.svc.CreatePrescription(context.Background(), f.prescription(&f.doctor.ID))
	require.NoError(t, err)
	assert.Equal(t, "Ali Karim", view.PatientName)
	require.NotNil(t, view.DoctorName)
	assert.Equal(t, "Mona Said", *view.DoctorName)
	assert.False(t, view.IsDispensed)
	assert.Equal(t, f.svc.now(), view.IssueDate)
}

func TestCreatePrescription_KeepsIssueDate(t *testing.T) {
	f := newFixture()
	issued := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	p := f.prescription(nil)
	p.IssueDate = issued
	view, err := f.svc.CreatePrescription(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, issued, view.IssueDate)
	assert.Nil(t, view.DoctorName)
}

func TestCreatePrescription_DoctorRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreatePrescription(ctx, f.prescription(&f.pharmacist.ID))
	assertFieldError(t, err, "doctor", "user is not a doctor")

	missing := uuid.New()
	_, err = f.svc.CreatePrescription(ctx, f.prescription(&missing))
	assertFieldError(t, err, "doctor", "user does not exist")

	assert.Empty(t, f.repo.prescriptions)
}

func TestCreatePrescription_UnknownPatient(t *testing.T) {
	f := newFixture()
	p := f.prescription(nil)
	p.PatientID = uuid.New()

	_, err := f.svc.CreatePrescription(context.Background(), p)
	assertFieldError(t, err, "patient", "patient does not exist")
}

func TestUpdatePrescription(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.CreatePrescription(ctx, f.prescription(&f.doctor.ID))
	require.NoError(t, err)

	// the prescriber changes role; dispensing must still work
	f.doctor.Role = model.RoleAdmin
	dispensed := true
	view, err := f.svc.UpdatePrescription(ctx, created.ID, (&model.UpdatePrescriptionRequest{IsDispensed: &dispensed}).Apply)
	require.NoError(t, err)
	assert.True(t, view.IsDispensed)

	_, err = f.svc.UpdatePrescription(ctx, created.ID, func(p *model.Prescription) { p.DoctorID = &f.pharmacist.ID })
	assertFieldError(t, err, "doctor", "user is not a doctor")

	_, err = f.svc.UpdatePrescription(ctx, uuid.New(), func(*model.Prescription) {})
	assert.True(t, apperrors.IsNotFound(err))
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

func TestPatchPrescription_ClearsDoctor(t *testing.T) {
	f := newFixture()
	inv := &countingInvalidator{}
	f.svc.WithInvalidator(inv)
	ctx := context.Background()

	created, err := f.svc.CreatePrescription(ctx, f.prescription(&f.doctor.ID))
	require.NoError(t, err)
	require.NotNil(t, created.DoctorID)

	var req model.UpdatePrescriptionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"doctor":null}`), &req))

	view, err := f.svc.UpdatePrescription(ctx, created.ID, req.Apply)
	require.NoError(t, err)
	assert.Nil(t, view.DoctorID)
	assert.Nil(t, view.DoctorName)
	assert.Equal(t, "Amoxicillin", view.MedicationName)
	assert.Equal(t, 2, inv.calls)

	_, err = f.svc.UpdatePrescription(ctx, created.ID, func(p *model.Prescription) { p.DoctorID = &f.pharmacist.ID })
	require.Error(t, err)
	assert.Equal(t, 2, inv.calls)
}

func TestListPrescriptions_Filters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.CreatePrescription(ctx, f.prescription(nil))
	require.NoError(t, err)
	_, err = f.svc.CreatePrescription(ctx, f.prescription(nil))
	require.NoError(t, err)

	dispensed := true
	_, err = f.svc.UpdatePrescription(ctx, first.ID, func(p *model.Prescription) { p.IsDispensed = dispensed })
	require.NoError(t, err)

	views, err := f.svc.ListPrescriptions(ctx, &model.PrescriptionFilters{IsDispensed: &dispensed})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, first.ID, views[0].ID)

	other := uuid.New()
	views, err = f.svc.ListPrescriptions(ctx, &model.PrescriptionFilters{PatientID: &other})
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestDeletePrescription(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.CreatePrescription(ctx, f.prescription(nil))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePrescription(ctx, created.ID))
	assert.True(t, apperrors.IsNotFound(f.svc.DeletePrescription(ctx, created.ID)))
}
