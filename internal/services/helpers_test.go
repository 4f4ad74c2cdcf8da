package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository/memory"
)

var (
	doctor       = &models.User{ID: "doc-1", Name: "Dr. John Smith", Email: "doctor@clinic.com", Role: models.RoleDoctor}
	otherDoctor  = &models.User{ID: "doc-2", Name: "Dr. Jane Roe", Email: "roe@clinic.com", Role: models.RoleDoctor}
	receptionist = &models.User{ID: "rec-1", Name: "Sarah Johnson", Email: "receptionist@clinic.com", Role: models.RoleReceptionist}
)

type fixture struct {
	stores        *memory.Stores
	patients      *PatientService
	prescriptions *PrescriptionService
	bills         *BillingService
	clock         *fakeClock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := memory.New()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	log := zerolog.Nop()

	f := &fixture{
		stores:        stores,
		patients:      NewPatientService(stores.Patients, log),
		prescriptions: NewPrescriptionService(stores.Prescriptions, stores.Patients, log),
		bills:         NewBillingService(stores.Bills, stores.Patients, nil, log),
		clock:         clock,
	}
	f.patients.now = clock.Now
	f.prescriptions.now = clock.Now
	f.bills.now = clock.Now
	return f
}

func (f *fixture) registerPatient(t *testing.T, name, email string) *models.Patient {
	t.Helper()
	p, err := f.patients.Register(context.Background(), PatientInput{
		Name:        name,
		Email:       email,
		Phone:       "555-0100",
		Address:     "1 Main St",
		DateOfBirth: "1990-05-17",
	}, receptionist.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return p
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se), "expected *services.Error, got %T: %v", err, err)
	assert.Equal(t, kind, se.Kind, "message: %s", se.Message)
}

func ptr[T any](v T) *T { return &v }
