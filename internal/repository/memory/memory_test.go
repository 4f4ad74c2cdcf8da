package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
)

func TestPatientStore_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := NewPatientStore()

	require.NoError(t, s.Insert(ctx, &models.Patient{Name: "A", Email: "a@x.com"}))
	err := s.Insert(ctx, &models.Patient{Name: "B", Email: "a@x.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	b := &models.Patient{Name: "B", Email: "b@x.com"}
	require.NoError(t, s.Insert(ctx, b))
	taken := "a@x.com"
	_, err = s.Update(ctx, b.ID, repository.PatientChanges{Email: &taken})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// Keeping your own email is not a collision.
	own := "b@x.com"
	_, err = s.Update(ctx, b.ID, repository.PatientChanges{Email: &own})
	assert.NoError(t, err)
}

func TestPatientStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewPatientStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Insert(ctx, &models.Patient{Name: "old", Email: "1", CreatedAt: base}))
	require.NoError(t, s.Insert(ctx, &models.Patient{Name: "new", Email: "2", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.Insert(ctx, &models.Patient{Name: "mid", Email: "3", CreatedAt: base.Add(time.Minute)}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestBillStore_ConditionalWrites(t *testing.T) {
	ctx := context.Background()
	s := NewBillStore()
	b := &models.Bill{Status: models.BillPending, Items: []models.BillItem{{Description: "x", Amount: 1}}, TotalAmount: 1}
	require.NoError(t, s.Insert(ctx, b))

	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	paid, moved, err := s.MarkPaid(ctx, b.ID, repository.PaymentStamp{At: first, By: "r1"})
	require.NoError(t, err)
	assert.True(t, moved)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, first, *paid.PaidAt)

	again, moved, err := s.MarkPaid(ctx, b.ID, repository.PaymentStamp{At: first.Add(time.Hour), By: "r2"})
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, first, *again.PaidAt)
	assert.Equal(t, "r2", again.UpdatedBy)

	_, err = s.UpdatePending(ctx, b.ID, repository.BillChanges{UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.ErrorIs(t, s.DeletePending(ctx, b.ID), repository.ErrConflict)

	missing := primitive.NewObjectID()
	_, _, err = s.MarkPaid(ctx, missing, repository.PaymentStamp{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.DeletePending(ctx, missing), repository.ErrNotFound)
}

func TestBillStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewBillStore()
	b := &models.Bill{Status: models.BillPending, Items: []models.BillItem{{Description: "x", Amount: 1}}}
	require.NoError(t, s.Insert(ctx, b))

	got, err := s.Get(ctx, b.ID)
	require.NoError(t, err)
	got.Items[0].Amount = 999

	again, err := s.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.Items[0].Amount)
}

func TestPrescriptionStore_FilterAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewPrescriptionStore()
	pid := primitive.NewObjectID()
	require.NoError(t, s.Insert(ctx, &models.Prescription{PatientID: pid, DoctorID: "d1"}))
	require.NoError(t, s.Insert(ctx, &models.Prescription{PatientID: pid, DoctorID: "d2"}))
	other := &models.Prescription{PatientID: primitive.NewObjectID(), DoctorID: "d1"}
	require.NoError(t, s.Insert(ctx, other))

	list, err := s.List(ctx, repository.PrescriptionFilter{PatientID: &pid, DoctorID: "d1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, other.ID))
	assert.ErrorIs(t, s.Delete(ctx, other.ID), repository.ErrNotFound)
	list, err = s.List(ctx, repository.PrescriptionFilter{DoctorID: "d1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
