// Package repository holds the document-store contracts used by the
// services, plus their MongoDB implementation.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-api/internal/models"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict is returned when a conditional write finds the document in
	// a state that does not satisfy its precondition.
	ErrConflict = errors.New("document state precondition failed")
)

type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	// Put creates or replaces the profile stored under u.ID.
	Put(ctx context.Context, u *models.User) error
}

type CredentialRepository interface {
	Insert(ctx context.Context, c *models.Credential) error
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)
}

// PatientChanges lists the patient fields a write may touch. Nil fields are
// left as they are.
type PatientChanges struct {
	Name             *string
	Email            *string
	Phone            *string
	Address          *string
	DateOfBirth      *time.Time
	EmergencyContact *string
	MedicalHistory   *string
	Token            *string
	UpdatedAt        time.Time
}

type PatientRepository interface {
	// List returns every patient, newest first.
	List(ctx context.Context) ([]models.Patient, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	FindByEmail(ctx context.Context, email string) (*models.Patient, error)
	// Insert assigns p.ID when it is zero. A taken email yields ErrDuplicate.
	Insert(ctx context.Context, p *models.Patient) error
	Update(ctx context.Context, id primitive.ObjectID, ch PatientChanges) (*models.Patient, error)
}

type PrescriptionFilter struct {
	PatientID *primitive.ObjectID
	DoctorID  string
}

type PrescriptionChanges struct {
	PatientName *string
	Medications []models.Medication
	Notes       *string
	UpdatedAt   time.Time
}

type PrescriptionRepository interface {
	// List returns matching prescriptions, newest first.
	List(ctx context.Context, f PrescriptionFilter) ([]models.Prescription, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Prescription, error)
	Insert(ctx context.Context, p *models.Prescription) error
	Update(ctx context.Context, id primitive.ObjectID, ch PrescriptionChanges) (*models.Prescription, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type BillFilter struct {
	PatientID *primitive.ObjectID
	Status    string
}

// BillChanges is applied only while the bill is still pending.
type BillChanges struct {
	PatientName   *string
	Items         []models.BillItem
	TotalAmount   *float64
	UpdatedAt     time.Time
	UpdatedBy     string
	UpdatedByName string
}

// PaymentStamp records who confirmed a payment and when.
type PaymentStamp struct {
	At     time.Time
	By     string
	ByName string
}

type BillRepository interface {
	// List returns matching bills, newest first.
	List(ctx context.Context, f BillFilter) ([]models.Bill, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Bill, error)
	Insert(ctx context.Context, b *models.Bill) error
	// UpdatePending applies ch if the bill is pending. A paid bill yields
	// ErrConflict, a missing one ErrNotFound.
	UpdatePending(ctx context.Context, id primitive.ObjectID, ch BillChanges) (*models.Bill, error)
	// MarkPaid sets status=paid. paidAt is written only by the call that
	// moves the bill out of pending; transitioned reports whether that was
	// this call.
	MarkPaid(ctx context.Context, id primitive.ObjectID, stamp PaymentStamp) (b *models.Bill, transitioned bool, err error)
	// DeletePending removes a pending bill. A paid bill yields ErrConflict.
	DeletePending(ctx context.Context, id primitive.ObjectID) error
}
