// Package memory implements the repository contracts in process memory.
// It backs STORE_DRIVER=memory for local runs and stands in for MongoDB in
// tests. Writes are serialized by a mutex per store, so the conditional
// writes behave like their MongoDB counterparts.
package memory

import (
	"sort"
	"time"

	"github.com/harentsoaR/clinic-api/internal/repository"
)

// newestFirst sorts by creation time, latest first. Later insertions win ties.
func newestFirst[T any](items []T, createdAt func(T) time.Time) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

var (
	_ repository.UserRepository         = (*UserStore)(nil)
	_ repository.CredentialRepository   = (*CredentialStore)(nil)
	_ repository.PatientRepository      = (*PatientStore)(nil)
	_ repository.PrescriptionRepository = (*PrescriptionStore)(nil)
	_ repository.BillRepository         = (*BillStore)(nil)
)

// Stores bundles one empty store per collection.
type Stores struct {
	Users         *UserStore
	Credentials   *CredentialStore
	Patients      *PatientStore
	Prescriptions *PrescriptionStore
	Bills         *BillStore
}

func New() *Stores {
	return &Stores{
		Users:         NewUserStore(),
		Credentials:   NewCredentialStore(),
		Patients:      NewPatientStore(),
		Prescriptions: NewPrescriptionStore(),
		Bills:         NewBillStore(),
	}
}
