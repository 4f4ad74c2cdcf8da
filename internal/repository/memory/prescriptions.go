package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
)

type PrescriptionStore struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]models.Prescription
}

func NewPrescriptionStore() *PrescriptionStore {
	return &PrescriptionStore{docs: make(map[primitive.ObjectID]models.Prescription)}
}

func (s *PrescriptionStore) List(_ context.Context, f repository.PrescriptionFilter) ([]models.Prescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Prescription, 0)
	for _, id := range s.order {
		p, ok := s.docs[id]
		if !ok {
			continue
		}
		if f.PatientID != nil && p.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != "" && p.DoctorID != f.DoctorID {
			continue
		}
		out = append(out, clonePrescription(p))
	}
	newestFirst(out, func(p models.Prescription) time.Time { return p.CreatedAt })
	return out, nil
}

func (s *PrescriptionStore) Get(_ context.Context, id primitive.ObjectID) (*models.Prescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = clonePrescription(p)
	return &p, nil
}

func (s *PrescriptionStore) Insert(_ context.Context, p *models.Prescription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.docs[p.ID] = clonePrescription(*p)
	s.order = append(s.order, p.ID)
	return nil
}

func (s *PrescriptionStore) Update(_ context.Context, id primitive.ObjectID, ch repository.PrescriptionChanges) (*models.Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	setString(&p.PatientName, ch.PatientName)
	setString(&p.Notes, ch.Notes)
	if ch.Medications != nil {
		p.Medications = append([]models.Medication(nil), ch.Medications...)
	}
	p.UpdatedAt = ch.UpdatedAt
	s.docs[id] = p
	p = clonePrescription(p)
	return &p, nil
}

func (s *PrescriptionStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, id)
	s.order = removeID(s.order, id)
	return nil
}

func clonePrescription(p models.Prescription) models.Prescription {
	p.Medications = append([]models.Medication(nil), p.Medications...)
	return p
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
