package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
)

type PatientStore struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]models.Patient
}

func NewPatientStore() *PatientStore {
	return &PatientStore{docs: make(map[primitive.ObjectID]models.Patient)}
}

func (s *PatientStore) List(_ context.Context) ([]models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Patient, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	newestFirst(out, func(p models.Patient) time.Time { return p.CreatedAt })
	return out, nil
}

func (s *PatientStore) Get(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *PatientStore) FindByEmail(_ context.Context, email string) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if p := s.docs[id]; p.Email == email {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *PatientStore) Insert(_ context.Context, p *models.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(p.Email, primitive.NilObjectID) {
		return repository.ErrDuplicate
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.docs[p.ID] = *p
	s.order = append(s.order, p.ID)
	return nil
}

func (s *PatientStore) Update(_ context.Context, id primitive.ObjectID, ch repository.PatientChanges) (*models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ch.Email != nil && s.emailTaken(*ch.Email, id) {
		return nil, repository.ErrDuplicate
	}
	setString(&p.Name, ch.Name)
	setString(&p.Email, ch.Email)
	setString(&p.Phone, ch.Phone)
	setString(&p.Address, ch.Address)
	setString(&p.EmergencyContact, ch.EmergencyContact)
	setString(&p.MedicalHistory, ch.MedicalHistory)
	setString(&p.Token, ch.Token)
	if ch.DateOfBirth != nil {
		p.DateOfBirth = *ch.DateOfBirth
	}
	p.UpdatedAt = ch.UpdatedAt
	s.docs[id] = p
	return &p, nil
}

func (s *PatientStore) emailTaken(email string, except primitive.ObjectID) bool {
	for id, p := range s.docs {
		if id != except && p.Email == email {
			return true
		}
	}
	return false
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
