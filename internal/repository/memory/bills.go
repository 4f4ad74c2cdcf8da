package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
)

type BillStore struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]models.Bill
}

func NewBillStore() *BillStore {
	return &BillStore{docs: make(map[primitive.ObjectID]models.Bill)}
}

func (s *BillStore) List(_ context.Context, f repository.BillFilter) ([]models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Bill, 0)
	for _, id := range s.order {
		b, ok := s.docs[id]
		if !ok {
			continue
		}
		if f.PatientID != nil && b.PatientID != *f.PatientID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, cloneBill(b))
	}
	newestFirst(out, func(b models.Bill) time.Time { return b.CreatedAt })
	return out, nil
}

func (s *BillStore) Get(_ context.Context, id primitive.ObjectID) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	b = cloneBill(b)
	return &b, nil
}

func (s *BillStore) Insert(_ context.Context, b *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	s.docs[b.ID] = cloneBill(*b)
	s.order = append(s.order, b.ID)
	return nil
}

func (s *BillStore) UpdatePending(_ context.Context, id primitive.ObjectID, ch repository.BillChanges) (*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if b.Status != models.BillPending {
		return nil, repository.ErrConflict
	}
	setString(&b.PatientName, ch.PatientName)
	if ch.Items != nil {
		b.Items = append([]models.BillItem(nil), ch.Items...)
	}
	if ch.TotalAmount != nil {
		b.TotalAmount = *ch.TotalAmount
	}
	b.UpdatedAt = ch.UpdatedAt
	b.UpdatedBy = ch.UpdatedBy
	b.UpdatedByName = ch.UpdatedByName
	s.docs[id] = b
	b = cloneBill(b)
	return &b, nil
}

func (s *BillStore) MarkPaid(_ context.Context, id primitive.ObjectID, stamp repository.PaymentStamp) (*models.Bill, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.docs[id]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	transitioned := b.Status != models.BillPaid
	if transitioned {
		at := stamp.At
		b.Status = models.BillPaid
		b.PaidAt = &at
	}
	b.UpdatedAt = stamp.At
	b.UpdatedBy = stamp.By
	b.UpdatedByName = stamp.ByName
	s.docs[id] = b
	b = cloneBill(b)
	return &b, transitioned, nil
}

func (s *BillStore) DeletePending(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if b.Status != models.BillPending {
		return repository.ErrConflict
	}
	delete(s.docs, id)
	s.order = removeID(s.order, id)
	return nil
}

func cloneBill(b models.Bill) models.Bill {
	b.Items = append([]models.BillItem(nil), b.Items...)
	if b.PaidAt != nil {
		at := *b.PaidAt
		b.PaidAt = &at
	}
	return b
}
