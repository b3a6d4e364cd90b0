package simulation

import (
	"sync"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

// RecordStore is the append-only log of receipts and abandonments for a run.
type RecordStore struct {
	mu           sync.RWMutex
	receipts     []domain.Receipt
	abandonments []domain.Abandonment
}

func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

func (s *RecordStore) AppendReceipt(r domain.Receipt) {
	s.mu.Lock()
	s.receipts = append(s.receipts, r)
	s.mu.Unlock()
}

func (s *RecordStore) AppendAbandonment(a domain.Abandonment) {
	s.mu.Lock()
	s.abandonments = append(s.abandonments, a)
	s.mu.Unlock()
}

// Receipts returns a copy of the receipts in issue order.
func (s *RecordStore) Receipts() []domain.Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

func (s *RecordStore) Abandonments() []domain.Abandonment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Abandonment, len(s.abandonments))
	copy(out, s.abandonments)
	return out
}

func (s *RecordStore) ReceiptCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.receipts)
}
