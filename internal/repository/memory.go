package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/anupk/wpts-service/internal/model"
)

// MemoryPaymentStore keeps payments in process memory, which is the
// reference storage model for this service. A single mutex serializes
// mutations, so a read-modify-write on one payment can never interleave with
// another. All returned values are deep copies.
type MemoryPaymentStore struct {
	mu       sync.Mutex
	payments []*model.Payment
}

func NewMemoryPaymentStore() *MemoryPaymentStore {
	return &MemoryPaymentStore{}
}

func (s *MemoryPaymentStore) Create(_ context.Context, payment *model.Payment) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clonePayment(payment)
	s.payments = append(s.payments, stored)
	return clonePayment(stored), nil
}

func (s *MemoryPaymentStore) GetByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment := s.findByID(id)
	if payment == nil {
		return nil, ErrNotFound
	}
	return clonePayment(payment), nil
}

func (s *MemoryPaymentStore) Mutate(_ context.Context, id uuid.UUID, fn func(*model.Payment) error) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment := s.findByID(id)
	if payment == nil {
		return nil, ErrNotFound
	}

	// fn runs on a copy so a failed mutation leaves the stored record intact.
	draft := clonePayment(payment)
	if err := fn(draft); err != nil {
		return nil, err
	}

	*payment = *clonePayment(draft)
	return clonePayment(payment), nil
}

func (s *MemoryPaymentStore) MutateAllocation(_ context.Context, phone, workorder string, fn func(*model.WorkerAllocation) error) (*model.WorkerAllocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, payment := range s.payments {
		if payment.WorkOrder != workorder {
			continue
		}
		for i := range payment.Workers {
			if payment.Workers[i].Phone != phone {
				continue
			}

			draft := cloneAllocation(&payment.Workers[i])
			if err := fn(draft); err != nil {
				return nil, err
			}
			payment.Workers[i] = *cloneAllocation(draft)
			return cloneAllocation(&payment.Workers[i]), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryPaymentStore) ListAll(_ context.Context) ([]model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.Payment, 0, len(s.payments))
	for _, payment := range s.payments {
		result = append(result, *clonePayment(payment))
	}
	return result, nil
}

func (s *MemoryPaymentStore) ListByContractor(_ context.Context, contractor string) ([]model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.Payment, 0)
	for _, payment := range s.payments {
		if strings.EqualFold(payment.Contractor, contractor) {
			result = append(result, *clonePayment(payment))
		}
	}
	return result, nil
}

func (s *MemoryPaymentStore) PhoneAllocated(_ context.Context, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, payment := range s.payments {
		for i := range payment.Workers {
			if payment.Workers[i].Phone == phone {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *MemoryPaymentStore) findByID(id uuid.UUID) *model.Payment {
	for _, payment := range s.payments {
		if payment.ID == id {
			return payment
		}
	}
	return nil
}

// MemoryWorkerStore keeps roster identities in insertion order.
type MemoryWorkerStore struct {
	mu      sync.Mutex
	workers []*model.Worker
}

func NewMemoryWorkerStore() *MemoryWorkerStore {
	return &MemoryWorkerStore{}
}

func (s *MemoryWorkerStore) Create(_ context.Context, worker *model.Worker) (*model.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *worker
	s.workers = append(s.workers, &stored)
	copied := stored
	return &copied, nil
}

func (s *MemoryWorkerStore) FindByPhone(_ context.Context, phone string) (*model.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, worker := range s.workers {
		if worker.Phone == phone {
			copied := *worker
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryWorkerStore) ListAll(_ context.Context) ([]model.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.Worker, 0, len(s.workers))
	for _, worker := range s.workers {
		result = append(result, *worker)
	}
	return result, nil
}

func clonePayment(payment *model.Payment) *model.Payment {
	copied := *payment
	if payment.CompletedAt != nil {
		completedAt := *payment.CompletedAt
		copied.CompletedAt = &completedAt
	}
	copied.Workers = make([]model.WorkerAllocation, 0, len(payment.Workers))
	for i := range payment.Workers {
		copied.Workers = append(copied.Workers, *cloneAllocation(&payment.Workers[i]))
	}
	return &copied
}

func cloneAllocation(allocation *model.WorkerAllocation) *model.WorkerAllocation {
	copied := *allocation
	if allocation.ActualPaid != nil {
		actualPaid := *allocation.ActualPaid
		copied.ActualPaid = &actualPaid
	}
	if allocation.ActualReceivedByWorker != nil {
		received := *allocation.ActualReceivedByWorker
		copied.ActualReceivedByWorker = &received
	}
	return &copied
}
