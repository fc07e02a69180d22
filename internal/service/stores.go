package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/anupk/wpts-service/internal/model"
)

// PaymentStore persists payments and their worker allocations. Mutate and
// MutateAllocation run the closure atomically with respect to other mutations
// of the same payment; when the closure returns an error nothing is written.
type PaymentStore interface {
	Create(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Payment) error) (*model.Payment, error)
	MutateAllocation(ctx context.Context, phone, workorder string, fn func(*model.WorkerAllocation) error) (*model.WorkerAllocation, error)
	ListAll(ctx context.Context) ([]model.Payment, error)
	ListByContractor(ctx context.Context, contractor string) ([]model.Payment, error)
	PhoneAllocated(ctx context.Context, phone string) (bool, error)
}

// WorkerStore persists roster identities.
type WorkerStore interface {
	Create(ctx context.Context, worker *model.Worker) (*model.Worker, error)
	FindByPhone(ctx context.Context, phone string) (*model.Worker, error)
	ListAll(ctx context.Context) ([]model.Worker, error)
}
