package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupk/wpts-service/internal/model"
)

func seedPayment(t *testing.T, store *MemoryPaymentStore, workorder, contractor string) *model.Payment {
	t.Helper()
	now := time.Now().UTC()
	payment, err := store.Create(context.Background(), &model.Payment{
		ID:         uuid.New(),
		WorkOrder:  workorder,
		Contractor: contractor,
		Amount:     1000,
		WorkStatus: model.WorkStatusNone,
		Workers:    []model.WorkerAllocation{},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
	return payment
}

func TestMemoryPaymentStoreMutate(t *testing.T) {
	ctx := context.Background()

	t.Run("a failing closure writes nothing", func(t *testing.T) {
		store := NewMemoryPaymentStore()
		payment := seedPayment(t, store, "WO-1", "Acme")

		boom := errors.New("boom")
		_, err := store.Mutate(ctx, payment.ID, func(p *model.Payment) error {
			p.Allocated = true
			p.WorkStatus = model.WorkStatusAssigned
			return boom
		})
		require.ErrorIs(t, err, boom)

		current, err := store.GetByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.False(t, current.Allocated)
		assert.Equal(t, model.WorkStatusNone, current.WorkStatus)
	})

	t.Run("unknown id", func(t *testing.T) {
		store := NewMemoryPaymentStore()

		_, err := store.Mutate(ctx, uuid.New(), func(*model.Payment) error { return nil })
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returned payments are copies", func(t *testing.T) {
		store := NewMemoryPaymentStore()
		payment := seedPayment(t, store, "WO-1", "Acme")

		fetched, err := store.GetByID(ctx, payment.ID)
		require.NoError(t, err)
		fetched.Contractor = "Tampered"
		fetched.Workers = append(fetched.Workers, model.WorkerAllocation{Phone: "000"})

		current, err := store.GetByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme", current.Contractor)
		assert.Empty(t, current.Workers)
	})
}

func TestMemoryPaymentStoreMutateAllocation(t *testing.T) {
	ctx := context.Background()

	seedAllocated := func(t *testing.T) *MemoryPaymentStore {
		store := NewMemoryPaymentStore()
		payment := seedPayment(t, store, "WO-1", "Acme")
		_, err := store.Mutate(ctx, payment.ID, func(p *model.Payment) error {
			p.Allocated = true
			p.WorkStatus = model.WorkStatusAssigned
			p.Workers = []model.WorkerAllocation{
				{PaymentID: p.ID, Name: "Ram", Phone: "111", PromisedAmount: 600, PaymentStatus: model.PaymentStatusPending},
				{PaymentID: p.ID, Name: "Shyam", Phone: "222", PromisedAmount: 400, PaymentStatus: model.PaymentStatusPending},
			}
			return nil
		})
		require.NoError(t, err)
		return store
	}

	t.Run("targets the allocation by phone and workorder", func(t *testing.T) {
		store := seedAllocated(t)

		allocation, err := store.MutateAllocation(ctx, "222", "WO-1", func(a *model.WorkerAllocation) error {
			a.PaymentStatus = model.PaymentStatusVerified
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Shyam", allocation.Name)
		assert.Equal(t, model.PaymentStatusVerified, allocation.PaymentStatus)
	})

	t.Run("no match on phone or workorder", func(t *testing.T) {
		store := seedAllocated(t)

		_, err := store.MutateAllocation(ctx, "999", "WO-1", func(*model.WorkerAllocation) error { return nil })
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.MutateAllocation(ctx, "111", "WO-9", func(*model.WorkerAllocation) error { return nil })
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("a failing closure leaves the allocation unchanged", func(t *testing.T) {
		store := seedAllocated(t)

		boom := errors.New("boom")
		_, err := store.MutateAllocation(ctx, "111", "WO-1", func(a *model.WorkerAllocation) error {
			a.PaymentStatus = model.PaymentStatusDisputed
			return boom
		})
		require.ErrorIs(t, err, boom)

		allocated, err := store.PhoneAllocated(ctx, "111")
		require.NoError(t, err)
		assert.True(t, allocated)

		payments, err := store.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, model.PaymentStatusPending, payments[0].Workers[0].PaymentStatus)
	})
}

func TestMemoryWorkerStore(t *testing.T) {
	ctx := context.Background()

	t.Run("find by phone returns the earliest registration", func(t *testing.T) {
		store := NewMemoryWorkerStore()

		first := &model.Worker{ID: uuid.New(), Name: "Ram", Phone: "111"}
		_, err := store.Create(ctx, first)
		require.NoError(t, err)
		_, err = store.Create(ctx, &model.Worker{ID: uuid.New(), Name: "Other Ram", Phone: "111"})
		require.NoError(t, err)

		found, err := store.FindByPhone(ctx, "111")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		store := NewMemoryWorkerStore()

		for _, phone := range []string{"1", "2", "3"} {
			_, err := store.Create(ctx, &model.Worker{ID: uuid.New(), Name: "W" + phone, Phone: phone})
			require.NoError(t, err)
		}

		workers, err := store.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, workers, 3)
		assert.Equal(t, "1", workers[0].Phone)
		assert.Equal(t, "3", workers[2].Phone)
	})

	t.Run("unknown phone", func(t *testing.T) {
		store := NewMemoryWorkerStore()

		_, err := store.FindByPhone(ctx, "999")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
