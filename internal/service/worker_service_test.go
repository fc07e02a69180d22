package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupk/wpts-service/internal/excel"
	"github.com/anupk/wpts-service/internal/pdf"
	"github.com/anupk/wpts-service/internal/repository"
)

type stubTokenIssuer struct {
	issued []string
}

func (s *stubTokenIssuer) Issue(phone string) (string, time.Time, error) {
	s.issued = append(s.issued, phone)
	return "token-" + phone, time.Now().Add(time.Hour), nil
}

func newWorkerFixture() (*WorkerService, *PaymentService, *stubTokenIssuer) {
	payments := repository.NewMemoryPaymentStore()
	workers := repository.NewMemoryWorkerStore()
	tokens := &stubTokenIssuer{}

	paymentService := NewPaymentService(payments, excel.NewGenerator(), pdf.NewGenerator())
	workerService := NewWorkerService(workers, payments, tokens)
	return workerService, paymentService, tokens
}

func TestAddWorker(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns a fresh id and trims fields", func(t *testing.T) {
		s, _, _ := newWorkerFixture()

		worker, err := s.AddWorker(ctx, "  Ram  ", " 111 ", " 1234-5678 ")
		require.NoError(t, err)
		assert.Equal(t, "Ram", worker.Name)
		assert.Equal(t, "111", worker.Phone)
		assert.Equal(t, "1234-5678", worker.Aadhaar)

		other, err := s.AddWorker(ctx, "Shyam", "222", "")
		require.NoError(t, err)
		assert.NotEqual(t, worker.ID, other.ID)
	})

	t.Run("aadhaar is optional", func(t *testing.T) {
		s, _, _ := newWorkerFixture()

		worker, err := s.AddWorker(ctx, "Ram", "111", "")
		require.NoError(t, err)
		assert.Empty(t, worker.Aadhaar)
	})

	t.Run("duplicate phones are permitted", func(t *testing.T) {
		s, _, _ := newWorkerFixture()

		_, err := s.AddWorker(ctx, "Ram", "111", "")
		require.NoError(t, err)
		_, err = s.AddWorker(ctx, "Ram Kumar", "111", "")
		require.NoError(t, err)

		workers, err := s.ListWorkers(ctx)
		require.NoError(t, err)
		assert.Len(t, workers, 2)
	})

	t.Run("name and phone are required", func(t *testing.T) {
		s, _, _ := newWorkerFixture()

		_, err := s.AddWorker(ctx, "", "111", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = s.AddWorker(ctx, "Ram", "   ", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestFindByPhone(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the first registration for a phone", func(t *testing.T) {
		s, _, _ := newWorkerFixture()

		first, err := s.AddWorker(ctx, "Ram", "111", "")
		require.NoError(t, err)
		_, err = s.AddWorker(ctx, "Other Ram", "111", "")
		require.NoError(t, err)

		found, err := s.FindByPhone(ctx, "111")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})

	t.Run("unknown phone", func(t *testing.T) {
		s, _, _ := newWorkerFixture()

		_, err := s.FindByPhone(ctx, "999")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestWorkerLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("roster phone logs in with any typed name", func(t *testing.T) {
		s, _, tokens := newWorkerFixture()

		_, err := s.AddWorker(ctx, "Ram", "111", "")
		require.NoError(t, err)

		result, err := s.Login(ctx, "111", "Whoever Typed This")
		require.NoError(t, err)
		assert.Equal(t, "Whoever Typed This", result.Name)
		assert.Equal(t, "111", result.Phone)
		assert.Equal(t, "token-111", result.Token)
		assert.Equal(t, []string{"111"}, tokens.issued)
	})

	t.Run("phone known only from an allocation logs in", func(t *testing.T) {
		s, payments, _ := newWorkerFixture()

		payment, err := payments.CreatePayment(ctx, CreatePaymentInput{
			WorkOrder:  "WO-1",
			Contractor: "Acme",
			Amount:     1000,
		})
		require.NoError(t, err)
		_, err = payments.Allocate(ctx, payment.ID, []AllocationInput{
			{Name: "Shyam", Phone: "222", PromisedAmount: 1000},
		})
		require.NoError(t, err)

		result, err := s.Login(ctx, "222", "Shyam")
		require.NoError(t, err)
		assert.Equal(t, "222", result.Phone)
	})

	t.Run("unknown phone fails authentication", func(t *testing.T) {
		s, _, _ := newWorkerFixture()

		_, err := s.Login(ctx, "999", "Nobody")
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("phone and name are required", func(t *testing.T) {
		s, _, _ := newWorkerFixture()

		_, err := s.Login(ctx, "", "Ram")
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = s.Login(ctx, "111", "  ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAllocationSnapshot(t *testing.T) {
	ctx := context.Background()
	workerService, paymentService, _ := newWorkerFixture()

	worker, err := workerService.AddWorker(ctx, "Ram", "111", "1234")
	require.NoError(t, err)

	payment, err := paymentService.CreatePayment(ctx, CreatePaymentInput{
		WorkOrder:  "WO-1",
		Contractor: "Acme",
		Amount:     5000,
	})
	require.NoError(t, err)

	allocated, err := paymentService.Allocate(ctx, payment.ID, []AllocationInput{
		{Name: worker.Name, Phone: worker.Phone, Aadhaar: worker.Aadhaar, PromisedAmount: 5000},
	})
	require.NoError(t, err)

	// A later roster registration under the same phone must not reach back
	// into the existing allocation.
	_, err = workerService.AddWorker(ctx, "Renamed Ram", "111", "9999")
	require.NoError(t, err)

	current, err := paymentService.GetPayment(ctx, allocated.ID)
	require.NoError(t, err)
	require.Len(t, current.Workers, 1)
	assert.Equal(t, "Ram", current.Workers[0].Name)
	assert.Equal(t, "1234", current.Workers[0].Aadhaar)
}
