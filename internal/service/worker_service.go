package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anupk/wpts-service/internal/model"
	"github.com/anupk/wpts-service/internal/repository"
)

type TokenIssuer interface {
	Issue(phone string) (string, time.Time, error)
}

// WorkerService owns the worker roster and the phone-based login. Login is
// an identity lookup, not authentication: the name is accepted as typed and
// the issued token only scopes self-service calls to one phone.
type WorkerService struct {
	workers  WorkerStore
	payments PaymentStore
	tokens   TokenIssuer
}

func NewWorkerService(workers WorkerStore, payments PaymentStore, tokens TokenIssuer) *WorkerService {
	return &WorkerService{
		workers:  workers,
		payments: payments,
		tokens:   tokens,
	}
}

type LoginResult struct {
	Name      string
	Phone     string
	Token     string
	ExpiresAt time.Time
}

// AddWorker registers a roster identity. Duplicate phones are permitted;
// lookups return the earliest registration.
func (s *WorkerService) AddWorker(ctx context.Context, name, phone, aadhaar string) (*model.Worker, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	if name == "" {
		return nil, fmt.Errorf("%w: worker name is required", ErrInvalidInput)
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: worker phone is required", ErrInvalidInput)
	}

	worker := &model.Worker{
		ID:        uuid.New(),
		Name:      name,
		Phone:     phone,
		Aadhaar:   strings.TrimSpace(aadhaar),
		CreatedAt: time.Now().UTC(),
	}

	return s.workers.Create(ctx, worker)
}

func (s *WorkerService) ListWorkers(ctx context.Context) ([]model.Worker, error) {
	return s.workers.ListAll(ctx)
}

func (s *WorkerService) FindByPhone(ctx context.Context, phone string) (*model.Worker, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: worker phone is required", ErrInvalidInput)
	}

	worker, err := s.workers.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return worker, nil
}

// Login pairs a phone with whatever name the worker typed. The phone must be
// known, either from the roster or from some payment allocation.
func (s *WorkerService) Login(ctx context.Context, phone, name string) (*LoginResult, error) {
	phone = strings.TrimSpace(phone)
	name = strings.TrimSpace(name)
	if phone == "" || name == "" {
		return nil, fmt.Errorf("%w: phone and name are required", ErrInvalidInput)
	}

	known := false
	if _, err := s.workers.FindByPhone(ctx, phone); err == nil {
		known = true
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if !known {
		allocated, err := s.payments.PhoneAllocated(ctx, phone)
		if err != nil {
			return nil, err
		}
		known = allocated
	}

	if !known {
		return nil, fmt.Errorf("%w: worker not found in any payment allocation", ErrAuthentication)
	}

	token, expiresAt, err := s.tokens.Issue(phone)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Name:      name,
		Phone:     phone,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
