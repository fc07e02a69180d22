package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anupk/wpts-service/internal/model"
	"github.com/anupk/wpts-service/internal/repository"
)

type ReportGenerator interface {
	Generate(rows []model.WorkerPaymentRow) ([]byte, error)
}

type ReceiptGenerator interface {
	Generate(payment model.Payment) ([]byte, error)
}

// PaymentService owns the payment ledger: the allocation/completion state
// machine and the per-worker verification records hanging off it.
type PaymentService struct {
	payments PaymentStore
	excel    ReportGenerator
	pdf      ReceiptGenerator
}

func NewPaymentService(payments PaymentStore, excel ReportGenerator, pdf ReceiptGenerator) *PaymentService {
	return &PaymentService{
		payments: payments,
		excel:    excel,
		pdf:      pdf,
	}
}

type CreatePaymentInput struct {
	WorkOrder  string
	Contractor string
	Amount     float64
}

type AllocationInput struct {
	Name           string
	Phone          string
	Aadhaar        string
	PromisedAmount float64
}

type ActualPaymentInput struct {
	WorkerPhone    string
	PromisedAmount float64
	ActualPaid     float64
}

type RecordActualPaymentsResult struct {
	Payment   *model.Payment
	Updated   int
	Unmatched []string
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*model.Payment, error) {
	workorder := strings.TrimSpace(input.WorkOrder)
	contractor := strings.TrimSpace(input.Contractor)

	if workorder == "" {
		return nil, fmt.Errorf("%w: workorder is required", ErrInvalidInput)
	}
	if contractor == "" {
		return nil, fmt.Errorf("%w: contractor name is required", ErrInvalidInput)
	}
	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount < 0 {
		return nil, fmt.Errorf("%w: valid amount is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	payment := &model.Payment{
		ID:         uuid.New(),
		WorkOrder:  workorder,
		Contractor: contractor,
		Amount:     input.Amount,
		Allocated:  false,
		WorkStatus: model.WorkStatusNone,
		Workers:    []model.WorkerAllocation{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return s.payments.Create(ctx, payment)
}

// Allocate is the only transition into the assigned state and is one-shot:
// re-allocating an allocated payment fails, nothing is merged or overwritten.
func (s *PaymentService) Allocate(ctx context.Context, paymentID uuid.UUID, inputs []AllocationInput) (*model.Payment, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one worker is required", ErrInvalidInput)
	}
	for _, input := range inputs {
		if strings.TrimSpace(input.Name) == "" {
			return nil, fmt.Errorf("%w: worker name is required", ErrInvalidInput)
		}
		if strings.TrimSpace(input.Phone) == "" {
			return nil, fmt.Errorf("%w: worker phone is required", ErrInvalidInput)
		}
		if math.IsNaN(input.PromisedAmount) || input.PromisedAmount <= 0 {
			return nil, fmt.Errorf("%w: promised amount must be greater than 0", ErrInvalidInput)
		}
	}

	payment, err := s.payments.Mutate(ctx, paymentID, func(p *model.Payment) error {
		if p.Allocated {
			return ErrAlreadyAllocated
		}

		now := time.Now().UTC()
		allocations := make([]model.WorkerAllocation, 0, len(inputs))
		for _, input := range inputs {
			allocations = append(allocations, model.WorkerAllocation{
				PaymentID:      p.ID,
				Name:           strings.TrimSpace(input.Name),
				Phone:          strings.TrimSpace(input.Phone),
				Aadhaar:        strings.TrimSpace(input.Aadhaar),
				PromisedAmount: input.PromisedAmount,
				PaymentStatus:  model.PaymentStatusPending,
				UpdatedAt:      now,
			})
		}

		p.Workers = allocations
		p.Allocated = true
		p.WorkStatus = model.WorkStatusAssigned
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return payment, nil
}

func (s *PaymentService) MarkComplete(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := s.payments.Mutate(ctx, paymentID, func(p *model.Payment) error {
		if !p.Allocated {
			return fmt.Errorf("%w: payment not allocated to workers yet", ErrInvalidState)
		}
		if p.WorkStatus != model.WorkStatusAssigned {
			return fmt.Errorf("%w: work already completed", ErrInvalidState)
		}

		now := time.Now().UTC()
		p.WorkStatus = model.WorkStatusCompleted
		p.CompletedAt = &now
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return payment, nil
}

// RecordActualPayments matches records to allocations by phone, first match
// in worker order. Unmatched phones are skipped and reported back to the
// caller rather than failing the whole request.
func (s *PaymentService) RecordActualPayments(ctx context.Context, paymentID uuid.UUID, records []ActualPaymentInput) (*RecordActualPaymentsResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: worker payment records are required", ErrInvalidInput)
	}

	result := &RecordActualPaymentsResult{}
	payment, err := s.payments.Mutate(ctx, paymentID, func(p *model.Payment) error {
		if !p.Allocated {
			return fmt.Errorf("%w: payment not allocated to workers yet", ErrInvalidState)
		}

		now := time.Now().UTC()
		for _, record := range records {
			phone := strings.TrimSpace(record.WorkerPhone)
			matched := false
			for i := range p.Workers {
				if p.Workers[i].Phone != phone {
					continue
				}
				actual := record.ActualPaid
				p.Workers[i].PromisedAmount = record.PromisedAmount
				p.Workers[i].ActualPaid = &actual
				p.Workers[i].UpdatedAt = now
				matched = true
				break
			}
			if matched {
				result.Updated++
			} else {
				result.Unmatched = append(result.Unmatched, phone)
			}
		}
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	result.Payment = payment
	return result, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context) ([]model.Payment, error) {
	return s.payments.ListAll(ctx)
}

func (s *PaymentService) ListForContractor(ctx context.Context, contractor string) ([]model.Payment, error) {
	contractor = strings.TrimSpace(contractor)
	if contractor == "" {
		return nil, fmt.Errorf("%w: contractor name is required", ErrInvalidInput)
	}
	return s.payments.ListByContractor(ctx, contractor)
}

func (s *PaymentService) WorkerPaymentRows(ctx context.Context) ([]model.WorkerPaymentRow, error) {
	payments, err := s.payments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return flattenRows(payments, ""), nil
}

func (s *PaymentService) PaymentsForWorker(ctx context.Context, phone string) ([]model.WorkerPaymentRow, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: worker phone is required", ErrInvalidInput)
	}
	payments, err := s.payments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return flattenRows(payments, phone), nil
}

// VerifyPayment records the amount a worker says they received and marks the
// allocation verified. Re-verifying just overwrites the amount; a disputed
// allocation stays disputed.
func (s *PaymentService) VerifyPayment(ctx context.Context, phone, workorder string, actualReceived float64) (*model.WorkerAllocation, error) {
	phone = strings.TrimSpace(phone)
	workorder = strings.TrimSpace(workorder)
	if phone == "" || workorder == "" {
		return nil, fmt.Errorf("%w: worker phone and workorder are required", ErrInvalidInput)
	}
	if math.IsNaN(actualReceived) || actualReceived <= 0 {
		return nil, fmt.Errorf("%w: actual received amount must be greater than 0", ErrInvalidInput)
	}

	allocation, err := s.payments.MutateAllocation(ctx, phone, workorder, func(a *model.WorkerAllocation) error {
		if a.PaymentStatus == model.PaymentStatusDisputed {
			return fmt.Errorf("%w: disputed payment cannot be verified", ErrInvalidState)
		}
		actual := actualReceived
		a.ActualReceivedByWorker = &actual
		a.PaymentStatus = model.PaymentStatusVerified
		a.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return allocation, nil
}

// ReportDiscrepancy is allowed from any status, including verified: the last
// report wins and leaves the allocation disputed.
func (s *PaymentService) ReportDiscrepancy(ctx context.Context, phone, workorder string, actualReceived float64, notes string) (*model.WorkerAllocation, error) {
	phone = strings.TrimSpace(phone)
	workorder = strings.TrimSpace(workorder)
	if phone == "" || workorder == "" {
		return nil, fmt.Errorf("%w: worker phone and workorder are required", ErrInvalidInput)
	}

	allocation, err := s.payments.MutateAllocation(ctx, phone, workorder, func(a *model.WorkerAllocation) error {
		actual := actualReceived
		a.ActualReceivedByWorker = &actual
		a.PaymentStatus = model.PaymentStatusDisputed
		a.DiscrepancyNotes = strings.TrimSpace(notes)
		a.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return allocation, nil
}

func (s *PaymentService) ExportWorkerPaymentRows(ctx context.Context) (*ExportResult, error) {
	rows, err := s.WorkerPaymentRows(ctx)
	if err != nil {
		return nil, err
	}

	content, err := s.excel.Generate(rows)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("worker-payments-%s.xlsx", time.Now().UTC().Format("20060102"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

func (s *PaymentService) Receipt(ctx context.Context, paymentID uuid.UUID) (*ExportResult, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	content, err := s.pdf.Generate(*payment)
	if err != nil {
		return nil, err
	}

	name := sanitizeFileName(payment.WorkOrder)
	if name == "" {
		name = payment.ID.String()
	}
	return &ExportResult{
		FileName: fmt.Sprintf("receipt-%s.pdf", name),
		Content:  content,
	}, nil
}

func (s *PaymentService) mapStoreError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func flattenRows(payments []model.Payment, phone string) []model.WorkerPaymentRow {
	rows := make([]model.WorkerPaymentRow, 0)
	for _, payment := range payments {
		for _, worker := range payment.Workers {
			if phone != "" && worker.Phone != phone {
				continue
			}
			rows = append(rows, model.WorkerPaymentRow{
				WorkerName:     worker.Name,
				WorkerPhone:    worker.Phone,
				WorkOrder:      payment.WorkOrder,
				Contractor:     payment.Contractor,
				PromisedAmount: worker.PromisedAmount,
				ActualPaid:     worker.ActualPaid,
				PaymentStatus:  worker.PaymentStatus,
				UpdatedAt:      worker.UpdatedAt,
			})
		}
	}
	return rows
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
