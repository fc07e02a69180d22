package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anupk/wpts-service/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type paymentRow struct {
	ID          uuid.UUID
	Workorder   string
	Contractor  string
	Amount      float64
	Allocated   bool
	WorkStatus  string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type allocationRow struct {
	PaymentID        uuid.UUID
	Position         int
	Name             string
	Phone            string
	Aadhaar          *string
	PromisedAmount   float64
	ActualPaid       *float64
	ActualReceived   *float64
	PaymentStatus    string
	DiscrepancyNotes *string
	UpdatedAt        time.Time
}

func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertPayment(tx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment *model.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := loadPayment(tx, id, false)
		if err != nil {
			return err
		}
		payment = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Mutate loads the payment under a row lock, applies fn and writes the
// result back, replacing the allocation rows wholesale. Any error from fn
// rolls the transaction back.
func (r *PaymentRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Payment) error) (*model.Payment, error) {
	var payment *model.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := loadPayment(tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(loaded); err != nil {
			return err
		}
		if err := updatePayment(tx, loaded); err != nil {
			return err
		}
		payment = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) MutateAllocation(ctx context.Context, phone, workorder string, fn func(*model.WorkerAllocation) error) (*model.WorkerAllocation, error) {
	var allocation *model.WorkerAllocation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row allocationRow
		err := tx.Raw(`
			SELECT
				w.payment_id,
				w.position,
				w.name,
				w.phone,
				w.aadhaar,
				w.promised_amount,
				w.actual_paid,
				w.actual_received,
				w.payment_status,
				w.discrepancy_notes,
				w.updated_at
			FROM payment_workers w
			JOIN payments p ON p.id = w.payment_id
			WHERE p.workorder = ? AND w.phone = ?
			ORDER BY p.created_at ASC, w.position ASC
			LIMIT 1
			FOR UPDATE OF w
		`, workorder, phone).Scan(&row).Error
		if err != nil {
			return err
		}
		if row.PaymentID == uuid.Nil {
			return ErrNotFound
		}

		current := allocationFromRow(row)
		if err := fn(&current); err != nil {
			return err
		}

		err = tx.Exec(`
			UPDATE payment_workers
			SET
				name = ?,
				phone = ?,
				aadhaar = ?,
				promised_amount = ?,
				actual_paid = ?,
				actual_received = ?,
				payment_status = ?,
				discrepancy_notes = ?,
				updated_at = ?
			WHERE payment_id = ? AND position = ?
		`,
			current.Name,
			current.Phone,
			nullIfEmpty(current.Aadhaar),
			current.PromisedAmount,
			current.ActualPaid,
			current.ActualReceivedByWorker,
			current.PaymentStatus,
			nullIfEmpty(current.DiscrepancyNotes),
			current.UpdatedAt,
			row.PaymentID,
			row.Position,
		).Error
		if err != nil {
			return err
		}
		allocation = &current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return allocation, nil
}

func (r *PaymentRepository) ListAll(ctx context.Context) ([]model.Payment, error) {
	return r.list(ctx, `
		SELECT id, workorder, contractor, amount, allocated, work_status, completed_at, created_at, updated_at
		FROM payments
		ORDER BY created_at ASC
	`)
}

func (r *PaymentRepository) ListByContractor(ctx context.Context, contractor string) ([]model.Payment, error) {
	return r.list(ctx, `
		SELECT id, workorder, contractor, amount, allocated, work_status, completed_at, created_at, updated_at
		FROM payments
		WHERE LOWER(contractor) = LOWER(?)
		ORDER BY created_at ASC
	`, contractor)
}

func (r *PaymentRepository) PhoneAllocated(ctx context.Context, phone string) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Raw(`
		SELECT EXISTS (SELECT 1 FROM payment_workers WHERE phone = ?)
	`, phone).Scan(&found).Error
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Payment, error) {
	var rows []paymentRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	payments := make([]model.Payment, 0, len(rows))
	for _, row := range rows {
		workers, err := loadAllocations(r.db.WithContext(ctx), row.ID)
		if err != nil {
			return nil, err
		}
		payments = append(payments, paymentFromRow(row, workers))
	}
	return payments, nil
}

func loadPayment(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*model.Payment, error) {
	query := `
		SELECT id, workorder, contractor, amount, allocated, work_status, completed_at, created_at, updated_at
		FROM payments
		WHERE id = ?
		LIMIT 1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var row paymentRow
	if err := tx.Raw(query, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}

	workers, err := loadAllocations(tx, row.ID)
	if err != nil {
		return nil, err
	}
	payment := paymentFromRow(row, workers)
	return &payment, nil
}

func loadAllocations(tx *gorm.DB, paymentID uuid.UUID) ([]model.WorkerAllocation, error) {
	var rows []allocationRow
	err := tx.Raw(`
		SELECT
			payment_id,
			position,
			name,
			phone,
			aadhaar,
			promised_amount,
			actual_paid,
			actual_received,
			payment_status,
			discrepancy_notes,
			updated_at
		FROM payment_workers
		WHERE payment_id = ?
		ORDER BY position ASC
	`, paymentID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	allocations := make([]model.WorkerAllocation, 0, len(rows))
	for _, row := range rows {
		allocations = append(allocations, allocationFromRow(row))
	}
	return allocations, nil
}

func insertPayment(tx *gorm.DB, payment *model.Payment) error {
	err := tx.Exec(`
		INSERT INTO payments (id, workorder, contractor, amount, allocated, work_status, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		payment.ID,
		payment.WorkOrder,
		payment.Contractor,
		payment.Amount,
		payment.Allocated,
		payment.WorkStatus,
		payment.CompletedAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
	if err != nil {
		return err
	}
	return insertAllocations(tx, payment)
}

func updatePayment(tx *gorm.DB, payment *model.Payment) error {
	err := tx.Exec(`
		UPDATE payments
		SET
			workorder = ?,
			contractor = ?,
			amount = ?,
			allocated = ?,
			work_status = ?,
			completed_at = ?,
			updated_at = ?
		WHERE id = ?
	`,
		payment.WorkOrder,
		payment.Contractor,
		payment.Amount,
		payment.Allocated,
		payment.WorkStatus,
		payment.CompletedAt,
		payment.UpdatedAt,
		payment.ID,
	).Error
	if err != nil {
		return err
	}

	if err := tx.Exec(`DELETE FROM payment_workers WHERE payment_id = ?`, payment.ID).Error; err != nil {
		return err
	}
	return insertAllocations(tx, payment)
}

func insertAllocations(tx *gorm.DB, payment *model.Payment) error {
	for i, worker := range payment.Workers {
		err := tx.Exec(`
			INSERT INTO payment_workers (
				payment_id,
				position,
				name,
				phone,
				aadhaar,
				promised_amount,
				actual_paid,
				actual_received,
				payment_status,
				discrepancy_notes,
				updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			payment.ID,
			i,
			worker.Name,
			worker.Phone,
			nullIfEmpty(worker.Aadhaar),
			worker.PromisedAmount,
			worker.ActualPaid,
			worker.ActualReceivedByWorker,
			worker.PaymentStatus,
			nullIfEmpty(worker.DiscrepancyNotes),
			worker.UpdatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func paymentFromRow(row paymentRow, workers []model.WorkerAllocation) model.Payment {
	return model.Payment{
		ID:          row.ID,
		WorkOrder:   row.Workorder,
		Contractor:  row.Contractor,
		Amount:      row.Amount,
		Allocated:   row.Allocated,
		WorkStatus:  model.WorkStatus(row.WorkStatus),
		Workers:     workers,
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func allocationFromRow(row allocationRow) model.WorkerAllocation {
	return model.WorkerAllocation{
		PaymentID:              row.PaymentID,
		Name:                   row.Name,
		Phone:                  row.Phone,
		Aadhaar:                stringValue(row.Aadhaar),
		PromisedAmount:         row.PromisedAmount,
		ActualPaid:             row.ActualPaid,
		ActualReceivedByWorker: row.ActualReceived,
		PaymentStatus:          model.PaymentStatus(row.PaymentStatus),
		DiscrepancyNotes:       stringValue(row.DiscrepancyNotes),
		UpdatedAt:              row.UpdatedAt,
	}
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
