package model

import (
	"time"

	"github.com/google/uuid"
)

type WorkStatus string

const (
	WorkStatusNone      WorkStatus = "none"
	WorkStatusAssigned  WorkStatus = "assigned"
	WorkStatusCompleted WorkStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusDisputed PaymentStatus = "disputed"
)

// Payment is the money envelope for one work order. Workers is empty until
// the payment has been allocated; Allocated and WorkStatus move together
// (not allocated means WorkStatus none and no workers).
type Payment struct {
	ID          uuid.UUID          `json:"id"`
	WorkOrder   string             `json:"workorder"`
	Contractor  string             `json:"contractor"`
	Amount      float64            `json:"amount"`
	Allocated   bool               `json:"allocated"`
	WorkStatus  WorkStatus         `json:"work_status"`
	Workers     []WorkerAllocation `json:"workers"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// WorkerAllocation is one worker's share of a payment. Name, phone and
// aadhaar are copied from the roster at allocation time; later roster edits
// do not reach back into existing allocations.
type WorkerAllocation struct {
	PaymentID              uuid.UUID     `json:"-"`
	Name                   string        `json:"name"`
	Phone                  string        `json:"phone"`
	Aadhaar                string        `json:"aadhaar,omitempty"`
	PromisedAmount         float64       `json:"promised_amount"`
	ActualPaid             *float64      `json:"actual_paid,omitempty"`
	ActualReceivedByWorker *float64      `json:"actual_received_by_worker,omitempty"`
	PaymentStatus          PaymentStatus `json:"payment_status"`
	DiscrepancyNotes       string        `json:"discrepancy_notes,omitempty"`
	UpdatedAt              time.Time     `json:"updated_at"`
}
