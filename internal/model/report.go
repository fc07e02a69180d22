package model

import "time"

// WorkerPaymentRow is the denormalized reporting projection: one row per
// allocation across all payments.
type WorkerPaymentRow struct {
	WorkerName     string        `json:"worker_name"`
	WorkerPhone    string        `json:"worker_phone"`
	WorkOrder      string        `json:"workorder"`
	Contractor     string        `json:"contractor"`
	PromisedAmount float64       `json:"promised_amount"`
	ActualPaid     *float64      `json:"actual_paid,omitempty"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
