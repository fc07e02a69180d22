package model

import (
	"time"

	"github.com/google/uuid"
)

// Worker is a roster identity. Phone is the natural key for worker-facing
// lookups; duplicates are permitted, first match wins. Aadhaar is stored as
// typed, unvalidated.
type Worker struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Aadhaar   string    `json:"aadhaar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
