package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'work_status') THEN
			CREATE TYPE work_status AS ENUM ('none', 'assigned', 'completed');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'worker_payment_status') THEN
			CREATE TYPE worker_payment_status AS ENUM ('pending', 'verified', 'disputed');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS workers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL,
		phone VARCHAR(32) NOT NULL,
		aadhaar VARCHAR(32),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_workers_phone ON workers (phone);`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workorder VARCHAR(64) NOT NULL,
		contractor VARCHAR(128) NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		allocated BOOLEAN NOT NULL DEFAULT FALSE,
		work_status work_status NOT NULL DEFAULT 'none',
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_contractor_lower ON payments (LOWER(contractor));`,
	`CREATE INDEX IF NOT EXISTS idx_payments_workorder ON payments (workorder);`,
	`CREATE TABLE IF NOT EXISTS payment_workers (
		payment_id UUID NOT NULL REFERENCES payments(id) ON DELETE CASCADE,
		position INT NOT NULL,
		name VARCHAR(128) NOT NULL,
		phone VARCHAR(32) NOT NULL,
		aadhaar VARCHAR(32),
		promised_amount NUMERIC(18,2) NOT NULL,
		actual_paid NUMERIC(18,2),
		actual_received NUMERIC(18,2),
		payment_status worker_payment_status NOT NULL DEFAULT 'pending',
		discrepancy_notes TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (payment_id, position)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payment_workers_phone ON payment_workers (phone);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
