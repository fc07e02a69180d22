package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anupk/wpts-service/internal/model"
)

type WorkerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func (r *WorkerRepository) Create(ctx context.Context, worker *model.Worker) (*model.Worker, error) {
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO workers (id, name, phone, aadhaar, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		worker.ID,
		worker.Name,
		worker.Phone,
		nullIfEmpty(worker.Aadhaar),
		worker.CreatedAt,
	).Error
	if err != nil {
		return nil, err
	}
	return worker, nil
}

// FindByPhone returns the earliest registration for a phone; duplicate
// phones are allowed in the roster.
func (r *WorkerRepository) FindByPhone(ctx context.Context, phone string) (*model.Worker, error) {
	var row workerRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, aadhaar, created_at
		FROM workers
		WHERE phone = ?
		ORDER BY created_at ASC
		LIMIT 1
	`, phone).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	worker := workerFromRow(row)
	return &worker, nil
}

func (r *WorkerRepository) ListAll(ctx context.Context) ([]model.Worker, error) {
	var rows []workerRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, aadhaar, created_at
		FROM workers
		ORDER BY created_at ASC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	workers := make([]model.Worker, 0, len(rows))
	for _, row := range rows {
		workers = append(workers, workerFromRow(row))
	}
	return workers, nil
}

type workerRow struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Aadhaar   *string
	CreatedAt time.Time
}

func workerFromRow(row workerRow) model.Worker {
	return model.Worker{
		ID:        row.ID,
		Name:      row.Name,
		Phone:     row.Phone,
		Aadhaar:   stringValue(row.Aadhaar),
		CreatedAt: row.CreatedAt,
	}
}
