package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-desk-api/internal/models"
)

// RequestHistoryRepository reads the append-only status log. Entries are
// written only by RequestRepository inside its transactions.
type RequestHistoryRepository struct {
	db *sqlx.DB
}

// NewRequestHistoryRepository creates a new instance of RequestHistoryRepository.
func NewRequestHistoryRepository(db *sqlx.DB) *RequestHistoryRepository {
	return &RequestHistoryRepository{db: db}
}

// ListByRequest returns the history of a request, newest entry first.
func (r *RequestHistoryRepository) ListByRequest(ctx context.Context, requestID string) ([]models.RequestHistory, error) {
	const query = `SELECT id, request_id, status, changed_by, notes, created_at FROM request_history WHERE request_id = $1 ORDER BY created_at DESC`
	entries := make([]models.RequestHistory, 0)
	if err := r.db.SelectContext(ctx, &entries, query, requestID); err != nil {
		return nil, fmt.Errorf("list request history: %w", err)
	}
	return entries, nil
}

func insertHistory(ctx context.Context, tx *sqlx.Tx, entry *models.RequestHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO request_history (id, request_id, status, changed_by, notes, created_at) VALUES (:id, :request_id, :status, :changed_by, :notes, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("append request history: %w", err)
	}
	return nil
}
