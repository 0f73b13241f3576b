package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-desk-api/internal/models"
)

// AttachmentRepository stores attachment metadata and keeps
// requests.attachment_count in step.
type AttachmentRepository struct {
	db *sqlx.DB
}

// NewAttachmentRepository creates a new instance of AttachmentRepository.
func NewAttachmentRepository(db *sqlx.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts the attachment row and bumps the request counter.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) (err error) {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create attachment tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO attachments (id, request_id, uploaded_by, file_name, content_type, size_bytes, storage_key, created_at) VALUES (:id, :request_id, :uploaded_by, :file_name, :content_type, :size_bytes, :storage_key, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, attachment); err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE requests SET attachment_count = attachment_count + 1 WHERE id = $1`, attachment.RequestID); err != nil {
		return fmt.Errorf("increment attachment count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create attachment tx: %w", err)
	}
	return nil
}

// ListByRequest returns a request's attachments, oldest first.
func (r *AttachmentRepository) ListByRequest(ctx context.Context, requestID string) ([]models.Attachment, error) {
	const query = `SELECT id, request_id, uploaded_by, file_name, content_type, size_bytes, storage_key, created_at FROM attachments WHERE request_id = $1 ORDER BY created_at ASC`
	items := make([]models.Attachment, 0)
	if err := r.db.SelectContext(ctx, &items, query, requestID); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return items, nil
}

// FindByID returns an attachment by identifier.
func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*models.Attachment, error) {
	const query = `SELECT id, request_id, uploaded_by, file_name, content_type, size_bytes, storage_key, created_at FROM attachments WHERE id = $1 LIMIT 1`
	var attachment models.Attachment
	if err := r.db.GetContext(ctx, &attachment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find attachment by id: %w", err)
	}
	return &attachment, nil
}

// Delete removes the attachment row and decrements the request counter.
func (r *AttachmentRepository) Delete(ctx context.Context, attachment *models.Attachment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete attachment tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, attachment.ID); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE requests SET attachment_count = GREATEST(attachment_count - 1, 0) WHERE id = $1`, attachment.RequestID); err != nil {
		return fmt.Errorf("decrement attachment count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete attachment tx: %w", err)
	}
	return nil
}
