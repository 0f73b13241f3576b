package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/civic-desk-api/internal/models"
)

var requestColumns = []string{
	"id", "request_code", "user_id", "category_id", "title", "description", "status", "priority",
	"location", "location_text", "assigned_to", "attachment_count", "resolution_notes", "resolved_at",
	"rating", "feedback", "created_at", "updated_at",
}

// RequestRepository provides database access for service requests. Every
// write that changes status appends its history row in the same transaction.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository creates a new instance of RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// FindByID returns a request by identifier.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.Request, error) {
	query, args, err := psql.Select(requestColumns...).From("requests").Where(sq.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find request: %w", err)
	}
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return &req, nil
}

func applyRequestFilter(b sq.SelectBuilder, filter models.RequestFilter) sq.SelectBuilder {
	if filter.UserID != "" {
		b = b.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Priority != "" {
		b = b.Where(sq.Eq{"priority": filter.Priority})
	}
	if filter.CategoryID != "" {
		b = b.Where(sq.Eq{"category_id": filter.CategoryID})
	}
	return b
}

// List returns a page of requests, newest first, with the total matching count.
// Filter.Limit and Filter.Page must already be normalised.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	base := applyRequestFilter(psql.Select().From("requests"), filter)

	listQuery, args, err := base.Columns(requestColumns...).
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list requests: %w", err)
	}
	items := make([]models.Request, 0)
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count requests: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}
	return items, total, nil
}

// CreateWithHistory inserts a request together with its founding history entry.
func (r *RequestRepository) CreateWithHistory(ctx context.Context, req *models.Request, entry *models.RequestHistory) (err error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create request tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO requests (id, request_code, user_id, category_id, title, description, status, priority, location, location_text, assigned_to, attachment_count, resolution_notes, resolved_at, rating, feedback, created_at, updated_at) VALUES (:id, :request_code, :user_id, :category_id, :title, :description, :status, :priority, :location, :location_text, :assigned_to, :attachment_count, :resolution_notes, :resolved_at, :rating, :feedback, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	entry.RequestID = req.ID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = req.CreatedAt
	}
	if err = insertHistory(ctx, tx, entry); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create request tx: %w", err)
	}
	return nil
}

// UpdateWithHistory writes the mutable request fields and, when entry is not
// nil, appends it to the history in the same transaction.
func (r *RequestRepository) UpdateWithHistory(ctx context.Context, req *models.Request, entry *models.RequestHistory) (err error) {
	req.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update request tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE requests SET category_id = :category_id, title = :title, description = :description, status = :status, priority = :priority, location = :location, location_text = :location_text, resolution_notes = :resolution_notes, resolved_at = :resolved_at, rating = :rating, feedback = :feedback, updated_at = :updated_at WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, req)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if entry != nil {
		entry.RequestID = req.ID
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = req.UpdatedAt
		}
		if err = insertHistory(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update request tx: %w", err)
	}
	return nil
}

// Delete removes a request. History and attachment rows are kept.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Statistics counts requests grouped by status and by priority.
func (r *RequestRepository) Statistics(ctx context.Context) (*models.RequestStatistics, error) {
	stats := &models.RequestStatistics{
		ByStatus:   make(map[models.RequestStatus]int, len(models.RequestStatuses)),
		ByPriority: make(map[models.Priority]int, len(models.Priorities)),
	}
	for _, s := range models.RequestStatuses {
		stats.ByStatus[s] = 0
	}
	for _, p := range models.Priorities {
		stats.ByPriority[p] = 0
	}

	var byStatus []models.StatusCount
	if err := r.db.SelectContext(ctx, &byStatus, `SELECT status AS key, COUNT(*) AS count FROM requests GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	for _, row := range byStatus {
		stats.ByStatus[models.RequestStatus(row.Key)] = row.Count
		stats.Total += row.Count
	}

	var byPriority []models.StatusCount
	if err := r.db.SelectContext(ctx, &byPriority, `SELECT priority AS key, COUNT(*) AS count FROM requests GROUP BY priority`); err != nil {
		return nil, fmt.Errorf("count requests by priority: %w", err)
	}
	for _, row := range byPriority {
		stats.ByPriority[models.Priority(row.Key)] = row.Count
	}
	return stats, nil
}

// FindByCode returns a request by its public tracking code.
func (r *RequestRepository) FindByCode(ctx context.Context, code string) (*models.Request, error) {
	query, args, err := psql.Select(requestColumns...).From("requests").Where(sq.Eq{"request_code": code}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find request by code: %w", err)
	}
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find request by code: %w", err)
	}
	return &req, nil
}
