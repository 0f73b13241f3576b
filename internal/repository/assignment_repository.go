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

var assignmentColumns = []string{"id", "request_id", "assigned_to", "assigned_by", "status", "priority", "notes", "due_date", "completed_at", "created_at", "updated_at"}

// AssignmentRepository provides database access for request assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create stores an assignment and points the request at its assignee in one transaction.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) (err error) {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create assignment tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO assignments (id, request_id, assigned_to, assigned_by, status, priority, notes, due_date, completed_at, created_at, updated_at) VALUES (:id, :request_id, :assigned_to, :assigned_by, :status, :priority, :notes, :due_date, :completed_at, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE requests SET assigned_to = $2, updated_at = $3 WHERE id = $1`, assignment.RequestID, assignment.AssignedTo, now); err != nil {
		return fmt.Errorf("assign request: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create assignment tx: %w", err)
	}
	return nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query, args, err := psql.Select(assignmentColumns...).From("assignments").Where(sq.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find assignment: %w", err)
	}
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &assignment, nil
}

// List returns assignments matching the filter, newest first, with the total count.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	page, size := normalizePage(filter.Page, filter.PageSize, 20, 100)

	base := psql.Select().From("assignments")
	if filter.AssignedTo != "" {
		base = base.Where(sq.Eq{"assigned_to": filter.AssignedTo})
	}
	if filter.RequestID != "" {
		base = base.Where(sq.Eq{"request_id": filter.RequestID})
	}
	if filter.Status != "" {
		base = base.Where(sq.Eq{"status": filter.Status})
	}

	listQuery, args, err := base.Columns(assignmentColumns...).
		OrderBy("created_at DESC").
		Limit(uint64(size)).
		Offset(uint64((page - 1) * size)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list assignments: %w", err)
	}
	items := make([]models.Assignment, 0)
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count assignments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return items, total, nil
}

// Update writes the mutable assignment fields.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET status = :status, priority = :priority, notes = :notes, due_date = :due_date, completed_at = :completed_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}
