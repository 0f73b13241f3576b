package models

import "time"

// AssignmentStatus tracks a staff member's handling of an assignment.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentRejected   AssignmentStatus = "rejected"
)

// Valid reports whether s is a known assignment status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentPending, AssignmentInProgress, AssignmentCompleted, AssignmentRejected:
		return true
	}
	return false
}

// Assignment links a request to the staff member handling it.
type Assignment struct {
	ID          string           `db:"id" json:"id"`
	RequestID   string           `db:"request_id" json:"request_id"`
	AssignedTo  string           `db:"assigned_to" json:"assigned_to"`
	AssignedBy  string           `db:"assigned_by" json:"assigned_by"`
	Status      AssignmentStatus `db:"status" json:"status"`
	Priority    Priority         `db:"priority" json:"priority"`
	Notes       *string          `db:"notes" json:"notes,omitempty"`
	DueDate     *time.Time       `db:"due_date" json:"due_date,omitempty"`
	CompletedAt *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	AssignedTo string
	RequestID  string
	Status     AssignmentStatus
	Page       int
	PageSize   int
}
