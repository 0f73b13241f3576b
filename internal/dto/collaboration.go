package dto

import (
	"time"

	"github.com/noah-isme/civic-desk-api/internal/models"
)

// CreateAssignmentPayload captures POST /assignments payload.
type CreateAssignmentPayload struct {
	RequestID  string          `json:"request_id" validate:"required,uuid"`
	AssignedTo string          `json:"assigned_to" validate:"required,uuid"`
	Priority   models.Priority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	Notes      *string         `json:"notes,omitempty"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
}

// UpdateAssignmentPayload captures PUT /assignments/:id payload.
type UpdateAssignmentPayload struct {
	Status   *models.AssignmentStatus `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed rejected"`
	Priority *models.Priority         `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	Notes    *string                  `json:"notes,omitempty"`
	DueDate  *time.Time               `json:"due_date,omitempty"`
}

// AssignmentActionPayload is the optional body of accept/reject/complete.
type AssignmentActionPayload struct {
	Notes *string `json:"notes,omitempty"`
}

// AssignmentQuery binds GET /assignments query strings.
type AssignmentQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	AssignedTo string `form:"assigned_to"`
	Status     string `form:"status"`
}

// NotificationQuery binds GET /notifications query strings.
type NotificationQuery struct {
	Page   int  `form:"page"`
	Limit  int  `form:"limit"`
	Unread bool `form:"unread"`
}

// UserQuery binds GET /users query strings.
type UserQuery struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Role  string `form:"role"`
}
