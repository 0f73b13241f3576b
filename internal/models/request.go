package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RequestStatus is the lifecycle state of a service request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusResolved   RequestStatus = "resolved"
	StatusRejected   RequestStatus = "rejected"
	StatusClosed     RequestStatus = "closed"
)

// RequestStatuses lists every status in lifecycle order.
var RequestStatuses = []RequestStatus{StatusPending, StatusInProgress, StatusResolved, StatusRejected, StatusClosed}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	for _, candidate := range RequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Priority ranks how urgently a request or assignment should be handled.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	for _, candidate := range Priorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Location is a geographic point stored as JSONB.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Value implements driver.Valuer.
func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *Location) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("scan location: unsupported type %T", src)
	}
}

// Request is a citizen submitted service request, complaint or proposal.
type Request struct {
	ID              string        `db:"id" json:"id"`
	RequestCode     string        `db:"request_code" json:"request_code"`
	UserID          string        `db:"user_id" json:"user_id"`
	CategoryID      string        `db:"category_id" json:"category_id"`
	Title           string        `db:"title" json:"title"`
	Description     string        `db:"description" json:"description"`
	Status          RequestStatus `db:"status" json:"status"`
	Priority        Priority      `db:"priority" json:"priority"`
	Location        *Location     `db:"location" json:"location,omitempty"`
	LocationText    *string       `db:"location_text" json:"location_text,omitempty"`
	AssignedTo      *string       `db:"assigned_to" json:"assigned_to,omitempty"`
	AttachmentCount int           `db:"attachment_count" json:"attachment_count"`
	ResolutionNotes *string       `db:"resolution_notes" json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time    `db:"resolved_at" json:"resolved_at,omitempty"`
	Rating          *int          `db:"rating" json:"rating,omitempty"`
	Feedback        *string       `db:"feedback" json:"feedback,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// RequestHistory is one append-only status change entry.
type RequestHistory struct {
	ID        string        `db:"id" json:"id"`
	RequestID string        `db:"request_id" json:"request_id"`
	Status    RequestStatus `db:"status" json:"status"`
	ChangedBy string        `db:"changed_by" json:"changed_by"`
	Notes     *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// RequestDetail is a request joined with its history, newest entry first.
type RequestDetail struct {
	Request
	History []RequestHistory `json:"history"`
}

// RequestFilter narrows request listings. Empty fields do not filter.
type RequestFilter struct {
	UserID     string
	Status     RequestStatus
	Priority   Priority
	CategoryID string
	Page       int
	Limit      int
}

// Offset converts the page into a row offset.
func (f RequestFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// RequestList is a page of requests with the totals pagination needs.
type RequestList struct {
	Items      []Request `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// RequestStatistics summarises request volume.
type RequestStatistics struct {
	Total      int                   `json:"total"`
	ByStatus   map[RequestStatus]int `json:"by_status"`
	ByPriority map[Priority]int      `json:"by_priority"`
}

// StatusCount is one row of a grouped count.
type StatusCount struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}
