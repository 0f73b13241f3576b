package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
)

type notificationRepository interface {
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

// NotificationService exposes a user's own notifications. Every query is
// scoped to the caller so other users' rows read as not found.
type NotificationService struct {
	repo   notificationRepository
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, principal models.Principal, query dto.NotificationQuery) ([]models.Notification, *models.Pagination, error) {
	page, limit := pageParams(query.Page, query.Limit)
	items, total, err := s.repo.List(ctx, models.NotificationFilter{
		UserID:     principal.UserID,
		UnreadOnly: query.Unread,
		Page:       page,
		PageSize:   limit,
	})
	if err != nil {
		return nil, nil, appErrors.Store(err, "failed to list notifications")
	}
	return items, &models.Pagination{Page: page, PageSize: limit, TotalCount: total}, nil
}

// UnreadCount returns how many of the caller's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, principal models.Principal) (int, error) {
	count, err := s.repo.CountUnread(ctx, principal.UserID)
	if err != nil {
		return 0, appErrors.Store(err, "failed to count notifications")
	}
	return count, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, principal models.Principal, id string) error {
	if err := s.repo.MarkRead(ctx, id, principal.UserID); err != nil {
		return notificationError(err, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead flags all of the caller's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, principal models.Principal) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, principal.UserID)
	if err != nil {
		return 0, appErrors.Store(err, "failed to mark notifications read")
	}
	return updated, nil
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, principal models.Principal, id string) error {
	if err := s.repo.Delete(ctx, id, principal.UserID); err != nil {
		return notificationError(err, "failed to delete notification")
	}
	return nil
}

func notificationError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return appErrors.Store(err, message)
}
