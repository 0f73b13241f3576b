package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/pkg/jobs"
	"github.com/noah-isme/civic-desk-api/pkg/mailer"
)

// Job types consumed by the notification dispatcher.
const (
	JobTypeRequestStatus = "request.status_changed"
	JobTypeAssignment    = "assignment.created"
)

const (
	portalSignature = "منصة الحقوق المدنية"
	notesLabel      = "ملاحظات"
)

var statusMessages = map[models.RequestStatus]string{
	models.StatusPending:    "تم استقبال طلبك وهو قيد المراجعة",
	models.StatusInProgress: "تم البدء في معالجة طلبك",
	models.StatusResolved:   "تم حل طلبك بنجاح",
	models.StatusRejected:   "لم يتمكن الفريق من حل طلبك",
	models.StatusClosed:     "تم إغلاق طلبك",
}

// NotificationJob announces a request status change to its owner.
type NotificationJob struct {
	RequestID string
	NewStatus models.RequestStatus
	ChangedBy string
	Notes     string
}

// AssignmentJob announces a new assignment to the assignee.
type AssignmentJob struct {
	AssignmentID string
	RequestID    string
	AssignedTo   string
	AssignedBy   string
}

type dispatchRequestLoader interface {
	FindByID(ctx context.Context, id string) (*models.Request, error)
}

type dispatchUserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type notificationWriter interface {
	Create(ctx context.Context, n *models.Notification) error
}

type dispatchMetrics interface {
	NotificationDispatched(jobType string, ok bool)
	NotificationEmailFailed()
}

// NotificationDispatcher turns queued jobs into notification rows and
// best-effort emails.
type NotificationDispatcher struct {
	requests      dispatchRequestLoader
	users         dispatchUserLoader
	notifications notificationWriter
	mail          mailer.Sender
	metrics       dispatchMetrics
	logger        *zap.Logger
}

// NewNotificationDispatcher constructs a dispatcher. A nil mailer disables email.
func NewNotificationDispatcher(requests dispatchRequestLoader, users dispatchUserLoader, notifications notificationWriter, mail mailer.Sender, metrics dispatchMetrics, logger *zap.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{
		requests:      requests,
		users:         users,
		notifications: notifications,
		mail:          mail,
		metrics:       metrics,
		logger:        logger,
	}
}

// Handle is the jobs.Handler for the notification queue. Returning an error
// makes the queue retry the job.
func (d *NotificationDispatcher) Handle(ctx context.Context, job jobs.Job) error {
	var err error
	switch payload := job.Payload.(type) {
	case NotificationJob:
		err = d.dispatchStatus(ctx, payload)
	case AssignmentJob:
		err = d.dispatchAssignment(ctx, payload)
	default:
		d.logger.Error("unknown notification job", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	d.observe(job.Type, err == nil)
	return err
}

// OnDrop records a job the queue gave up on.
func (d *NotificationDispatcher) OnDrop(job jobs.Job, err error) {
	d.logger.Error("notification job dropped",
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.Int("attempts", job.Attempt),
		zap.Error(err),
	)
}

func (d *NotificationDispatcher) dispatchStatus(ctx context.Context, job NotificationJob) error {
	req, err := d.requests.FindByID(ctx, job.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			d.logger.Warn("request vanished before notification", zap.String("request_id", job.RequestID))
			return nil
		}
		return fmt.Errorf("load request %s: %w", job.RequestID, err)
	}

	actionURL := fmt.Sprintf("/requests/%s", req.ID)
	requestID := req.ID
	notification := &models.Notification{
		UserID:    req.UserID,
		RequestID: &requestID,
		Type:      models.NotificationRequestUpdate,
		Title:     fmt.Sprintf("تحديث: %s", req.Title),
		Message:   StatusMessage(job.NewStatus, job.Notes),
		IsRead:    false,
		ActionURL: &actionURL,
	}
	if err := d.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("store notification for request %s: %w", req.ID, err)
	}

	d.email(ctx, req.UserID, notification)
	return nil
}

func (d *NotificationDispatcher) dispatchAssignment(ctx context.Context, job AssignmentJob) error {
	req, err := d.requests.FindByID(ctx, job.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			d.logger.Warn("request vanished before assignment notice", zap.String("request_id", job.RequestID))
			return nil
		}
		return fmt.Errorf("load request %s: %w", job.RequestID, err)
	}

	actionURL := fmt.Sprintf("/assignments/%s", job.AssignmentID)
	requestID := req.ID
	notification := &models.Notification{
		UserID:    job.AssignedTo,
		RequestID: &requestID,
		Type:      models.NotificationAssignment,
		Title:     fmt.Sprintf("مهمة جديدة: %s", req.Title),
		Message:   fmt.Sprintf("تم تكليفك بمعالجة الطلب %s", req.RequestCode),
		ActionURL: &actionURL,
	}
	if err := d.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("store assignment notification %s: %w", job.AssignmentID, err)
	}

	d.email(ctx, job.AssignedTo, notification)
	return nil
}

// email is best effort: failures are logged and counted, never returned.
func (d *NotificationDispatcher) email(ctx context.Context, userID string, n *models.Notification) {
	if d.mail == nil || d.users == nil {
		return
	}
	user, err := d.users.FindByID(ctx, userID)
	if err != nil {
		d.logger.Warn("notification email skipped", zap.String("user_id", userID), zap.Error(err))
		d.emailFailed()
		return
	}
	if user.Email == "" {
		return
	}
	msg := mailer.Message{
		To:      user.Email,
		Subject: n.Title,
		HTML:    RenderNotificationEmail(n.Title, n.Message),
		Text:    n.Message,
	}
	if err := d.mail.Send(ctx, msg); err != nil {
		d.logger.Warn("notification email failed",
			zap.String("user_id", userID),
			zap.String("notification_id", n.ID),
			zap.Error(err),
		)
		d.emailFailed()
	}
}

func (d *NotificationDispatcher) emailFailed() {
	if d.metrics != nil {
		d.metrics.NotificationEmailFailed()
	}
}

func (d *NotificationDispatcher) observe(jobType string, ok bool) {
	if d.metrics != nil {
		d.metrics.NotificationDispatched(jobType, ok)
	}
}

// StatusMessage returns the owner-facing text for a status change.
func StatusMessage(status models.RequestStatus, notes string) string {
	message, ok := statusMessages[status]
	if !ok {
		message = fmt.Sprintf("تم تحديث حالة طلبك إلى: %s", status)
	}
	if notes != "" {
		message = fmt.Sprintf("%s\n%s: %s", message, notesLabel, notes)
	}
	return message
}

// RenderNotificationEmail wraps a notification in the portal's email layout.
func RenderNotificationEmail(title, message string) string {
	return fmt.Sprintf("<h2>%s</h2><p>%s</p><p>---</p><p>%s</p>",
		html.EscapeString(title), html.EscapeString(message), portalSignature)
}
