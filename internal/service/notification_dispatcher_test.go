package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/pkg/jobs"
)

type dispatcherFixture struct {
	dispatcher    *NotificationDispatcher
	requests      *memRequests
	notifications *memNotifications
	mail          *recordingMailer
	metrics       *countingMetrics
}

func newDispatcherFixture(t *testing.T) dispatcherFixture {
	t.Helper()
	requests := newMemRequests()
	requests.put(models.Request{
		ID:          "r-1",
		RequestCode: "REQ-20260118-ABCDEF",
		UserID:      "u-1",
		Title:       "Water leak",
		Status:      models.StatusResolved,
		CreatedAt:   time.Now().UTC(),
	})
	users := newMemUsers(
		models.User{ID: "u-1", Email: "owner@example.com", Role: models.RoleCitizen, IsActive: true},
		models.User{ID: "s-1", Email: "staff@example.com", Role: models.RoleStaff, IsActive: true},
	)
	notifications := &memNotifications{}
	mail := &recordingMailer{}
	metrics := &countingMetrics{}
	return dispatcherFixture{
		dispatcher:    NewNotificationDispatcher(requests, users, notifications, mail, metrics, zap.NewNop()),
		requests:      requests,
		notifications: notifications,
		mail:          mail,
		metrics:       metrics,
	}
}

func statusJob(status models.RequestStatus, notes string) jobs.Job {
	return jobs.Job{ID: "job-1", Type: JobTypeRequestStatus, Payload: NotificationJob{RequestID: "r-1", NewStatus: status, ChangedBy: "s-1", Notes: notes}}
}

func TestStatusMessageTable(t *testing.T) {
	cases := map[models.RequestStatus]string{
		models.StatusPending:    "تم استقبال طلبك وهو قيد المراجعة",
		models.StatusInProgress: "تم البدء في معالجة طلبك",
		models.StatusResolved:   "تم حل طلبك بنجاح",
		models.StatusRejected:   "لم يتمكن الفريق من حل طلبك",
		models.StatusClosed:     "تم إغلاق طلبك",
		"archived":              "تم تحديث حالة طلبك إلى: archived",
	}
	for status, want := range cases {
		assert.Equal(t, want, StatusMessage(status, ""), string(status))
	}
	assert.Equal(t, "تم حل طلبك بنجاح\nملاحظات: Fixed", StatusMessage(models.StatusResolved, "Fixed"))
}

func TestDispatchStoresNotificationAndEmails(t *testing.T) {
	f := newDispatcherFixture(t)

	require.NoError(t, f.dispatcher.Handle(context.Background(), statusJob(models.StatusResolved, "Fixed")))

	require.Len(t, f.notifications.items, 1)
	n := f.notifications.items[0]
	assert.Equal(t, "u-1", n.UserID)
	assert.Equal(t, models.NotificationRequestUpdate, n.Type)
	assert.Equal(t, "تحديث: Water leak", n.Title)
	assert.Equal(t, "تم حل طلبك بنجاح\nملاحظات: Fixed", n.Message)
	assert.False(t, n.IsRead)
	require.NotNil(t, n.ActionURL)
	assert.Equal(t, "/requests/r-1", *n.ActionURL)
	require.NotNil(t, n.RequestID)
	assert.Equal(t, "r-1", *n.RequestID)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "owner@example.com", f.mail.sent[0].To)
	assert.Equal(t, n.Title, f.mail.sent[0].Subject)
	assert.Contains(t, f.mail.sent[0].HTML, "<h2>تحديث: Water leak</h2>")
	assert.Contains(t, f.mail.sent[0].HTML, "<p>---</p><p>منصة الحقوق المدنية</p>")
	assert.Equal(t, 1, f.metrics.delivered)
}

func TestDispatchSwallowsEmailFailure(t *testing.T) {
	f := newDispatcherFixture(t)
	f.mail.err = errStoreDown

	require.NoError(t, f.dispatcher.Handle(context.Background(), statusJob(models.StatusInProgress, "")))
	assert.Len(t, f.notifications.items, 1)
	assert.Equal(t, 1, f.metrics.emailsFailed)
	assert.Equal(t, 1, f.metrics.delivered)
}

func TestDispatchReturnsInsertFailureForRetry(t *testing.T) {
	f := newDispatcherFixture(t)
	f.notifications.createErr = errStoreDown

	err := f.dispatcher.Handle(context.Background(), statusJob(models.StatusClosed, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, f.mail.sent)
	assert.Equal(t, 1, f.metrics.failed)
}

func TestDispatchSkipsDeletedRequest(t *testing.T) {
	f := newDispatcherFixture(t)
	job := jobs.Job{ID: "job-2", Type: JobTypeRequestStatus, Payload: NotificationJob{RequestID: "gone", NewStatus: models.StatusClosed}}

	require.NoError(t, f.dispatcher.Handle(context.Background(), job))
	assert.Empty(t, f.notifications.items)
}

func TestDispatchAssignmentNotifiesAssignee(t *testing.T) {
	f := newDispatcherFixture(t)
	job := jobs.Job{ID: "job-3", Type: JobTypeAssignment, Payload: AssignmentJob{AssignmentID: "a-1", RequestID: "r-1", AssignedTo: "s-1", AssignedBy: "d-1"}}

	require.NoError(t, f.dispatcher.Handle(context.Background(), job))
	require.Len(t, f.notifications.items, 1)
	n := f.notifications.items[0]
	assert.Equal(t, "s-1", n.UserID)
	assert.Equal(t, models.NotificationAssignment, n.Type)
	assert.Contains(t, n.Message, "REQ-20260118-ABCDEF")
	assert.Equal(t, "/assignments/a-1", *n.ActionURL)
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "staff@example.com", f.mail.sent[0].To)
}

func TestDispatcherRunsOnQueue(t *testing.T) {
	f := newDispatcherFixture(t)
	queue := jobs.NewQueue("notifications", f.dispatcher.Handle, jobs.QueueConfig{Workers: 1, BufferSize: 4, OnDrop: f.dispatcher.OnDrop})
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.TryEnqueue(statusJob(models.StatusResolved, "")))
	require.Eventually(t, func() bool {
		f.notifications.mu.Lock()
		defer f.notifications.mu.Unlock()
		return len(f.notifications.items) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRenderNotificationEmailEscapesContent(t *testing.T) {
	out := RenderNotificationEmail("<b>title</b>", "a & b")
	assert.Equal(t, "<h2>&lt;b&gt;title&lt;/b&gt;</h2><p>a &amp; b</p><p>---</p><p>منصة الحقوق المدنية</p>", out)
}
