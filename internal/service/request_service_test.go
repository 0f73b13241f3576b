package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/authz"
	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/jobs"
)

const (
	testCategoryID = "7a1d3f0e-4b5c-4d6e-8f90-1a2b3c4d5e6f"
	otherCategory  = "9b8c7d6e-5f4a-4b3c-8d2e-1f0a9b8c7d6e"
)

type requestFixture struct {
	svc   *RequestService
	repo  *memRequests
	queue *recordingQueue
}

func newRequestFixture(t *testing.T, transitions *authz.Transitions) requestFixture {
	t.Helper()
	repo := newMemRequests()
	queue := &recordingQueue{}
	svc := NewRequestService(repo, repo, newMemCategories(testCategoryID, otherCategory), queue, nil, transitions, nil, zap.NewNop())
	svc.now = tickingClock(time.Date(2026, 1, 18, 9, 0, 0, 0, time.UTC))
	return requestFixture{svc: svc, repo: repo, queue: queue}
}

func validPayload() dto.CreateRequestPayload {
	return dto.CreateRequestPayload{
		CategoryID:  testCategoryID,
		Title:       "Broken street light",
		Description: "The light on the main road has been off for a week.",
	}
}

func statusPtr(s models.RequestStatus) *models.RequestStatus { return &s }

func TestCreateRecordsFoundingHistory(t *testing.T) {
	f := newRequestFixture(t, nil)

	req, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, models.PriorityNormal, req.Priority)
	assert.Equal(t, "u-1", req.UserID)
	assert.Regexp(t, regexp.MustCompile(`^REQ-20260118-[A-Z2-9]{6}$`), req.RequestCode)

	history, err := f.svc.History(context.Background(), citizen("u-1"), req.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusPending, history[0].Status)
	assert.Equal(t, "u-1", history[0].ChangedBy)
	require.NotNil(t, history[0].Notes)
	assert.Equal(t, creationNote, *history[0].Notes)
}

func TestCreateIsCitizenOnly(t *testing.T) {
	f := newRequestFixture(t, nil)

	_, err := f.svc.Create(context.Background(), staff("s-1"), validPayload())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Zero(t, f.repo.calls)
}

func TestCreateRequiresKnownCategory(t *testing.T) {
	f := newRequestFixture(t, nil)
	payload := validPayload()
	payload.CategoryID = "00000000-0000-4000-8000-000000000000"

	_, err := f.svc.Create(context.Background(), citizen("u-1"), payload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCreateLengthBoundaries(t *testing.T) {
	cases := []struct {
		name        string
		title       string
		description string
		field       string
	}{
		{name: "title four", title: "abcd", description: strings.Repeat("d", 20), field: "title"},
		{name: "title five", title: "abcde", description: strings.Repeat("d", 20)},
		{name: "description nineteen", title: "abcde", description: strings.Repeat("d", 19), field: "description"},
		{name: "description twenty", title: "abcde", description: strings.Repeat("d", 20)},
		{name: "arabic title counts runes", title: "إنارة", description: strings.Repeat("ن", 20)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRequestFixture(t, nil)
			payload := validPayload()
			payload.Title = tc.title
			payload.Description = tc.description

			_, err := f.svc.Create(context.Background(), citizen("u-1"), payload)
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, tc.field, appErr.Field)
		})
	}
}

func TestCitizenCannotChangeStatus(t *testing.T) {
	f := newRequestFixture(t, nil)
	req, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.NoError(t, err)
	callsBefore := f.repo.calls

	_, err = f.svc.Update(context.Background(), citizen("u-1"), req.ID, dto.UpdateRequestPayload{Status: statusPtr(models.StatusResolved)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Equal(t, callsBefore, f.repo.calls)
	assert.Empty(t, f.queue.recorded())
}

func TestCitizenUpdatesOwnRequestWithoutHistory(t *testing.T) {
	f := newRequestFixture(t, nil)
	req, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.NoError(t, err)

	updated, err := f.svc.Update(context.Background(), citizen("u-1"), req.ID, dto.UpdateRequestPayload{Title: strPtr("Street light still broken")})
	require.NoError(t, err)
	assert.Equal(t, "Street light still broken", updated.Title)

	history, err := f.svc.History(context.Background(), citizen("u-1"), req.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = f.svc.Update(context.Background(), citizen("u-2"), req.ID, dto.UpdateRequestPayload{Title: strPtr("Not my request at all")})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestStaffResolveAppendsHistoryAndNotifies(t *testing.T) {
	f := newRequestFixture(t, nil)
	req, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.NoError(t, err)

	updated, err := f.svc.Update(context.Background(), staff("s-1"), req.ID, dto.UpdateRequestPayload{
		Status:          statusPtr(models.StatusResolved),
		ResolutionNotes: strPtr("Fixed"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)

	detail, err := f.svc.Get(context.Background(), citizen("u-1"), req.ID)
	require.NoError(t, err)
	require.Len(t, detail.History, 2)
	assert.Equal(t, models.StatusResolved, detail.History[0].Status)
	assert.Equal(t, "s-1", detail.History[0].ChangedBy)
	assert.Equal(t, "Fixed", *detail.History[0].Notes)
	assert.Equal(t, models.StatusPending, detail.History[1].Status)

	recorded := f.queue.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, JobTypeRequestStatus, recorded[0].Type)
	assert.Equal(t, NotificationJob{RequestID: req.ID, NewStatus: models.StatusResolved, ChangedBy: "s-1", Notes: "Fixed"}, recorded[0].Payload)
}

func TestStatusChangeWithoutNotesUsesDefaultNote(t *testing.T) {
	f := newRequestFixture(t, nil)
	req, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), staff("s-1"), req.ID, dto.UpdateRequestPayload{Status: statusPtr(models.StatusInProgress)})
	require.NoError(t, err)

	history, err := f.svc.History(context.Background(), staff("s-1"), req.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "تم تغيير الحالة إلى in_progress", *history[0].Notes)
}

func TestHistoryFollowsCommittedSequence(t *testing.T) {
	f := newRequestFixture(t, nil)
	req, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.NoError(t, err)

	sequence := []models.RequestStatus{models.StatusInProgress, models.StatusResolved, models.StatusClosed}
	for _, status := range sequence {
		_, err := f.svc.Update(context.Background(), staff("s-1"), req.ID, dto.UpdateRequestPayload{Status: statusPtr(status)})
		require.NoError(t, err)
	}

	history, err := f.svc.History(context.Background(), citizen("u-1"), req.ID)
	require.NoError(t, err)
	got := make([]models.RequestStatus, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		got = append(got, history[i].Status)
	}
	assert.Equal(t, append([]models.RequestStatus{models.StatusPending}, sequence...), got)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].CreatedAt.After(history[i].CreatedAt))
	}
}

func TestStrictTransitionsRejectBackwardMoves(t *testing.T) {
	f := newRequestFixture(t, authz.Strict())
	req, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), staff("s-1"), req.ID, dto.UpdateRequestPayload{Status: statusPtr(models.StatusClosed)})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), staff("s-1"), req.ID, dto.UpdateRequestPayload{Status: statusPtr(models.StatusPending)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestPermissiveTransitionsAllowAnyMove(t *testing.T) {
	f := newRequestFixture(t, nil)
	req, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.NoError(t, err)

	for _, status := range []models.RequestStatus{models.StatusClosed, models.StatusPending} {
		_, err := f.svc.Update(context.Background(), staff("s-1"), req.ID, dto.UpdateRequestPayload{Status: statusPtr(status)})
		require.NoError(t, err)
	}
}

func TestEnqueueFailureDoesNotFailUpdate(t *testing.T) {
	f := newRequestFixture(t, nil)
	f.queue.err = jobs.ErrQueueFull
	req, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), staff("s-1"), req.ID, dto.UpdateRequestPayload{Status: statusPtr(models.StatusInProgress)})
	assert.NoError(t, err)
}

func TestCitizenDeleteRules(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()

	own, err := f.svc.Create(ctx, citizen("u-1"), validPayload())
	require.NoError(t, err)
	busy, err := f.svc.Create(ctx, citizen("u-1"), validPayload())
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, staff("s-1"), busy.ID, dto.UpdateRequestPayload{Status: statusPtr(models.StatusInProgress)})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, citizen("u-2"), own.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	err = f.svc.Delete(ctx, citizen("u-1"), busy.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	err = f.svc.Delete(ctx, citizen("u-1"), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, f.svc.Delete(ctx, citizen("u-1"), own.ID))
	_, err = f.svc.Get(ctx, citizen("u-1"), own.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, f.svc.Delete(ctx, staff("s-1"), busy.ID))
}

func TestListScopesCitizensToOwnRequests(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, citizen("u-1"), validPayload())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, citizen("u-2"), validPayload())
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, citizen("u-1"), validPayload())
	require.NoError(t, err)

	page, err := f.svc.List(ctx, citizen("u-1"), dto.RequestQuery{Status: string(models.StatusResolved)})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.Equal(t, first.ID, page.Items[1].ID)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.TotalPages)

	all, err := f.svc.List(ctx, staff("s-1"), dto.RequestQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
}

func TestListAppliesStaffFilters(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()

	urgent := validPayload()
	urgent.Priority = models.PriorityUrgent
	hit, err := f.svc.Create(ctx, citizen("u-1"), urgent)
	require.NoError(t, err)
	other := validPayload()
	other.CategoryID = otherCategory
	_, err = f.svc.Create(ctx, citizen("u-2"), other)
	require.NoError(t, err)

	page, err := f.svc.List(ctx, staff("s-1"), dto.RequestQuery{Priority: "urgent", CategoryID: testCategoryID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, hit.ID, page.Items[0].ID)

	_, err = f.svc.List(ctx, staff("s-1"), dto.RequestQuery{Status: "lost"})
	require.Error(t, err)
	assert.Equal(t, "status", appErrors.FromError(err).Field)

	_, err = f.svc.List(ctx, staff("s-1"), dto.RequestQuery{CategoryID: "not-a-uuid"})
	require.Error(t, err)
	assert.Equal(t, "category_id", appErrors.FromError(err).Field)
}

func TestListPaginationDefaults(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, citizen("u-1"), validPayload())
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, staff("s-1"), dto.RequestQuery{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, maxPageLimit, page.Limit)

	page, err = f.svc.List(ctx, staff("s-1"), dto.RequestQuery{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.svc.List(ctx, staff("s-1"), dto.RequestQuery{})
	require.NoError(t, err)
	assert.Equal(t, defaultPageLimit, page.Limit)
}

func TestGetRoundTripAndVisibility(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()
	payload := validPayload()
	payload.Location = &dto.LocationPayload{Lat: 33.5, Lng: 36.3}
	payload.LocationText = strPtr("Main road")

	created, err := f.svc.Create(ctx, citizen("u-1"), payload)
	require.NoError(t, err)

	detail, err := f.svc.Get(ctx, citizen("u-1"), created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, detail.Request)
	assert.Len(t, detail.History, 1)
	require.NotNil(t, detail.Location)
	assert.Equal(t, 33.5, detail.Location.Lat)

	byCode, err := f.svc.GetByCode(ctx, staff("s-1"), created.RequestCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	_, err = f.svc.Get(ctx, citizen("u-2"), created.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = f.svc.GetByCode(ctx, citizen("u-2"), created.RequestCode)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = f.svc.Get(ctx, citizen("u-1"), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestStatisticsRequiresOfficeRole(t *testing.T) {
	f := newRequestFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, citizen("u-1"), validPayload())
	require.NoError(t, err)

	_, err = f.svc.Statistics(ctx, citizen("u-1"))
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	stats, err := f.svc.Statistics(ctx, staff("s-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[models.StatusPending])
}

func TestStoreFailureSurfacesAsStoreError(t *testing.T) {
	f := newRequestFixture(t, nil)
	f.repo.err = errStoreDown

	_, err := f.svc.Create(context.Background(), citizen("u-1"), validPayload())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStoreFailure.Code, appErrors.FromError(err).Code)
	assert.True(t, errors.Is(err, errStoreDown))
}
