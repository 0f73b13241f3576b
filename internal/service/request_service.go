package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/authz"
	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/jobs"
	"github.com/noah-isme/civic-desk-api/pkg/validation"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	creationNote     = "طلب تم إنشاؤه"
	statusNoteFormat = "تم تغيير الحالة إلى %s"

	requestCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	requestCodeLength   = 6
)

type requestRepository interface {
	FindByID(ctx context.Context, id string) (*models.Request, error)
	FindByCode(ctx context.Context, code string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
	CreateWithHistory(ctx context.Context, req *models.Request, entry *models.RequestHistory) error
	UpdateWithHistory(ctx context.Context, req *models.Request, entry *models.RequestHistory) error
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (*models.RequestStatistics, error)
}

type historyRepository interface {
	ListByRequest(ctx context.Context, requestID string) ([]models.RequestHistory, error)
}

type categoryChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// RequestService manages the request lifecycle: creation, status changes
// with their history entries, and the notifications they trigger.
type RequestService struct {
	repo        requestRepository
	history     historyRepository
	categories  categoryChecker
	queue       jobEnqueuer
	policy      *authz.Policy
	transitions *authz.Transitions
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewRequestService constructs a RequestService. Nil policy and transitions
// fall back to the default table and permissive transitions.
func NewRequestService(repo requestRepository, history historyRepository, categories categoryChecker, queue jobEnqueuer, policy *authz.Policy, transitions *authz.Transitions, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if policy == nil {
		policy = authz.DefaultPolicy()
	}
	if transitions == nil {
		transitions = authz.Permissive()
	}
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		repo:        repo,
		history:     history,
		categories:  categories,
		queue:       queue,
		policy:      policy,
		transitions: transitions,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a citizen's new request together with its founding history entry.
func (s *RequestService) Create(ctx context.Context, principal models.Principal, payload dto.CreateRequestPayload) (*models.Request, error) {
	if err := s.policy.Check(principal.Role, authz.ActionRequestCreate, authz.Target{}); err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only citizens can submit requests")
	}
	if err := validation.Struct(s.validator, payload); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, payload.CategoryID); err != nil {
		return nil, err
	}

	priority := payload.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	code, err := newRequestCode(s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate request code")
	}

	now := s.now()
	req := &models.Request{
		ID:           uuid.NewString(),
		RequestCode:  code,
		UserID:       principal.UserID,
		CategoryID:   payload.CategoryID,
		Title:        payload.Title,
		Description:  payload.Description,
		Status:       models.StatusPending,
		Priority:     priority,
		Location:     toLocation(payload.Location),
		LocationText: payload.LocationText,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	note := creationNote
	entry := &models.RequestHistory{
		Status:    models.StatusPending,
		ChangedBy: principal.UserID,
		Notes:     &note,
		CreatedAt: now,
	}
	if err := s.repo.CreateWithHistory(ctx, req, entry); err != nil {
		return nil, appErrors.Store(err, "failed to create request")
	}

	s.logger.Info("request created",
		zap.String("request_id", req.ID),
		zap.String("request_code", req.RequestCode),
		zap.String("user_id", principal.UserID),
	)
	return req, nil
}

// Get returns a request with its history, newest entry first.
func (s *RequestService) Get(ctx context.Context, principal models.Principal, id string) (*models.RequestDetail, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, principal, req)
}

// GetByCode looks a request up by its tracking code with the same visibility as Get.
func (s *RequestService) GetByCode(ctx context.Context, principal models.Principal, code string) (*models.RequestDetail, error) {
	req, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Store(err, "failed to load request")
	}
	return s.detail(ctx, principal, req)
}

func (s *RequestService) detail(ctx context.Context, principal models.Principal, req *models.Request) (*models.RequestDetail, error) {
	if err := s.policy.CheckRequest(principal, authz.ActionRequestRead, req); err != nil {
		return nil, err
	}
	history, err := s.history.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load request history")
	}
	return &models.RequestDetail{Request: *req, History: history}, nil
}

// List returns a page of requests, newest first. Citizens only ever see
// their own requests and their filters are ignored.
func (s *RequestService) List(ctx context.Context, principal models.Principal, query dto.RequestQuery) (*models.RequestList, error) {
	filter, err := s.buildFilter(principal, query)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list requests")
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}
	return &models.RequestList{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *RequestService) buildFilter(principal models.Principal, query dto.RequestQuery) (models.RequestFilter, error) {
	filter := models.RequestFilter{Page: query.Page, Limit: query.Limit}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	if !s.policy.Allows(principal.Role, authz.ActionRequestListAll) {
		filter.UserID = principal.UserID
		return filter, nil
	}

	if query.Status != "" {
		status := models.RequestStatus(query.Status)
		if !status.Valid() {
			return filter, appErrors.Validation("status", validation.Message("status", "oneof"))
		}
		filter.Status = status
	}
	if query.Priority != "" {
		priority := models.Priority(query.Priority)
		if !priority.Valid() {
			return filter, appErrors.Validation("priority", validation.Message("priority", "oneof"))
		}
		filter.Priority = priority
	}
	if query.CategoryID != "" {
		if _, err := uuid.Parse(query.CategoryID); err != nil {
			return filter, appErrors.Validation("category_id", validation.Message("category_id", "uuid"))
		}
		filter.CategoryID = query.CategoryID
	}
	return filter, nil
}

// Update applies a partial update. A status change is checked against the
// transition table, recorded in the history in the same transaction and
// announced to the owner asynchronously.
func (s *RequestService) Update(ctx context.Context, principal models.Principal, id string, payload dto.UpdateRequestPayload) (*models.Request, error) {
	if payload.Status != nil && !s.policy.Allows(principal.Role, authz.ActionRequestSetStatus) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "citizens cannot change request status")
	}
	if err := validation.Struct(s.validator, payload); err != nil {
		return nil, err
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckRequest(principal, authz.ActionRequestUpdate, req); err != nil {
		return nil, err
	}

	if payload.CategoryID != nil && *payload.CategoryID != req.CategoryID {
		if err := s.ensureCategory(ctx, *payload.CategoryID); err != nil {
			return nil, err
		}
		req.CategoryID = *payload.CategoryID
	}
	if payload.Title != nil {
		req.Title = *payload.Title
	}
	if payload.Description != nil {
		req.Description = *payload.Description
	}
	if payload.Priority != nil {
		req.Priority = *payload.Priority
	}
	if payload.Location != nil {
		req.Location = toLocation(payload.Location)
	}
	if payload.LocationText != nil {
		req.LocationText = payload.LocationText
	}
	if payload.ResolutionNotes != nil {
		req.ResolutionNotes = payload.ResolutionNotes
	}
	if payload.Rating != nil {
		req.Rating = payload.Rating
	}
	if payload.Feedback != nil {
		req.Feedback = payload.Feedback
	}

	var entry *models.RequestHistory
	if payload.Status != nil && *payload.Status != req.Status {
		next := *payload.Status
		if err := s.transitions.Check(req.Status, next); err != nil {
			return nil, err
		}
		now := s.now()
		req.Status = next
		if next == models.StatusResolved {
			req.ResolvedAt = &now
		}
		note := fmt.Sprintf(statusNoteFormat, next)
		if payload.ResolutionNotes != nil && *payload.ResolutionNotes != "" {
			note = *payload.ResolutionNotes
		}
		entry = &models.RequestHistory{
			Status:    next,
			ChangedBy: principal.UserID,
			Notes:     &note,
			CreatedAt: now,
		}
	}

	if err := s.repo.UpdateWithHistory(ctx, req, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Store(err, "failed to update request")
	}

	if entry != nil {
		s.announceStatus(req, entry, payload.ResolutionNotes)
	}
	return req, nil
}

// Delete removes a request. Citizens may only delete their own pending requests.
func (s *RequestService) Delete(ctx context.Context, principal models.Principal, id string) error {
	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.CheckRequest(principal, authz.ActionRequestDelete, req); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Store(err, "failed to delete request")
	}
	s.logger.Info("request deleted", zap.String("request_id", id), zap.String("user_id", principal.UserID))
	return nil
}

// History returns a request's status log, newest entry first.
func (s *RequestService) History(ctx context.Context, principal models.Principal, id string) ([]models.RequestHistory, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckRequest(principal, authz.ActionRequestHistory, req); err != nil {
		return nil, err
	}
	history, err := s.history.ListByRequest(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load request history")
	}
	return history, nil
}

// Statistics summarises request volume for the office dashboard.
func (s *RequestService) Statistics(ctx context.Context, principal models.Principal) (*models.RequestStatistics, error) {
	if !s.policy.Allows(principal.Role, authz.ActionRequestStats) {
		return nil, appErrors.ErrForbidden
	}
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to compute statistics")
	}
	return stats, nil
}

func (s *RequestService) load(ctx context.Context, id string) (*models.Request, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Store(err, "failed to load request")
	}
	return req, nil
}

func (s *RequestService) ensureCategory(ctx context.Context, id string) error {
	exists, err := s.categories.Exists(ctx, id)
	if err != nil {
		return appErrors.Store(err, "failed to check category")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "category not found")
	}
	return nil
}

func (s *RequestService) announceStatus(req *models.Request, entry *models.RequestHistory, notes *string) {
	if s.queue == nil {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: JobTypeRequestStatus,
		Payload: NotificationJob{
			RequestID: req.ID,
			NewStatus: entry.Status,
			ChangedBy: entry.ChangedBy,
			Notes:     derefString(notes),
		},
	}
	if err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Warn("failed to enqueue status notification",
			zap.String("request_id", req.ID),
			zap.String("status", string(entry.Status)),
			zap.Error(err),
		)
	}
}

func toLocation(p *dto.LocationPayload) *models.Location {
	if p == nil {
		return nil
	}
	return &models.Location{Lat: p.Lat, Lng: p.Lng}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// newRequestCode builds a tracking code such as REQ-20260118-K7P2QX.
func newRequestCode(now time.Time) (string, error) {
	suffix := make([]byte, requestCodeLength)
	bound := big.NewInt(int64(len(requestCodeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return "", err
		}
		suffix[i] = requestCodeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("REQ-%s-%s", now.Format("20060102"), suffix), nil
}
