package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
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

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	Update(ctx context.Context, assignment *models.Assignment) error
}

type assignmentRequestFinder interface {
	FindByID(ctx context.Context, id string) (*models.Request, error)
}

type assigneeFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// assignmentMoves lists the states each assignment action may start from.
var assignmentMoves = map[models.AssignmentStatus][]models.AssignmentStatus{
	models.AssignmentInProgress: {models.AssignmentPending},
	models.AssignmentRejected:   {models.AssignmentPending, models.AssignmentInProgress},
	models.AssignmentCompleted:  {models.AssignmentPending, models.AssignmentInProgress},
}

// AssignmentService routes requests to staff members and tracks their progress.
type AssignmentService struct {
	repo      assignmentRepository
	requests  assignmentRequestFinder
	users     assigneeFinder
	queue     jobEnqueuer
	policy    *authz.Policy
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, requests assignmentRequestFinder, users assigneeFinder, queue jobEnqueuer, policy *authz.Policy, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if policy == nil {
		policy = authz.DefaultPolicy()
	}
	return &AssignmentService{
		repo:      repo,
		requests:  requests,
		users:     users,
		queue:     queue,
		policy:    policy,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create assigns a request to a staff member and notifies them.
func (s *AssignmentService) Create(ctx context.Context, principal models.Principal, payload dto.CreateAssignmentPayload) (*models.Assignment, error) {
	if !s.policy.Allows(principal.Role, authz.ActionAssignmentCreate) {
		return nil, appErrors.ErrForbidden
	}
	if err := validation.Struct(s.validator, payload); err != nil {
		return nil, err
	}

	req, err := s.requests.FindByID(ctx, payload.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Store(err, "failed to load request")
	}
	assignee, err := s.users.FindByID(ctx, payload.AssignedTo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignee not found")
		}
		return nil, appErrors.Store(err, "failed to load assignee")
	}
	if assignee.Role == models.RoleCitizen || !assignee.IsActive {
		return nil, appErrors.Validation("assigned_to", "لا يمكن تكليف هذا المستخدم")
	}

	priority := payload.Priority
	if priority == "" {
		priority = req.Priority
	}
	now := s.now()
	assignment := &models.Assignment{
		ID:         uuid.NewString(),
		RequestID:  req.ID,
		AssignedTo: assignee.ID,
		AssignedBy: principal.UserID,
		Status:     models.AssignmentPending,
		Priority:   priority,
		Notes:      payload.Notes,
		DueDate:    payload.DueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Store(err, "failed to create assignment")
	}

	s.announce(assignment)
	s.logger.Info("request assigned",
		zap.String("assignment_id", assignment.ID),
		zap.String("request_id", req.ID),
		zap.String("assigned_to", assignee.ID),
	)
	return assignment, nil
}

// List returns assignments. Staff only see their own; deputies and admins may
// see all and filter by assignee.
func (s *AssignmentService) List(ctx context.Context, principal models.Principal, query dto.AssignmentQuery) ([]models.Assignment, *models.Pagination, error) {
	page, limit := pageParams(query.Page, query.Limit)
	filter := models.AssignmentFilter{Page: page, PageSize: limit}
	if s.policy.Allows(principal.Role, authz.ActionAssignmentAll) {
		filter.AssignedTo = query.AssignedTo
	} else {
		filter.AssignedTo = principal.UserID
	}
	if query.Status != "" {
		status := models.AssignmentStatus(query.Status)
		if !status.Valid() {
			return nil, nil, appErrors.Validation("status", validation.Message("status", "oneof"))
		}
		filter.Status = status
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Store(err, "failed to list assignments")
	}
	return items, &models.Pagination{Page: page, PageSize: limit, TotalCount: total}, nil
}

// Get returns an assignment visible to the caller.
func (s *AssignmentService) Get(ctx context.Context, principal models.Principal, id string) (*models.Assignment, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canSee(principal, assignment) {
		return nil, appErrors.ErrForbidden
	}
	return assignment, nil
}

// Update edits an assignment's status, priority, notes or due date.
func (s *AssignmentService) Update(ctx context.Context, principal models.Principal, id string, payload dto.UpdateAssignmentPayload) (*models.Assignment, error) {
	if err := validation.Struct(s.validator, payload); err != nil {
		return nil, err
	}
	assignment, err := s.loadForChange(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if payload.Status != nil && *payload.Status != assignment.Status {
		if err := s.setStatus(assignment, *payload.Status); err != nil {
			return nil, err
		}
	}
	if payload.Priority != nil {
		assignment.Priority = *payload.Priority
	}
	if payload.Notes != nil {
		assignment.Notes = payload.Notes
	}
	if payload.DueDate != nil {
		assignment.DueDate = payload.DueDate
	}
	return s.save(ctx, assignment)
}

// Accept moves a pending assignment into progress.
func (s *AssignmentService) Accept(ctx context.Context, principal models.Principal, id string, payload dto.AssignmentActionPayload) (*models.Assignment, error) {
	return s.act(ctx, principal, id, models.AssignmentInProgress, payload)
}

// Reject declines an assignment.
func (s *AssignmentService) Reject(ctx context.Context, principal models.Principal, id string, payload dto.AssignmentActionPayload) (*models.Assignment, error) {
	return s.act(ctx, principal, id, models.AssignmentRejected, payload)
}

// Complete marks an assignment done.
func (s *AssignmentService) Complete(ctx context.Context, principal models.Principal, id string, payload dto.AssignmentActionPayload) (*models.Assignment, error) {
	return s.act(ctx, principal, id, models.AssignmentCompleted, payload)
}

func (s *AssignmentService) act(ctx context.Context, principal models.Principal, id string, next models.AssignmentStatus, payload dto.AssignmentActionPayload) (*models.Assignment, error) {
	assignment, err := s.loadForChange(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := s.setStatus(assignment, next); err != nil {
		return nil, err
	}
	if payload.Notes != nil {
		assignment.Notes = payload.Notes
	}
	return s.save(ctx, assignment)
}

func (s *AssignmentService) setStatus(assignment *models.Assignment, next models.AssignmentStatus) error {
	if from, ok := assignmentMoves[next]; ok {
		allowed := false
		for _, candidate := range from {
			if candidate == assignment.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot move assignment from %s to %s", assignment.Status, next))
		}
	}
	assignment.Status = next
	if next == models.AssignmentCompleted {
		now := s.now()
		assignment.CompletedAt = &now
	}
	return nil
}

func (s *AssignmentService) save(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Store(err, "failed to update assignment")
	}
	return assignment, nil
}

func (s *AssignmentService) loadForChange(ctx context.Context, principal models.Principal, id string) (*models.Assignment, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.AssignedTo != principal.UserID && !s.policy.Allows(principal.Role, authz.ActionAssignmentAll) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assignee can act on this assignment")
	}
	return assignment, nil
}

func (s *AssignmentService) load(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Store(err, "failed to load assignment")
	}
	return assignment, nil
}

func (s *AssignmentService) canSee(principal models.Principal, assignment *models.Assignment) bool {
	if assignment.AssignedTo == principal.UserID || assignment.AssignedBy == principal.UserID {
		return true
	}
	return s.policy.Allows(principal.Role, authz.ActionAssignmentAll)
}

func (s *AssignmentService) announce(assignment *models.Assignment) {
	if s.queue == nil {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: JobTypeAssignment,
		Payload: AssignmentJob{
			AssignmentID: assignment.ID,
			RequestID:    assignment.RequestID,
			AssignedTo:   assignment.AssignedTo,
			AssignedBy:   assignment.AssignedBy,
		},
	}
	if err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Warn("failed to enqueue assignment notification", zap.String("assignment_id", assignment.ID), zap.Error(err))
	}
}
