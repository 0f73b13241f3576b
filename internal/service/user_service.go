package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/authz"
	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/validation"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
}

// UserService handles profile lookups and role management.
type UserService struct {
	repo      userRepository
	policy    *authz.Policy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, policy *authz.Policy, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if policy == nil {
		policy = authz.DefaultPolicy()
	}
	return &UserService{repo: repo, policy: policy, validator: validate, logger: logger}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, principal models.Principal, query dto.UserQuery) ([]models.User, *models.Pagination, error) {
	if !s.policy.Allows(principal.Role, authz.ActionUserList) {
		return nil, nil, appErrors.ErrForbidden
	}
	page, limit := pageParams(query.Page, query.Limit)
	filter := models.UserFilter{Page: page, PageSize: limit}
	if query.Role != "" {
		role := models.UserRole(query.Role)
		if !role.Valid() {
			return nil, nil, appErrors.Validation("role", validation.Message("role", "oneof"))
		}
		filter.Role = &role
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Store(err, "failed to list users")
	}
	return users, &models.Pagination{Page: page, PageSize: limit, TotalCount: total}, nil
}

// Get returns a user by ID. Users may read themselves; deputies and admins anyone.
func (s *UserService) Get(ctx context.Context, principal models.Principal, id string) (*models.User, error) {
	if id != principal.UserID && !s.policy.Allows(principal.Role, authz.ActionUserList) {
		return nil, appErrors.ErrForbidden
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Store(err, "failed to load user")
	}
	return user, nil
}

// SetRole changes another user's role. Only admins may do this and never on themselves.
func (s *UserService) SetRole(ctx context.Context, principal models.Principal, id string, payload dto.SetRoleRequest) (*models.User, error) {
	if !s.policy.Allows(principal.Role, authz.ActionUserSetRole) {
		return nil, appErrors.ErrForbidden
	}
	if id == principal.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admins cannot change their own role")
	}
	if err := validation.Struct(s.validator, payload); err != nil {
		return nil, err
	}
	user, err := s.applyRole(ctx, id, payload.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user role changed",
		zap.String("user_id", id),
		zap.String("role", string(payload.Role)),
		zap.String("changed_by", principal.UserID),
	)
	return user, nil
}

// SetRoleByEmail is the operator path used by the admin CLI.
func (s *UserService) SetRoleByEmail(ctx context.Context, email string, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, appErrors.Validation("role", validation.Message("role", "oneof"))
	}
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Store(err, "failed to load user")
	}
	updated, err := s.applyRole(ctx, user.ID, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user role changed from cli", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return updated, nil
}

func (s *UserService) applyRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Store(err, "failed to update role")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load user")
	}
	return user, nil
}

func pageParams(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
