package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/authz"
	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/validation"
)

const (
	categoriesCacheKey = "categories:all"
	categoriesCacheTTL = 30 * time.Minute
)

type categoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
}

// CategoryService manages request categories. The full list is cached since
// every request form loads it.
type CategoryService struct {
	repo      categoryRepository
	cache     *CacheService
	policy    *authz.Policy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs a CategoryService. cache may be nil.
func NewCategoryService(repo categoryRepository, cache *CacheService, policy *authz.Policy, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if policy == nil {
		policy = authz.DefaultPolicy()
	}
	return &CategoryService{repo: repo, cache: cache, policy: policy, validator: validate, logger: logger}
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if s.cache.Get(ctx, categoriesCacheKey, &cached) {
		return cached, nil
	}
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list categories")
	}
	s.cache.Set(ctx, categoriesCacheKey, categories, categoriesCacheTTL)
	return categories, nil
}

// Get returns a category by ID.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Store(err, "failed to load category")
	}
	return category, nil
}

// Create adds a category.
func (s *CategoryService) Create(ctx context.Context, principal models.Principal, payload dto.CategoryPayload) (*models.Category, error) {
	if !s.policy.Allows(principal.Role, authz.ActionCategoryManage) {
		return nil, appErrors.ErrForbidden
	}
	if err := validation.Struct(s.validator, payload); err != nil {
		return nil, err
	}
	category := &models.Category{
		ID:          uuid.NewString(),
		Name:        payload.Name,
		Description: payload.Description,
		Icon:        payload.Icon,
		Color:       payload.Color,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, appErrors.Store(err, "failed to create category")
	}
	s.cache.Invalidate(ctx, categoriesCacheKey)
	return category, nil
}

// Update replaces a category's attributes.
func (s *CategoryService) Update(ctx context.Context, principal models.Principal, id string, payload dto.CategoryPayload) (*models.Category, error) {
	if !s.policy.Allows(principal.Role, authz.ActionCategoryManage) {
		return nil, appErrors.ErrForbidden
	}
	if err := validation.Struct(s.validator, payload); err != nil {
		return nil, err
	}
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = payload.Name
	category.Description = payload.Description
	category.Icon = payload.Icon
	category.Color = payload.Color
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, appErrors.Store(err, "failed to update category")
	}
	s.cache.Invalidate(ctx, categoriesCacheKey)
	return category, nil
}
