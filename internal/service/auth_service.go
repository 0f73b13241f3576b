package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/validation"
)

type authUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByAuthID(ctx context.Context, authID string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error)
}

// AuthConfig defines configuration for account flows.
type AuthConfig struct {
	AllowSelfAssignedRole bool
}

// AuthService provides signup, signin and profile use cases on top of an IdentityStore.
type AuthService struct {
	identity  IdentityStore
	users     authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(identity IdentityStore, users authUserRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &AuthService{identity: identity, users: users, validator: validate, logger: logger, config: config}
}

// Signup registers a credential and its profile, then signs the user in.
// When the profile cannot be stored the credential is removed again.
func (s *AuthService) Signup(ctx context.Context, req dto.SignupRequest, meta dto.SessionMeta) (*models.AuthResult, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleCitizen
	}
	if role != models.RoleCitizen && !s.config.AllowSelfAssignedRole {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only citizen accounts can be self registered")
	}

	identity, err := s.identity.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		AuthID:     identity.ID,
		Email:      identity.Email,
		FullName:   req.FullName,
		Phone:      req.Phone,
		NationalID: req.NationalID,
		Role:       role,
		IsActive:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if delErr := s.identity.Delete(ctx, identity.ID); delErr != nil {
			s.logger.Error("failed to remove orphan identity", zap.String("auth_id", identity.ID), zap.Error(delErr))
		}
		return nil, appErrors.Store(err, "failed to create profile")
	}

	session, err := s.identity.IssueSession(ctx, identity, meta)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return &models.AuthResult{User: user, Session: session}, nil
}

// Signin authenticates credentials and returns the profile with a new session.
func (s *AuthService) Signin(ctx context.Context, req dto.SigninRequest, meta dto.SessionMeta) (*models.AuthResult, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}

	identity, err := s.identity.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByAuthID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrProfileNotFound
		}
		return nil, appErrors.Store(err, "failed to load profile")
	}
	if !user.IsActive {
		return nil, appErrors.ErrInactiveAccount
	}

	session, err := s.identity.IssueSession(ctx, identity, meta)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{User: user, Session: session}, nil
}

// Refresh rotates a refresh token for an active profile.
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest, meta dto.SessionMeta) (*models.Session, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}

	session, identity, err := s.identity.Refresh(ctx, req.RefreshToken, meta)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByAuthID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrProfileNotFound
		}
		return nil, appErrors.Store(err, "failed to load profile")
	}
	if !user.IsActive {
		return nil, appErrors.ErrInactiveAccount
	}
	return session, nil
}

// SignOut ends every session of the caller.
func (s *AuthService) SignOut(ctx context.Context, principal models.Principal) error {
	return s.identity.SignOut(ctx, principal)
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, principal models.Principal) (*models.User, error) {
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrProfileNotFound
		}
		return nil, appErrors.Store(err, "failed to load profile")
	}
	return user, nil
}

// UpdateProfile applies the self-service profile fields. Role and email are not editable here.
func (s *AuthService) UpdateProfile(ctx context.Context, principal models.Principal, req dto.UpdateProfileRequest) (*models.User, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, principal.UserID, models.ProfileUpdate{
		FullName:  req.FullName,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
		Region:    req.Region,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrProfileNotFound
		}
		return nil, appErrors.Store(err, "failed to update profile")
	}
	return user, nil
}
