package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
)

type tokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.VerifiedIdentity, error)
}

type profileFinder interface {
	FindByAuthID(ctx context.Context, authID string) (*models.User, error)
}

// AuthGate turns an Authorization header into the calling principal.
type AuthGate struct {
	verifier tokenVerifier
	profiles profileFinder
	logger   *zap.Logger
}

// NewAuthGate constructs an AuthGate.
func NewAuthGate(verifier tokenVerifier, profiles profileFinder, logger *zap.Logger) *AuthGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthGate{verifier: verifier, profiles: profiles, logger: logger}
}

// BearerToken extracts the credential from an "Authorization: Bearer" header.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Resolve authenticates the header. The failure kinds are
// ErrMissingCredential, ErrInvalidCredential, ErrProfileNotFound and
// ErrInactiveAccount; store errors surface as StoreFailure.
func (g *AuthGate) Resolve(ctx context.Context, header string) (*models.Principal, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, appErrors.ErrMissingCredential
	}

	identity, err := g.verifier.Verify(ctx, token)
	if err != nil {
		g.logger.Debug("token verification failed", zap.Error(err))
		return nil, appErrors.ErrInvalidCredential
	}

	user, err := g.profiles.FindByAuthID(ctx, identity.AuthID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrProfileNotFound
		}
		return nil, appErrors.Store(err, "failed to load profile")
	}
	if !user.IsActive {
		return nil, appErrors.ErrInactiveAccount
	}

	return &models.Principal{
		UserID:         user.ID,
		AuthID:         identity.AuthID,
		Role:           user.Role,
		Email:          user.Email,
		FullName:       user.FullName,
		TokenID:        identity.TokenID,
		TokenExpiresAt: identity.ExpiresAt,
	}, nil
}
