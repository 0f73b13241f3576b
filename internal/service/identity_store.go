package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/validation"
)

// ErrTokenRejected is returned by Verify for any unusable access token.
var ErrTokenRejected = errors.New("access token rejected")

// IdentityStore owns credentials and sessions. Profiles live elsewhere and
// reference identities by ID.
type IdentityStore interface {
	Register(ctx context.Context, email, password string) (*models.AuthIdentity, error)
	Authenticate(ctx context.Context, email, password string) (*models.AuthIdentity, error)
	IssueSession(ctx context.Context, identity *models.AuthIdentity, meta dto.SessionMeta) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string, meta dto.SessionMeta) (*models.Session, *models.AuthIdentity, error)
	Verify(ctx context.Context, token string) (*models.VerifiedIdentity, error)
	SignOut(ctx context.Context, principal models.Principal) error
	Delete(ctx context.Context, identityID string) error
}

type identityRepository interface {
	Create(ctx context.Context, identity *models.AuthIdentity) error
	FindByEmail(ctx context.Context, email string) (*models.AuthIdentity, error)
	FindByID(ctx context.Context, id string) (*models.AuthIdentity, error)
	Delete(ctx context.Context, id string) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokeIdentityRefreshTokens(ctx context.Context, identityID string) error
}

type tokenDenylist interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// IdentityConfig configures token issuance.
type IdentityConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// LocalIdentityStore keeps bcrypt credentials in PostgreSQL and issues HS256
// access tokens with opaque, rotating refresh tokens.
type LocalIdentityStore struct {
	repo     identityRepository
	denylist tokenDenylist
	config   IdentityConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewLocalIdentityStore constructs a LocalIdentityStore.
func NewLocalIdentityStore(repo identityRepository, denylist tokenDenylist, config IdentityConfig, logger *zap.Logger) *LocalIdentityStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.AccessTTL <= 0 {
		config.AccessTTL = time.Hour
	}
	if config.RefreshTTL <= 0 {
		config.RefreshTTL = 7 * 24 * time.Hour
	}
	return &LocalIdentityStore{
		repo:     repo,
		denylist: denylist,
		config:   config,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a credential for a new email address.
func (s *LocalIdentityStore) Register(ctx context.Context, email, password string) (*models.AuthIdentity, error) {
	email = normalizeEmail(email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrEmailTaken, validation.Message("email", "taken"))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Store(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	identity := &models.AuthIdentity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, identity); err != nil {
		return nil, appErrors.Store(err, "failed to create identity")
	}
	return identity, nil
}

// Authenticate checks an email and password pair.
func (s *LocalIdentityStore) Authenticate(ctx context.Context, email, password string) (*models.AuthIdentity, error) {
	identity, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Store(err, "failed to load identity")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	return identity, nil
}

// IssueSession mints an access token and persists a fresh refresh token.
func (s *LocalIdentityStore) IssueSession(ctx context.Context, identity *models.AuthIdentity, meta dto.SessionMeta) (*models.Session, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTTL)

	claims := models.AccessClaims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign access token")
	}

	refreshValue, err := randomToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}
	refresh := &models.RefreshToken{
		ID:         uuid.NewString(),
		IdentityID: identity.ID,
		Token:      refreshValue,
		ExpiresAt:  now.Add(s.config.RefreshTTL),
		CreatedAt:  now,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, appErrors.Store(err, "failed to persist refresh token")
	}

	return &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshValue,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.config.AccessTTL.Seconds()),
		ExpiresAt:    expiresAt,
	}, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// session is issued.
func (s *LocalIdentityStore) Refresh(ctx context.Context, refreshToken string, meta dto.SessionMeta) (*models.Session, *models.AuthIdentity, error) {
	stored, err := s.repo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return nil, nil, appErrors.Store(err, "failed to load refresh token")
	}
	if stored.Revoked || s.now().After(stored.ExpiresAt) {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is expired or revoked")
	}

	identity, err := s.repo.FindByID(ctx, stored.IdentityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "identity no longer exists")
		}
		return nil, nil, appErrors.Store(err, "failed to load identity")
	}

	if err := s.repo.RevokeRefreshToken(ctx, stored.ID, s.now()); err != nil {
		return nil, nil, appErrors.Store(err, "failed to revoke refresh token")
	}

	session, err := s.IssueSession(ctx, identity, meta)
	if err != nil {
		return nil, nil, err
	}
	return session, identity, nil
}

// Verify validates an access token and reports the identity it was issued to.
func (s *LocalIdentityStore) Verify(ctx context.Context, token string) (*models.VerifiedIdentity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	claims := &models.AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenRejected)
	}

	revoked, err := s.denylist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("token denylist unavailable", zap.Error(err))
	} else if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrTokenRejected)
	}

	verified := &models.VerifiedIdentity{
		AuthID:  claims.Subject,
		Email:   claims.Email,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		verified.ExpiresAt = claims.ExpiresAt.Time
	}
	return verified, nil
}

// SignOut revokes every refresh token of the caller's identity and
// denylists the access token it presented.
func (s *LocalIdentityStore) SignOut(ctx context.Context, principal models.Principal) error {
	if err := s.repo.RevokeIdentityRefreshTokens(ctx, principal.AuthID); err != nil {
		return appErrors.Store(err, "failed to revoke sessions")
	}
	ttl := principal.TokenExpiresAt.Sub(s.now())
	if err := s.denylist.RevokeToken(ctx, principal.TokenID, ttl); err != nil {
		s.logger.Warn("failed to denylist access token", zap.String("user_id", principal.UserID), zap.Error(err))
	}
	return nil
}

// Delete removes a credential. Used to undo a signup whose profile could not be stored.
func (s *LocalIdentityStore) Delete(ctx context.Context, identityID string) error {
	if err := s.repo.Delete(ctx, identityID); err != nil {
		return appErrors.Store(err, "failed to delete identity")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
