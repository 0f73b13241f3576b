package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/authz"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/storage"
)

const defaultMaxUploadBytes = 10 << 20

type attachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	ListByRequest(ctx context.Context, requestID string) ([]models.Attachment, error)
	FindByID(ctx context.Context, id string) (*models.Attachment, error)
	Delete(ctx context.Context, attachment *models.Attachment) error
}

type downloadSigner interface {
	Generate(resourceID, key string) (string, time.Time, error)
	Parse(token string) (*storage.DownloadClaims, error)
}

// AttachmentConfig bounds uploads and shapes download links.
type AttachmentConfig struct {
	APIPrefix    string
	MaxSizeBytes int64
	AllowedMIMEs []string
}

// UploadInput is a file received from a multipart form.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachmentService stores request attachments in object storage and hands
// out signed download links.
type AttachmentService struct {
	repo     attachmentRepository
	requests assignmentRequestFinder
	store    storage.ObjectStorage
	signer   downloadSigner
	policy   *authz.Policy
	cfg      AttachmentConfig
	logger   *zap.Logger
}

// NewAttachmentService constructs an AttachmentService.
func NewAttachmentService(repo attachmentRepository, requests assignmentRequestFinder, store storage.ObjectStorage, signer downloadSigner, policy *authz.Policy, cfg AttachmentConfig, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = authz.DefaultPolicy()
	}
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = defaultMaxUploadBytes
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	return &AttachmentService{
		repo:     repo,
		requests: requests,
		store:    store,
		signer:   signer,
		policy:   policy,
		cfg:      cfg,
		logger:   logger,
	}
}

// MaxSizeBytes reports the upload size limit.
func (s *AttachmentService) MaxSizeBytes() int64 {
	return s.cfg.MaxSizeBytes
}

// Upload stores a file against a request the caller may attach to.
func (s *AttachmentService) Upload(ctx context.Context, principal models.Principal, requestID string, input UploadInput) (*models.AttachmentLink, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckRequest(principal, authz.ActionRequestAttach, req); err != nil {
		return nil, err
	}
	if input.Size > s.cfg.MaxSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxSizeBytes))
	}
	contentType := normalizeContentType(input.ContentType)
	if !s.allowed(contentType) {
		return nil, appErrors.Validation("file", "نوع الملف غير مسموح به")
	}
	fileName := path.Base(strings.ReplaceAll(input.FileName, "\\", "/"))
	if fileName == "." || fileName == "/" || fileName == "" {
		return nil, appErrors.Validation("file", "اسم الملف مطلوب")
	}

	id := uuid.NewString()
	key := fmt.Sprintf("requests/%s/%s%s", req.ID, id, strings.ToLower(path.Ext(fileName)))
	if err := s.store.Put(ctx, key, input.Body, input.Size, contentType); err != nil {
		return nil, appErrors.Store(err, "failed to store attachment")
	}

	attachment := &models.Attachment{
		ID:          id,
		RequestID:   req.ID,
		UploadedBy:  principal.UserID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   input.Size,
		StorageKey:  key,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned attachment object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, appErrors.Store(err, "failed to record attachment")
	}

	s.logger.Info("attachment uploaded",
		zap.String("attachment_id", id),
		zap.String("request_id", req.ID),
		zap.Int64("size", input.Size),
	)
	return s.link(*attachment)
}

// List returns a request's attachments with fresh download links.
func (s *AttachmentService) List(ctx context.Context, principal models.Principal, requestID string) ([]models.AttachmentLink, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckRequest(principal, authz.ActionRequestRead, req); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list attachments")
	}
	links := make([]models.AttachmentLink, 0, len(items))
	for _, item := range items {
		link, err := s.link(item)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, nil
}

// Open resolves a signed download token to the stored object. The caller
// must close the returned reader.
func (s *AttachmentService) Open(ctx context.Context, token string) (*models.Attachment, io.ReadCloser, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	attachment, err := s.repo.FindByID(ctx, claims.ResourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, nil, appErrors.Store(err, "failed to load attachment")
	}
	if attachment.StorageKey != claims.Key {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	body, err := s.store.Get(ctx, attachment.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, nil, appErrors.Store(err, "failed to read attachment")
	}
	return attachment, body, nil
}

// Delete removes an attachment. Uploaders may delete their own files and
// office roles any file.
func (s *AttachmentService) Delete(ctx context.Context, principal models.Principal, id string) error {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return appErrors.Store(err, "failed to load attachment")
	}
	if attachment.UploadedBy != principal.UserID && !s.policy.Allows(principal.Role, authz.ActionRequestListAll) {
		return appErrors.ErrForbidden
	}
	if err := s.repo.Delete(ctx, attachment); err != nil {
		return appErrors.Store(err, "failed to delete attachment")
	}
	if err := s.store.Delete(ctx, attachment.StorageKey); err != nil {
		s.logger.Warn("failed to remove attachment object", zap.String("key", attachment.StorageKey), zap.Error(err))
	}
	return nil
}

func (s *AttachmentService) link(attachment models.Attachment) (*models.AttachmentLink, error) {
	token, expiresAt, err := s.signer.Generate(attachment.ID, attachment.StorageKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	downloadURL := fmt.Sprintf("%s/attachments/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), url.QueryEscape(token))
	return &models.AttachmentLink{Attachment: attachment, DownloadURL: downloadURL, ExpiresAt: expiresAt}, nil
}

func (s *AttachmentService) loadRequest(ctx context.Context, id string) (*models.Request, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Store(err, "failed to load request")
	}
	return req, nil
}

func (s *AttachmentService) allowed(contentType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for _, candidate := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(candidate, contentType) {
			return true
		}
	}
	return false
}

func normalizeContentType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil || mediaType == "" {
		return "application/octet-stream"
	}
	return strings.ToLower(mediaType)
}
