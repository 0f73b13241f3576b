package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/authz"
	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/export"
)

const defaultExportMaxRows = 1000

var exportHeaders = []string{"Code", "Title", "Category", "Status", "Priority", "Location", "Created At", "Resolved At"}

type exportRequestSource interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
}

type categoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	MaxRows int
}

// ExportResult is a rendered document ready to stream to the caller.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
	Truncated   bool
}

// ExportService renders filtered request listings as CSV, PDF or XLSX.
type ExportService struct {
	requests   exportRequestSource
	categories categoryLister
	renderers  map[export.Format]export.Renderer
	requestsvc *RequestService
	policy     *authz.Policy
	logger     *zap.Logger
	cfg        ExportConfig
	now        func() time.Time
}

// NewExportService constructs an ExportService. Filters are validated through
// the request service so exports honour the same rules as listings.
func NewExportService(requests exportRequestSource, categories categoryLister, requestsvc *RequestService, policy *authz.Policy, cfg ExportConfig, logger *zap.Logger, renderers map[export.Format]export.Renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = authz.DefaultPolicy()
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = defaultExportMaxRows
	}
	if renderers == nil {
		renderers = export.Renderers()
	}
	return &ExportService{
		requests:   requests,
		categories: categories,
		renderers:  renderers,
		requestsvc: requestsvc,
		policy:     policy,
		logger:     logger,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Export renders every request matching query, up to the configured row cap.
func (s *ExportService) Export(ctx context.Context, principal models.Principal, query dto.RequestQuery) (*ExportResult, error) {
	if !s.policy.Allows(principal.Role, authz.ActionRequestExport) {
		return nil, appErrors.ErrForbidden
	}
	format, err := export.ParseFormat(strings.ToLower(query.Format))
	if err != nil {
		return nil, appErrors.Validation("format", "صيغة التصدير غير مدعومة")
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Validation("format", "صيغة التصدير غير مدعومة")
	}

	query.Page = 1
	query.Limit = maxPageLimit
	filter, err := s.requestsvc.buildFilter(principal, query)
	if err != nil {
		return nil, err
	}
	filter.Limit = s.cfg.MaxRows

	items, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load requests for export")
	}
	names, err := s.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	dataset := buildRequestDataset(items, names)
	title := fmt.Sprintf("Requests export %s", s.now().Format("2006-01-02"))
	payload, err := renderer.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	result := &ExportResult{
		Filename:    s.buildFilename(query, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        payload,
		Rows:        len(items),
		Truncated:   total > len(items),
	}
	s.logger.Info("requests exported",
		zap.String("user_id", principal.UserID),
		zap.String("format", string(format)),
		zap.Int("rows", result.Rows),
		zap.Bool("truncated", result.Truncated),
	)
	return result, nil
}

func (s *ExportService) categoryNames(ctx context.Context) (map[string]string, error) {
	names := make(map[string]string)
	if s.categories == nil {
		return names, nil
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load categories")
	}
	for _, category := range categories {
		names[category.ID] = category.Name
	}
	return names, nil
}

func (s *ExportService) buildFilename(query dto.RequestQuery, ext string) string {
	parts := []string{"requests"}
	if query.Status != "" {
		parts = append(parts, sanitizeFilename(query.Status))
	}
	if query.Priority != "" {
		parts = append(parts, sanitizeFilename(query.Priority))
	}
	parts = append(parts, s.now().Format("20060102_150405"))
	return fmt.Sprintf("%s.%s", strings.Join(parts, "_"), ext)
}

func buildRequestDataset(items []models.Request, categories map[string]string) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		category := categories[item.CategoryID]
		if category == "" {
			category = item.CategoryID
		}
		rows = append(rows, map[string]string{
			"Code":        item.RequestCode,
			"Title":       item.Title,
			"Category":    category,
			"Status":      string(item.Status),
			"Priority":    string(item.Priority),
			"Location":    derefString(item.LocationText),
			"Created At":  item.CreatedAt.UTC().Format(time.RFC3339),
			"Resolved At": formatOptionalTime(item.ResolvedAt),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
