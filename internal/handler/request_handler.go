package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/middleware"
	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/internal/service"
	"github.com/noah-isme/civic-desk-api/pkg/response"
)

type requestService interface {
	Create(ctx context.Context, principal models.Principal, payload dto.CreateRequestPayload) (*models.Request, error)
	Get(ctx context.Context, principal models.Principal, id string) (*models.RequestDetail, error)
	GetByCode(ctx context.Context, principal models.Principal, code string) (*models.RequestDetail, error)
	List(ctx context.Context, principal models.Principal, query dto.RequestQuery) (*models.RequestList, error)
	Update(ctx context.Context, principal models.Principal, id string, payload dto.UpdateRequestPayload) (*models.Request, error)
	Delete(ctx context.Context, principal models.Principal, id string) error
	History(ctx context.Context, principal models.Principal, id string) ([]models.RequestHistory, error)
	Statistics(ctx context.Context, principal models.Principal) (*models.RequestStatistics, error)
}

type requestExporter interface {
	Export(ctx context.Context, principal models.Principal, query dto.RequestQuery) (*service.ExportResult, error)
}

// RequestHandler exposes the request lifecycle endpoints.
type RequestHandler struct {
	requests requestService
	exporter requestExporter
}

// NewRequestHandler builds a RequestHandler.
func NewRequestHandler(requests requestService, exporter requestExporter) *RequestHandler {
	return &RequestHandler{requests: requests, exporter: exporter}
}

// List godoc
// @Summary List requests
// @Description Citizens only see their own requests; filters apply to office staff.
// @Tags Requests
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Param category_id query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var query dto.RequestQuery
	if !bindQuery(c, &query) {
		return
	}
	list, err := h.requests.List(c.Request.Context(), principal, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, middleware.ListMeta(c, nil))
}

// Statistics godoc
// @Summary Request counts by status and priority
// @Tags Requests
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/statistics [get]
func (h *RequestHandler) Statistics(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	stats, err := h.requests.Statistics(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Track godoc
// @Summary Look up a request by tracking code
// @Tags Requests
// @Security BearerAuth
// @Produce json
// @Param code path string true "Request code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/track/{code} [get]
func (h *RequestHandler) Track(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	detail, err := h.requests.GetByCode(c.Request.Context(), principal, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Export godoc
// @Summary Export requests
// @Tags Requests
// @Security BearerAuth
// @Produce text/csv,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx"
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Param category_id query string false "Category filter"
// @Success 200 {file} file
// @Router /requests/export [get]
func (h *RequestHandler) Export(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var query dto.RequestQuery
	if !bindQuery(c, &query) {
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), principal, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("X-Export-Rows", fmt.Sprintf("%d", result.Rows))
	if result.Truncated {
		c.Header("X-Export-Truncated", "true")
	}
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Get godoc
// @Summary Request detail with history
// @Tags Requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	detail, err := h.requests.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Create godoc
// @Summary Submit a request
// @Tags Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var payload dto.CreateRequestPayload
	if !bindJSON(c, &payload, "invalid request payload") {
		return
	}
	request, err := h.requests.Create(c.Request.Context(), principal, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Update godoc
// @Summary Update a request
// @Description Citizens may edit their own request but never its status.
// @Tags Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateRequestPayload true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id} [put]
func (h *RequestHandler) Update(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var payload dto.UpdateRequestPayload
	if !bindJSON(c, &payload, "invalid request payload") {
		return
	}
	request, err := h.requests.Update(c.Request.Context(), principal, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// Delete godoc
// @Summary Delete a request
// @Tags Requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	if err := h.requests.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "request deleted")
}

// History godoc
// @Summary Status history of a request, newest first
// @Tags Requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/history [get]
func (h *RequestHandler) History(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	history, err := h.requests.History(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history)
}
