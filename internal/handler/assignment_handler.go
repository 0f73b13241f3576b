package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/middleware"
	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/pkg/response"
)

type assignmentService interface {
	Create(ctx context.Context, principal models.Principal, payload dto.CreateAssignmentPayload) (*models.Assignment, error)
	List(ctx context.Context, principal models.Principal, query dto.AssignmentQuery) ([]models.Assignment, *models.Pagination, error)
	Get(ctx context.Context, principal models.Principal, id string) (*models.Assignment, error)
	Update(ctx context.Context, principal models.Principal, id string, payload dto.UpdateAssignmentPayload) (*models.Assignment, error)
	Accept(ctx context.Context, principal models.Principal, id string, payload dto.AssignmentActionPayload) (*models.Assignment, error)
	Reject(ctx context.Context, principal models.Principal, id string, payload dto.AssignmentActionPayload) (*models.Assignment, error)
	Complete(ctx context.Context, principal models.Principal, id string, payload dto.AssignmentActionPayload) (*models.Assignment, error)
}

type assignmentAction func(ctx context.Context, principal models.Principal, id string, payload dto.AssignmentActionPayload) (*models.Assignment, error)

// AssignmentHandler exposes staff assignments.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler builds an AssignmentHandler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param assigned_to query string false "Assignee filter (deputy/admin)"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var query dto.AssignmentQuery
	if !bindQuery(c, &query) {
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), principal, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, middleware.ListMeta(c, pagination))
}

// Create godoc
// @Summary Assign a request to a staff member
// @Tags Assignments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssignmentPayload true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var payload dto.CreateAssignmentPayload
	if !bindJSON(c, &payload, "invalid assignment payload") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), principal, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.UpdateAssignmentPayload true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var payload dto.UpdateAssignmentPayload
	if !bindJSON(c, &payload, "invalid assignment payload") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), principal, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Accept godoc
// @Summary Accept an assignment
// @Tags Assignments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/accept [post]
func (h *AssignmentHandler) Accept(c *gin.Context) {
	h.act(c, h.service.Accept)
}

// Reject godoc
// @Summary Reject an assignment
// @Tags Assignments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/reject [post]
func (h *AssignmentHandler) Reject(c *gin.Context) {
	h.act(c, h.service.Reject)
}

// Complete godoc
// @Summary Complete an assignment
// @Tags Assignments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/complete [post]
func (h *AssignmentHandler) Complete(c *gin.Context) {
	h.act(c, h.service.Complete)
}

func (h *AssignmentHandler) act(c *gin.Context, action assignmentAction) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var payload dto.AssignmentActionPayload
	if !bindOptionalJSON(c, &payload, "invalid assignment payload") {
		return
	}
	item, err := action(c.Request.Context(), principal, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}
