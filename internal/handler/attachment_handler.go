package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/internal/service"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/response"
)

// multipart framing allowance on top of the file limit
const multipartOverhead = 1 << 20

type attachmentService interface {
	MaxSizeBytes() int64
	Upload(ctx context.Context, principal models.Principal, requestID string, input service.UploadInput) (*models.AttachmentLink, error)
	List(ctx context.Context, principal models.Principal, requestID string) ([]models.AttachmentLink, error)
	Open(ctx context.Context, token string) (*models.Attachment, io.ReadCloser, error)
	Delete(ctx context.Context, principal models.Principal, id string) error
}

// AttachmentHandler serves request attachments.
type AttachmentHandler struct {
	service attachmentService
}

// NewAttachmentHandler builds an AttachmentHandler.
func NewAttachmentHandler(svc attachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: svc}
}

// Upload godoc
// @Summary Attach a file to a request
// @Tags Attachments
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Request ID"
// @Param file formData file true "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /requests/{id}/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxSizeBytes()+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return
		}
		response.Error(c, appErrors.Validation("file", "الملف مطلوب"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
		return
	}
	defer file.Close()

	link, err := h.service.Upload(c.Request.Context(), principal, c.Param("id"), service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// List godoc
// @Summary List request attachments with signed download links
// @Tags Attachments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	links, err := h.service.List(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links)
}

// Download godoc
// @Summary Download an attachment through a signed link
// @Tags Attachments
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /attachments/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	attachment, body, err := h.service.Open(c.Request.Context(), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer body.Close()

	extra := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", attachment.FileName),
	}
	c.DataFromReader(http.StatusOK, attachment.SizeBytes, attachment.ContentType, body, extra)
}

// Delete godoc
// @Summary Remove an attachment
// @Tags Attachments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Attachment ID"
// @Success 200 {object} response.Envelope
// @Router /attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "attachment deleted")
}
