package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-desk-api/internal/dto"
	"github.com/noah-isme/civic-desk-api/internal/middleware"
	"github.com/noah-isme/civic-desk-api/internal/models"
	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
	"github.com/noah-isme/civic-desk-api/pkg/response"
)

// principalFromContext returns the caller resolved by the auth middleware.
// When it is missing the 401 response is already written.
func principalFromContext(c *gin.Context) (models.Principal, bool) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrMissingCredential)
		return models.Principal{}, false
	}
	return *principal, true
}

// bindJSON decodes the request body, writing a 400 on malformed input.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dest interface{}, message string) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dest, message)
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return false
	}
	return true
}

func sessionMeta(c *gin.Context) dto.SessionMeta {
	return dto.SessionMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}
