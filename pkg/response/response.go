package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
)

const genericServerError = "Internal server error"

// Envelope represents the common response contract.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Success: true, Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Message responds with HTTP 200 and a human readable message only.
func Message(c *gin.Context, message string) {
	noStore(c)
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Error sends an error response converting the error to the common structure.
// Server side failures expose their cause only outside release mode.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)

	text := appErr.Message
	if appErr.Status >= http.StatusInternalServerError {
		if gin.Mode() == gin.ReleaseMode {
			text = genericServerError
		} else {
			text = appErr.Error()
		}
	}

	c.JSON(appErr.Status, Envelope{
		Success: false,
		Error:   text,
		Code:    appErr.Code,
		Field:   appErr.Field,
	})
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
