package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

// Detail is the body of acknowledgement responses such as deletes.
type Detail struct {
	Detail string `json:"detail"`
}

// JSON sends a success response. Entities are written as-is, without an envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Message responds with HTTP 200 and a {"detail": ...} body.
func Message(c *gin.Context, detail string) {
	JSON(c, http.StatusOK, Detail{Detail: detail})
}

// Error sends an error response converting the error to the common structure. Server-side
// failures are attached to the context so the request logger records the underlying cause.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if appErr.Status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, appErr)
}
