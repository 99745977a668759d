package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/docs-platform-api/internal/dto"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

const maxBodyBytes = 5 << 20

// bindJSON decodes the request body into dst, reporting every invalid field at once.
func bindJSON(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return appErrors.WithFields(appErrors.ErrValidation, []appErrors.FieldError{{Field: "body", Rule: "max", Message: "request body is too large"}})
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read request body")
	}
	return dto.Bind(raw, dst, nil)
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.WithFields(appErrors.ErrValidation, []appErrors.FieldError{{
			Field:   name,
			Rule:    "type",
			Message: "must be a positive integer",
		}})
	}
	return id, nil
}
