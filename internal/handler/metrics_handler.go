package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
	"github.com/noah-isme/docs-platform-api/pkg/response"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler exposes the banner, probes and Prometheus metrics.
type SystemHandler struct {
	db      pinger
	metrics http.Handler
}

// NewSystemHandler constructs a system handler. metrics may be nil when metrics are disabled.
func NewSystemHandler(db pinger, metrics http.Handler) *SystemHandler {
	return &SystemHandler{db: db, metrics: metrics}
}

// Root godoc
// @Summary API banner
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "DevOps Documentation API"})
}

// Health responds with a generic OK payload for liveness usage.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the store answers.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db == nil {
		response.Error(c, appErrors.ErrStoreUnavailable)
		return
	}
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *SystemHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.ServeHTTP(c.Writer, c.Request)
}
