package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerStub struct{ err error }

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func TestSystemHandlerRoot(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")
	NewSystemHandler(nil, nil).Root(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"DevOps Documentation API"}`, w.Body.String())
}

func TestSystemHandlerReady(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/ready", "")
	NewSystemHandler(pingerStub{}, nil).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/ready", "")
	NewSystemHandler(pingerStub{err: errors.New("dial tcp: refused")}, nil).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")
}

func TestSystemHandlerPrometheusDisabled(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/metrics", "")
	NewSystemHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
