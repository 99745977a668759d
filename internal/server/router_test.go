package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/docs-platform-api/internal/dto"
	"github.com/noah-isme/docs-platform-api/internal/handler"
	"github.com/noah-isme/docs-platform-api/internal/models"
	"github.com/noah-isme/docs-platform-api/pkg/config"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

type stubAuthorizer struct{}

func (stubAuthorizer) Authorize(token string) (*models.AdminClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrAuthFailure, "Could not validate credentials")
	}
	return &models.AdminClaims{AdminID: 1, Username: "admin"}, nil
}

func (stubAuthorizer) Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	return &dto.LoginResponse{AccessToken: "good", TokenType: dto.TokenTypeBearer, ExpiresIn: 60}, nil
}

type stubDocuments struct{ writes int }

func (s *stubDocuments) List(ctx context.Context) ([]models.Document, error) {
	return []models.Document{}, nil
}

func (s *stubDocuments) Get(ctx context.Context, id int64) (*models.Document, error) {
	return &models.Document{ID: id, Title: "t", Content: "c", ContentType: models.DefaultContentType}, nil
}

func (s *stubDocuments) Create(ctx context.Context, req dto.DocumentCreateRequest) (*models.Document, error) {
	s.writes++
	return &models.Document{ID: 1, Title: req.Title, Content: req.Content, CreatedAt: time.Now()}, nil
}

func (s *stubDocuments) Update(ctx context.Context, id int64, req dto.DocumentUpdateRequest) (*models.Document, error) {
	s.writes++
	return &models.Document{ID: id}, nil
}

func (s *stubDocuments) Delete(ctx context.Context, id int64) error {
	s.writes++
	return nil
}

type stubModules struct{ writes int }

func (s *stubModules) List(ctx context.Context) ([]models.Module, error) {
	return []models.Module{}, nil
}

func (s *stubModules) Get(ctx context.Context, id int64) (*models.Module, error) {
	return &models.Module{ID: id}, nil
}

func (s *stubModules) Create(ctx context.Context, req dto.ModuleCreateRequest) (*models.Module, error) {
	s.writes++
	return &models.Module{ID: 1, Title: req.Title}, nil
}

func (s *stubModules) Update(ctx context.Context, id int64, req dto.ModuleUpdateRequest) (*models.Module, error) {
	s.writes++
	return &models.Module{ID: id}, nil
}

func (s *stubModules) Delete(ctx context.Context, id int64) error {
	s.writes++
	return nil
}

type stubPinger struct{}

func (stubPinger) PingContext(ctx context.Context) error { return nil }

type routerFixture struct {
	engine    *gin.Engine
	documents *stubDocuments
	modules   *stubModules
}

func newRouterFixture(protectModules bool) routerFixture {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:     config.EnvDevelopment,
		Auth:    config.AuthConfig{ProtectModules: protectModules},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	docs := &stubDocuments{}
	mods := &stubModules{}
	auth := stubAuthorizer{}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	engine := NewRouter(Dependencies{
		Config:     cfg,
		Authorizer: auth,
		Auth:       handler.NewAuthHandler(auth),
		Documents:  handler.NewDocumentHandler(docs),
		Modules:    handler.NewModuleHandler(mods),
		System:     handler.NewSystemHandler(stubPinger{}, metrics),
	})
	return routerFixture{engine: engine, documents: docs, modules: mods}
}

func (f routerFixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouterPublicReads(t *testing.T) {
	f := newRouterFixture(false)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/docs", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/docs/3", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/modules", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/metrics", "", "").Code)
}

func TestRouterDocumentWritesRequireToken(t *testing.T) {
	f := newRouterFixture(false)
	payload := `{"title":"a","content":"b"}`

	w := f.do(http.MethodPost, "/admin/docs", payload, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPut, "/admin/docs/1", payload, "bad").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodDelete, "/admin/docs/1", "", "bad").Code)
	assert.Zero(t, f.documents.writes)

	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/admin/docs", payload, "good").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/admin/docs/1", "", "good").Code)
	assert.Equal(t, 2, f.documents.writes)
}

func TestRouterLoginIssuesToken(t *testing.T) {
	f := newRouterFixture(false)

	w := f.do(http.MethodPost, "/admin/login", `{"username":"admin","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "good", body.AccessToken)
}

func TestRouterModuleWritesOpenByDefault(t *testing.T) {
	f := newRouterFixture(false)

	w := f.do(http.MethodPost, "/modules", `{"title":"a","duration":"1h","lessons":"2","content":"c"}`, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, f.modules.writes)
}

func TestRouterModuleWritesProtectedWhenConfigured(t *testing.T) {
	f := newRouterFixture(true)
	payload := `{"title":"a","duration":"1h","lessons":"2","content":"c"}`

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/modules", payload, "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodDelete, "/modules/1", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/modules/1", "", "").Code)
	assert.Zero(t, f.modules.writes)

	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/modules", payload, "good").Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	f := newRouterFixture(false)

	w := f.do(http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}

func TestRouterPreflight(t *testing.T) {
	f := newRouterFixture(false)

	req := httptest.NewRequest(http.MethodOptions, "/admin/docs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
