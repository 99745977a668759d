package handler

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
	"github.com/noah-isme/docs-platform-api/internal/models"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

type documentServiceMock struct {
	listResp   []models.Document
	getResp    *models.Document
	createResp *models.Document
	updateResp *models.Document
	err        error

	lastID     int64
	lastCreate dto.DocumentCreateRequest
	lastUpdate dto.DocumentUpdateRequest
	called     bool
}

func (m *documentServiceMock) List(ctx context.Context) ([]models.Document, error) {
	m.called = true
	return m.listResp, m.err
}

func (m *documentServiceMock) Get(ctx context.Context, id int64) (*models.Document, error) {
	m.called = true
	m.lastID = id
	return m.getResp, m.err
}

func (m *documentServiceMock) Create(ctx context.Context, req dto.DocumentCreateRequest) (*models.Document, error) {
	m.called = true
	m.lastCreate = req
	return m.createResp, m.err
}

func (m *documentServiceMock) Update(ctx context.Context, id int64, req dto.DocumentUpdateRequest) (*models.Document, error) {
	m.called = true
	m.lastID = id
	m.lastUpdate = req
	return m.updateResp, m.err
}

func (m *documentServiceMock) Delete(ctx context.Context, id int64) error {
	m.called = true
	m.lastID = id
	return m.err
}

func newTestContext(method, target, body string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) appErrors.Error {
	t.Helper()
	var body appErrors.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func sampleDocument(id int64) *models.Document {
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.Document{
		ID:          id,
		Title:       "Kubernetes",
		Content:     "<p>intro</p>",
		ContentType: models.DefaultContentType,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func TestDocumentHandlerList(t *testing.T) {
	svc := &documentServiceMock{listResp: []models.Document{*sampleDocument(1)}}
	c, w := newTestContext(http.MethodGet, "/docs", "")

	NewDocumentHandler(svc).List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Kubernetes", body[0]["title"])
	assert.Equal(t, []any{}, body[0]["children"])
	assert.Nil(t, body[0]["parent_id"])
}

func TestDocumentHandlerGetInvalidID(t *testing.T) {
	svc := &documentServiceMock{}
	c, w := newTestContext(http.MethodGet, "/docs/abc", "", gin.Param{Key: "id", Value: "abc"})

	NewDocumentHandler(svc).Get(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeError(t, w)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "id", body.Fields[0].Field)
	assert.False(t, svc.called)
}

func TestDocumentHandlerGetNotFound(t *testing.T) {
	svc := &documentServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "Document not found")}
	c, w := newTestContext(http.MethodGet, "/docs/99", "", gin.Param{Key: "id", Value: "99"})

	NewDocumentHandler(svc).Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int64(99), svc.lastID)
	assert.Equal(t, "Document not found", decodeError(t, w).Message)
}

func TestDocumentHandlerCreate(t *testing.T) {
	svc := &documentServiceMock{createResp: sampleDocument(7)}
	c, w := newTestContext(http.MethodPost, "/admin/docs", `{"title":"Kubernetes","content":"<p>intro</p>","parent_id":3}`)

	NewDocumentHandler(svc).Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Kubernetes", svc.lastCreate.Title)
	require.NotNil(t, svc.lastCreate.ParentID)
	assert.Equal(t, int64(3), *svc.lastCreate.ParentID)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestDocumentHandlerCreateReportsEveryInvalidField(t *testing.T) {
	svc := &documentServiceMock{}
	c, w := newTestContext(http.MethodPost, "/admin/docs", `{"title":42}`)

	NewDocumentHandler(svc).Create(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeError(t, w)
	fields := make([]string, 0, len(body.Fields))
	for _, f := range body.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"title", "content"}, fields)
	assert.False(t, svc.called)
}

func TestDocumentHandlerCreateRejectsMalformedBody(t *testing.T) {
	svc := &documentServiceMock{}
	c, w := newTestContext(http.MethodPost, "/admin/docs", `{"title":`)

	NewDocumentHandler(svc).Create(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "body", decodeError(t, w).Fields[0].Field)
}

func TestDocumentHandlerUpdatePassesPresenceThrough(t *testing.T) {
	updated := sampleDocument(5)
	updated.Title = "Renamed"
	svc := &documentServiceMock{updateResp: updated}
	c, w := newTestContext(http.MethodPut, "/admin/docs/5", `{"title":"Renamed","parent_id":null}`, gin.Param{Key: "id", Value: "5"})

	NewDocumentHandler(svc).Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), svc.lastID)
	assert.True(t, svc.lastUpdate.Title.Set)
	assert.False(t, svc.lastUpdate.Content.Set)
	assert.True(t, svc.lastUpdate.ParentID.Set)
	assert.True(t, svc.lastUpdate.ParentID.Null)
}

func TestDocumentHandlerDelete(t *testing.T) {
	svc := &documentServiceMock{}
	c, w := newTestContext(http.MethodDelete, "/admin/docs/4", "", gin.Param{Key: "id", Value: "4"})

	NewDocumentHandler(svc).Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"detail":"Document deleted successfully"}`, w.Body.String())
	assert.Equal(t, int64(4), svc.lastID)
}

func TestDocumentHandlerHidesInternalCause(t *testing.T) {
	svc := &documentServiceMock{err: appErrors.Wrap(assert.AnError, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)}
	c, w := newTestContext(http.MethodGet, "/docs", "")

	NewDocumentHandler(svc).List(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	require.Len(t, c.Errors, 1)
}
