package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/docs-platform-api/internal/models"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

func fieldRules(t *testing.T, err error) map[string]string {
	t.Helper()
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	rules := make(map[string]string, len(appErr.Fields))
	for _, f := range appErr.Fields {
		rules[f.Field] = f.Rule
	}
	return rules
}

func TestBindDocumentCreate(t *testing.T) {
	var req DocumentCreateRequest
	err := Bind([]byte(`{"title":"Intro","content":"Hello","parent_id":3,"extra":true}`), &req, validator.New())
	require.NoError(t, err)
	assert.Equal(t, "Intro", req.Title)
	require.NotNil(t, req.ParentID)
	assert.Equal(t, int64(3), *req.ParentID)
	assert.Equal(t, "", req.ContentType)
}

func TestBindReportsEveryInvalidField(t *testing.T) {
	var req DocumentCreateRequest
	err := Bind([]byte(`{"title":42,"content_type":"","parent_id":"x","order_index":1.5}`), &req, validator.New())

	rules := fieldRules(t, err)
	assert.Equal(t, "type", rules["title"])
	assert.Equal(t, "required", rules["content"])
	assert.Equal(t, "type", rules["parent_id"])
	assert.Equal(t, "type", rules["order_index"])
	assert.Len(t, appErrors.FromError(err).Fields, 4)
}

func TestBindRejectsOrderIndexOutsideColumnRange(t *testing.T) {
	var req DocumentCreateRequest
	err := Bind([]byte(`{"title":"A","content":"x","order_index":3000000000}`), &req, validator.New())

	rules := fieldRules(t, err)
	assert.Equal(t, map[string]string{"order_index": "max"}, rules)
	assert.Equal(t, "must be at most 2147483647", appErrors.FromError(err).Fields[0].Message)

	var update DocumentUpdateRequest
	err = Bind([]byte(`{"order_index":-3000000000}`), &update, validator.New())
	assert.Equal(t, map[string]string{"order_index": "min"}, fieldRules(t, err))

	var edge DocumentCreateRequest
	require.NoError(t, Bind([]byte(`{"title":"A","content":"x","order_index":2147483647}`), &edge, nil))
}

func TestBindCreateRejectsEmptyRequiredStrings(t *testing.T) {
	var doc DocumentCreateRequest
	rules := fieldRules(t, Bind([]byte(`{"title":"","content":""}`), &doc, nil))
	assert.Equal(t, map[string]string{"title": "required", "content": "required"}, rules)

	var module ModuleCreateRequest
	rules = fieldRules(t, Bind([]byte(`{"title":"M","duration":"","lessons":"","content":"c"}`), &module, nil))
	assert.Equal(t, map[string]string{"duration": "required", "lessons": "required"}, rules)
}

func TestBindRejectsNonObjectBody(t *testing.T) {
	for _, body := range []string{``, `[]`, `"text"`, `null`, `{"title":`} {
		var req DocumentCreateRequest
		rules := fieldRules(t, Bind([]byte(body), &req, nil))
		assert.Equal(t, "type", rules["body"], body)
	}
}

func TestBindModuleCreateLengthRules(t *testing.T) {
	var req ModuleCreateRequest
	err := Bind([]byte(`{"title":"Docker","duration":"this duration is far too long","lessons":"5","content":"c"}`), &req, validator.New())

	rules := fieldRules(t, err)
	assert.Equal(t, map[string]string{"duration": "max"}, rules)
}

func TestBindDocumentUpdateTracksPresence(t *testing.T) {
	var req DocumentUpdateRequest
	require.NoError(t, Bind([]byte(`{"title":"New title"}`), &req, validator.New()))

	assert.Equal(t, []string{"title"}, req.Fields())
	doc := models.Document{Title: "Old", Content: "Body", ContentType: "markdown", OrderIndex: 2}
	req.Apply(&doc)
	assert.Equal(t, "New title", doc.Title)
	assert.Equal(t, "Body", doc.Content)
	assert.Equal(t, "markdown", doc.ContentType)
	assert.Equal(t, 2, doc.OrderIndex)
}

func TestBindDocumentUpdateNulls(t *testing.T) {
	var req DocumentUpdateRequest
	err := Bind([]byte(`{"title":null,"parent_id":null}`), &req, validator.New())

	rules := fieldRules(t, err)
	assert.Equal(t, map[string]string{"title": "not_null"}, rules)

	var clear DocumentUpdateRequest
	require.NoError(t, Bind([]byte(`{"parent_id":null}`), &clear, validator.New()))
	parent := int64(9)
	doc := models.Document{ParentID: &parent}
	clear.Apply(&doc)
	assert.Nil(t, doc.ParentID)
}

func TestBindDocumentUpdateRejectsEmptyTitle(t *testing.T) {
	var req DocumentUpdateRequest
	rules := fieldRules(t, Bind([]byte(`{"title":"","parent_id":0}`), &req, validator.New()))
	assert.Equal(t, "min", rules["title"])
	assert.Equal(t, "gt", rules["parent_id"])
}

func TestBindModuleUpdateClearsImage(t *testing.T) {
	var req ModuleUpdateRequest
	require.NoError(t, Bind([]byte(`{"image_url":null,"lessons":"12"}`), &req, validator.New()))

	assert.ElementsMatch(t, []string{"image_url", "lessons"}, req.Fields())
	image := "https://cdn.example.com/a.png"
	module := models.Module{ImageURL: &image, Lessons: "3"}
	req.Apply(&module)
	assert.Nil(t, module.ImageURL)
	assert.Equal(t, "12", module.Lessons)
}

func TestNewDocumentResponseAlwaysHasChildren(t *testing.T) {
	resp := NewDocumentResponse(models.Document{ID: 1, Children: []models.Document{{ID: 2}}})
	require.Len(t, resp.Children, 1)
	assert.NotNil(t, resp.Children[0].Children)
	assert.Empty(t, resp.Children[0].Children)

	assert.NotNil(t, NewModuleListResponse(nil))
}
