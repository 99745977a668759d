package dto

import (
	"time"

	"github.com/noah-isme/docs-platform-api/internal/models"
)

// DocumentCreateRequest is the payload for POST /admin/docs.
type DocumentCreateRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Content     string `json:"content" validate:"required"`
	ContentType string `json:"content_type" validate:"omitempty,max=50"`
	ParentID    *int64 `json:"parent_id" validate:"omitempty,gt=0"`
	OrderIndex  int    `json:"order_index" validate:"min=-2147483648,max=2147483647"`
}

// DocumentUpdateRequest is a change-set: only fields the client sent are applied.
type DocumentUpdateRequest struct {
	Title       Optional[string] `json:"title" validate:"min=1,max=255"`
	Content     Optional[string] `json:"content" validate:"min=1"`
	ContentType Optional[string] `json:"content_type" validate:"min=1,max=50"`
	ParentID    Nullable[int64]  `json:"parent_id" validate:"gt=0"`
	OrderIndex  Optional[int]    `json:"order_index" validate:"min=-2147483648,max=2147483647"`
}

// Fields lists the json names of the fields present in the change-set.
func (r DocumentUpdateRequest) Fields() []string {
	var fields []string
	if r.Title.Set {
		fields = append(fields, "title")
	}
	if r.Content.Set {
		fields = append(fields, "content")
	}
	if r.ContentType.Set {
		fields = append(fields, "content_type")
	}
	if r.ParentID.Set {
		fields = append(fields, "parent_id")
	}
	if r.OrderIndex.Set {
		fields = append(fields, "order_index")
	}
	return fields
}

// Apply copies the present fields onto doc.
func (r DocumentUpdateRequest) Apply(doc *models.Document) {
	if r.Title.Set {
		doc.Title = r.Title.Value
	}
	if r.Content.Set {
		doc.Content = r.Content.Value
	}
	if r.ContentType.Set {
		doc.ContentType = r.ContentType.Value
	}
	if r.ParentID.Set {
		doc.ParentID = r.ParentID.Ptr()
	}
	if r.OrderIndex.Set {
		doc.OrderIndex = r.OrderIndex.Value
	}
}

// DocumentResponse is the outbound shape of a document.
type DocumentResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	ContentType string             `json:"content_type"`
	ParentID    *int64             `json:"parent_id"`
	OrderIndex  int                `json:"order_index"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Children    []DocumentResponse `json:"children"`
}

// NewDocumentResponse shapes doc and its loaded children. Children is never null.
func NewDocumentResponse(doc models.Document) DocumentResponse {
	children := make([]DocumentResponse, 0, len(doc.Children))
	for _, child := range doc.Children {
		children = append(children, NewDocumentResponse(child))
	}
	return DocumentResponse{
		ID:          doc.ID,
		Title:       doc.Title,
		Content:     doc.Content,
		ContentType: doc.ContentType,
		ParentID:    doc.ParentID,
		OrderIndex:  doc.OrderIndex,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		Children:    children,
	}
}

// NewDocumentListResponse shapes a list of documents.
func NewDocumentListResponse(docs []models.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, NewDocumentResponse(doc))
	}
	return out
}
