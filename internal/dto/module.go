package dto

import (
	"time"

	"github.com/noah-isme/docs-platform-api/internal/models"
)

// ModuleCreateRequest is the payload for POST /modules.
type ModuleCreateRequest struct {
	Title    string  `json:"title" validate:"required,max=255"`
	Duration string  `json:"duration" validate:"required,max=20"`
	Lessons  string  `json:"lessons" validate:"required,max=20"`
	Content  string  `json:"content" validate:"required"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=255"`
	ParentID *int64  `json:"parent_id" validate:"omitempty,gt=0"`
}

// ModuleUpdateRequest is a change-set for PUT /modules/{id}.
type ModuleUpdateRequest struct {
	Title    Optional[string] `json:"title" validate:"min=1,max=255"`
	Duration Optional[string] `json:"duration" validate:"min=1,max=20"`
	Lessons  Optional[string] `json:"lessons" validate:"min=1,max=20"`
	Content  Optional[string] `json:"content" validate:"min=1"`
	ImageURL Nullable[string] `json:"image_url" validate:"max=255"`
	ParentID Nullable[int64]  `json:"parent_id" validate:"gt=0"`
}

// Fields lists the json names of the fields present in the change-set.
func (r ModuleUpdateRequest) Fields() []string {
	var fields []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"title", r.Title.Set},
		{"duration", r.Duration.Set},
		{"lessons", r.Lessons.Set},
		{"content", r.Content.Set},
		{"image_url", r.ImageURL.Set},
		{"parent_id", r.ParentID.Set},
	} {
		if f.set {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// Apply copies the present fields onto module.
func (r ModuleUpdateRequest) Apply(module *models.Module) {
	if r.Title.Set {
		module.Title = r.Title.Value
	}
	if r.Duration.Set {
		module.Duration = r.Duration.Value
	}
	if r.Lessons.Set {
		module.Lessons = r.Lessons.Value
	}
	if r.Content.Set {
		module.Content = r.Content.Value
	}
	if r.ImageURL.Set {
		module.ImageURL = r.ImageURL.Ptr()
	}
	if r.ParentID.Set {
		module.ParentID = r.ParentID.Ptr()
	}
}

// ModuleResponse is the outbound shape of a module.
type ModuleResponse struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Duration  string           `json:"duration"`
	Lessons   string           `json:"lessons"`
	Content   string           `json:"content"`
	ImageURL  *string          `json:"image_url"`
	ParentID  *int64           `json:"parent_id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at"`
	Children  []ModuleResponse `json:"children"`
}

// NewModuleResponse shapes module and its loaded children.
func NewModuleResponse(module models.Module) ModuleResponse {
	children := make([]ModuleResponse, 0, len(module.Children))
	for _, child := range module.Children {
		children = append(children, NewModuleResponse(child))
	}
	return ModuleResponse{
		ID:        module.ID,
		Title:     module.Title,
		Duration:  module.Duration,
		Lessons:   module.Lessons,
		Content:   module.Content,
		ImageURL:  module.ImageURL,
		ParentID:  module.ParentID,
		CreatedAt: module.CreatedAt,
		UpdatedAt: module.UpdatedAt,
		Children:  children,
	}
}

// NewModuleListResponse shapes a list of modules.
func NewModuleListResponse(modules []models.Module) []ModuleResponse {
	out := make([]ModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, NewModuleResponse(m))
	}
	return out
}
