package models

import "time"

// Document is one page of the documentation tree.
type Document struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title" validate:"required,max=255"`
	Content     string     `db:"content" json:"content" validate:"required"`
	ContentType string     `db:"content_type" json:"content_type" validate:"required,max=50"`
	ParentID    *int64     `db:"parent_id" json:"parent_id"`
	OrderIndex  int        `db:"order_index" json:"order_index" validate:"min=-2147483648,max=2147483647"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	Children    []Document `db:"-" json:"children"`
}

// DefaultContentType is stored when a document is created without one.
const DefaultContentType = "rich_text"
