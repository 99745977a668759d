package models

import "time"

// Module is a course module. Modules nest the same way documents do.
type Module struct {
	ID        int64      `db:"id" json:"id"`
	Title     string     `db:"title" json:"title" validate:"required,max=255"`
	Duration  string     `db:"duration" json:"duration" validate:"required,max=20"`
	Lessons   string     `db:"lessons" json:"lessons" validate:"required,max=20"`
	Content   string     `db:"content" json:"content" validate:"required"`
	ImageURL  *string    `db:"image_url" json:"image_url" validate:"omitempty,max=255"`
	ParentID  *int64     `db:"parent_id" json:"parent_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at"`
	Children  []Module   `db:"-" json:"children"`
}
