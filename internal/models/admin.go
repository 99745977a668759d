package models

import "time"

// Admin is an account allowed to edit documents.
type Admin struct {
	ID             int64      `db:"id" json:"id"`
	Username       string     `db:"username" json:"username" validate:"required,max=50"`
	HashedPassword string     `db:"hashed_password" json:"-" validate:"required,max=255"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	LastLogin      *time.Time `db:"last_login" json:"last_login,omitempty"`
}
