package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/docs-platform-api/internal/models"
	"github.com/noah-isme/docs-platform-api/pkg/database"
)

// AdminRepository provides database access for admin accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername returns an admin by username.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	const query = `SELECT id, username, hashed_password, created_at, last_login FROM admins WHERE username = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by username: %w", database.Translate(err))
	}
	return &admin, nil
}

// UpdateLastLogin updates the last_login timestamp for an admin.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	const query = `UPDATE admins SET last_login = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", database.Translate(err))
	}
	return nil
}

// Create inserts a new admin and stores the generated id.
func (r *AdminRepository) Create(ctx context.Context, exec sqlx.ExtContext, admin *models.Admin) error {
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now()
	}
	if err := checkColumns("admins", admin); err != nil {
		return err
	}
	const query = `INSERT INTO admins (username, hashed_password, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := execOr(r.db, exec).QueryRowxContext(ctx, query, admin.Username, admin.HashedPassword, admin.CreatedAt).Scan(&admin.ID); err != nil {
		return fmt.Errorf("create admin: %w", database.Translate(err))
	}
	return nil
}
