package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/docs-platform-api/internal/models"
	"github.com/noah-isme/docs-platform-api/pkg/database"
)

const moduleColumns = `id, title, duration, lessons, content, image_url, parent_id, created_at, updated_at`

// ModuleRepository manages persistence for course modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs a ModuleRepository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// List returns every module ordered by id.
func (r *ModuleRepository) List(ctx context.Context) ([]models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules ORDER BY id`
	modules := []models.Module{}
	if err := r.db.SelectContext(ctx, &modules, query); err != nil {
		return nil, fmt.Errorf("list modules: %w", database.Translate(err))
	}
	return modules, nil
}

// FindByID fetches a module by id.
func (r *ModuleRepository) FindByID(ctx context.Context, id int64) (*models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE id = $1`
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find module: %w", database.Translate(err))
	}
	return &module, nil
}

// ListByParent returns direct child modules.
func (r *ModuleRepository) ListByParent(ctx context.Context, exec sqlx.ExtContext, parentID int64) ([]models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE parent_id = $1 ORDER BY id`
	modules := []models.Module{}
	if err := sqlx.SelectContext(ctx, execOr(r.db, exec), &modules, query, parentID); err != nil {
		return nil, fmt.Errorf("list child modules: %w", database.Translate(err))
	}
	return modules, nil
}

func (r *ModuleRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE id = $1 FOR UPDATE`
	var module models.Module
	if err := sqlx.GetContext(ctx, execOr(r.db, exec), &module, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock module: %w", database.Translate(err))
	}
	return &module, nil
}

func (r *ModuleRepository) Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, execOr(r.db, exec), &exists, `SELECT EXISTS(SELECT 1 FROM modules WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check module: %w", database.Translate(err))
	}
	return exists, nil
}

func (r *ModuleRepository) ParentID(ctx context.Context, exec sqlx.ExtContext, id int64) (*int64, error) {
	var parent sql.NullInt64
	if err := sqlx.GetContext(ctx, execOr(r.db, exec), &parent, `SELECT parent_id FROM modules WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find module parent: %w", database.Translate(err))
	}
	if !parent.Valid {
		return nil, nil
	}
	return &parent.Int64, nil
}

func (r *ModuleRepository) LockHierarchy(ctx context.Context, exec sqlx.ExtContext) error {
	return lockHierarchy(ctx, execOr(r.db, exec), "modules")
}

func (r *ModuleRepository) ChildIDs(ctx context.Context, exec sqlx.ExtContext, parentIDs []int64) ([]int64, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	if err := sqlx.SelectContext(ctx, execOr(r.db, exec), &ids, `SELECT id FROM modules WHERE parent_id = ANY($1) ORDER BY id`, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("list module children: %w", database.Translate(err))
	}
	return ids, nil
}

// Create inserts a module. updated_at stays NULL until the first update.
func (r *ModuleRepository) Create(ctx context.Context, exec sqlx.ExtContext, module *models.Module) error {
	if module.CreatedAt.IsZero() {
		module.CreatedAt = now()
	}
	module.UpdatedAt = nil
	if err := checkColumns("modules", module); err != nil {
		return err
	}

	const query = `INSERT INTO modules (title, duration, lessons, content, image_url, parent_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	row := execOr(r.db, exec).QueryRowxContext(ctx, query,
		module.Title, module.Duration, module.Lessons, module.Content, module.ImageURL, module.ParentID, module.CreatedAt)
	if err := row.Scan(&module.ID); err != nil {
		return fmt.Errorf("create module: %w", database.Translate(err))
	}
	return nil
}

// Update writes every mutable column of module and stamps updated_at.
func (r *ModuleRepository) Update(ctx context.Context, exec sqlx.ExtContext, module *models.Module) error {
	ts := now()
	module.UpdatedAt = &ts
	if err := checkColumns("modules", module); err != nil {
		return err
	}

	const query = `UPDATE modules SET title = $2, duration = $3, lessons = $4, content = $5, image_url = $6, parent_id = $7, updated_at = $8 WHERE id = $1`
	res, err := execOr(r.db, exec).ExecContext(ctx, query,
		module.ID, module.Title, module.Duration, module.Lessons, module.Content, module.ImageURL, module.ParentID, module.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update module: %w", database.Translate(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ModuleRepository) DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := execOr(r.db, exec).ExecContext(ctx, `DELETE FROM modules WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete modules: %w", database.Translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete modules: %w", err)
	}
	return n, nil
}
