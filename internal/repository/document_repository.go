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

const documentColumns = `id, title, content, content_type, parent_id, order_index, created_at, updated_at`

// DocumentRepository manages persistence for documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// List returns every document ordered by id.
func (r *DocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY id`
	docs := []models.Document{}
	if err := r.db.SelectContext(ctx, &docs, query); err != nil {
		return nil, fmt.Errorf("list documents: %w", database.Translate(err))
	}
	return docs, nil
}

// FindByID fetches a document. sql.ErrNoRows is returned unwrapped when it does not exist.
func (r *DocumentRepository) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document: %w", database.Translate(err))
	}
	return &doc, nil
}

// ListByParent returns the direct children of a document in display order.
func (r *DocumentRepository) ListByParent(ctx context.Context, exec sqlx.ExtContext, parentID int64) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE parent_id = $1 ORDER BY order_index, id`
	docs := []models.Document{}
	if err := sqlx.SelectContext(ctx, execOr(r.db, exec), &docs, query, parentID); err != nil {
		return nil, fmt.Errorf("list child documents: %w", database.Translate(err))
	}
	return docs, nil
}

// FindByIDForUpdate fetches and locks a document for the rest of the transaction.
func (r *DocumentRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
	var doc models.Document
	if err := sqlx.GetContext(ctx, execOr(r.db, exec), &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock document: %w", database.Translate(err))
	}
	return &doc, nil
}

// Exists reports whether a document with the id is present.
func (r *DocumentRepository) Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, execOr(r.db, exec), &exists, `SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check document: %w", database.Translate(err))
	}
	return exists, nil
}

// ParentID returns the parent of a document, nil for roots.
func (r *DocumentRepository) ParentID(ctx context.Context, exec sqlx.ExtContext, id int64) (*int64, error) {
	var parent sql.NullInt64
	if err := sqlx.GetContext(ctx, execOr(r.db, exec), &parent, `SELECT parent_id FROM documents WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document parent: %w", database.Translate(err))
	}
	if !parent.Valid {
		return nil, nil
	}
	return &parent.Int64, nil
}

// LockHierarchy serialises parent changes of documents until exec's transaction ends.
func (r *DocumentRepository) LockHierarchy(ctx context.Context, exec sqlx.ExtContext) error {
	return lockHierarchy(ctx, execOr(r.db, exec), "documents")
}

// ChildIDs returns the ids of the direct children of any of the given documents.
func (r *DocumentRepository) ChildIDs(ctx context.Context, exec sqlx.ExtContext, parentIDs []int64) ([]int64, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	if err := sqlx.SelectContext(ctx, execOr(r.db, exec), &ids, `SELECT id FROM documents WHERE parent_id = ANY($1) ORDER BY id`, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("list document children: %w", database.Translate(err))
	}
	return ids, nil
}

// Create inserts a document and stores the generated id on it.
func (r *DocumentRepository) Create(ctx context.Context, exec sqlx.ExtContext, doc *models.Document) error {
	if doc.ContentType == "" {
		doc.ContentType = models.DefaultContentType
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now()
	}
	doc.UpdatedAt = doc.CreatedAt
	if err := checkColumns("documents", doc); err != nil {
		return err
	}

	const query = `INSERT INTO documents (title, content, content_type, parent_id, order_index, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	row := execOr(r.db, exec).QueryRowxContext(ctx, query,
		doc.Title, doc.Content, doc.ContentType, doc.ParentID, doc.OrderIndex, doc.CreatedAt, doc.UpdatedAt)
	if err := row.Scan(&doc.ID); err != nil {
		return fmt.Errorf("create document: %w", database.Translate(err))
	}
	return nil
}

// Update writes every mutable column of doc and refreshes updated_at.
func (r *DocumentRepository) Update(ctx context.Context, exec sqlx.ExtContext, doc *models.Document) error {
	doc.UpdatedAt = now()
	if err := checkColumns("documents", doc); err != nil {
		return err
	}

	const query = `UPDATE documents SET title = $2, content = $3, content_type = $4, parent_id = $5, order_index = $6, updated_at = $7 WHERE id = $1`
	res, err := execOr(r.db, exec).ExecContext(ctx, query,
		doc.ID, doc.Title, doc.Content, doc.ContentType, doc.ParentID, doc.OrderIndex, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update document: %w", database.Translate(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByIDs removes the given documents in one statement and returns how many went away.
func (r *DocumentRepository) DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := execOr(r.db, exec).ExecContext(ctx, `DELETE FROM documents WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", database.Translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return n, nil
}
