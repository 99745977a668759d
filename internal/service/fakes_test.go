package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/docs-platform-api/internal/models"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "postgres")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type recordingObserver struct {
	ops []string
}

func (r *recordingObserver) ObserveStoreOperation(op, outcome string, duration time.Duration) {
	r.ops = append(r.ops, op+":"+outcome)
}

var past = time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

type mockDocumentRepo struct {
	items   map[int64]models.Document
	nextID  int64
	listErr error
	deletes [][]int64
	locks   int
}

func newMockDocumentRepo(docs ...models.Document) *mockDocumentRepo {
	repo := &mockDocumentRepo{items: make(map[int64]models.Document)}
	for _, doc := range docs {
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt, doc.UpdatedAt = past, past
		}
		if doc.ContentType == "" {
			doc.ContentType = models.DefaultContentType
		}
		repo.items[doc.ID] = doc
		if doc.ID > repo.nextID {
			repo.nextID = doc.ID
		}
	}
	return repo
}

func (m *mockDocumentRepo) sorted(filter func(models.Document) bool) []models.Document {
	out := []models.Document{}
	for _, doc := range m.items {
		if filter == nil || filter(doc) {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockDocumentRepo) List(ctx context.Context) ([]models.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(nil), nil
}

func (m *mockDocumentRepo) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	doc, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &doc, nil
}

func (m *mockDocumentRepo) ListByParent(ctx context.Context, exec sqlx.ExtContext, parentID int64) ([]models.Document, error) {
	children := m.sorted(func(d models.Document) bool { return d.ParentID != nil && *d.ParentID == parentID })
	sort.SliceStable(children, func(i, j int) bool { return children[i].OrderIndex < children[j].OrderIndex })
	return children, nil
}

func (m *mockDocumentRepo) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Document, error) {
	return m.FindByID(ctx, id)
}

func (m *mockDocumentRepo) Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockDocumentRepo) ParentID(ctx context.Context, exec sqlx.ExtContext, id int64) (*int64, error) {
	doc, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return doc.ParentID, nil
}

func (m *mockDocumentRepo) LockHierarchy(ctx context.Context, exec sqlx.ExtContext) error {
	m.locks++
	return nil
}

func (m *mockDocumentRepo) ChildIDs(ctx context.Context, exec sqlx.ExtContext, parentIDs []int64) ([]int64, error) {
	parents := make(map[int64]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	var ids []int64
	for _, doc := range m.sorted(func(d models.Document) bool { return d.ParentID != nil && parents[*d.ParentID] }) {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

func (m *mockDocumentRepo) Create(ctx context.Context, exec sqlx.ExtContext, doc *models.Document) error {
	m.nextID++
	doc.ID = m.nextID
	if doc.ContentType == "" {
		doc.ContentType = models.DefaultContentType
	}
	doc.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	doc.UpdatedAt = doc.CreatedAt
	stored := *doc
	stored.Children = nil
	m.items[doc.ID] = stored
	return nil
}

func (m *mockDocumentRepo) Update(ctx context.Context, exec sqlx.ExtContext, doc *models.Document) error {
	if _, ok := m.items[doc.ID]; !ok {
		return sql.ErrNoRows
	}
	doc.UpdatedAt = time.Now().UTC()
	stored := *doc
	stored.Children = nil
	m.items[doc.ID] = stored
	return nil
}

func (m *mockDocumentRepo) DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (int64, error) {
	m.deletes = append(m.deletes, ids)
	var n int64
	for _, id := range ids {
		if _, ok := m.items[id]; ok {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

type mockModuleRepo struct {
	items  map[int64]models.Module
	nextID int64
}

func newMockModuleRepo(modules ...models.Module) *mockModuleRepo {
	repo := &mockModuleRepo{items: make(map[int64]models.Module)}
	for _, module := range modules {
		if module.CreatedAt.IsZero() {
			module.CreatedAt = past
		}
		repo.items[module.ID] = module
		if module.ID > repo.nextID {
			repo.nextID = module.ID
		}
	}
	return repo
}

func (m *mockModuleRepo) sorted(filter func(models.Module) bool) []models.Module {
	out := []models.Module{}
	for _, module := range m.items {
		if filter == nil || filter(module) {
			out = append(out, module)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockModuleRepo) List(ctx context.Context) ([]models.Module, error) {
	return m.sorted(nil), nil
}

func (m *mockModuleRepo) FindByID(ctx context.Context, id int64) (*models.Module, error) {
	module, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &module, nil
}

func (m *mockModuleRepo) ListByParent(ctx context.Context, exec sqlx.ExtContext, parentID int64) ([]models.Module, error) {
	return m.sorted(func(mod models.Module) bool { return mod.ParentID != nil && *mod.ParentID == parentID }), nil
}

func (m *mockModuleRepo) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Module, error) {
	return m.FindByID(ctx, id)
}

func (m *mockModuleRepo) Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockModuleRepo) ParentID(ctx context.Context, exec sqlx.ExtContext, id int64) (*int64, error) {
	module, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return module.ParentID, nil
}

func (m *mockModuleRepo) LockHierarchy(ctx context.Context, exec sqlx.ExtContext) error {
	return nil
}

func (m *mockModuleRepo) ChildIDs(ctx context.Context, exec sqlx.ExtContext, parentIDs []int64) ([]int64, error) {
	parents := make(map[int64]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	var ids []int64
	for _, module := range m.sorted(func(mod models.Module) bool { return mod.ParentID != nil && parents[*mod.ParentID] }) {
		ids = append(ids, module.ID)
	}
	return ids, nil
}

func (m *mockModuleRepo) Create(ctx context.Context, exec sqlx.ExtContext, module *models.Module) error {
	m.nextID++
	module.ID = m.nextID
	module.CreatedAt = time.Now().UTC()
	module.UpdatedAt = nil
	stored := *module
	stored.Children = nil
	m.items[module.ID] = stored
	return nil
}

func (m *mockModuleRepo) Update(ctx context.Context, exec sqlx.ExtContext, module *models.Module) error {
	if _, ok := m.items[module.ID]; !ok {
		return sql.ErrNoRows
	}
	ts := time.Now().UTC()
	module.UpdatedAt = &ts
	stored := *module
	stored.Children = nil
	m.items[module.ID] = stored
	return nil
}

func (m *mockModuleRepo) DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := m.items[id]; ok {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}
