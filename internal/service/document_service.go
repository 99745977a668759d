package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/docs-platform-api/internal/dto"
	"github.com/noah-isme/docs-platform-api/internal/models"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

type documentRepository interface {
	treeStore
	List(ctx context.Context) ([]models.Document, error)
	FindByID(ctx context.Context, id int64) (*models.Document, error)
	ListByParent(ctx context.Context, exec sqlx.ExtContext, parentID int64) ([]models.Document, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Document, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, doc *models.Document) error
	Update(ctx context.Context, exec sqlx.ExtContext, doc *models.Document) error
	DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (int64, error)
}

// DocumentService implements the documentation tree use cases.
type DocumentService struct {
	repo      documentRepository
	store     storeRunner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(repo documentRepository, tx txProvider, metrics storeObserver, validate *validator.Validate, logger *zap.Logger, cfg StoreConfig) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		repo:      repo,
		store:     newStoreRunner(tx, metrics, cfg),
		validator: validate,
		logger:    logger,
	}
}

// List returns every document, each with its direct children attached.
func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := s.store.do(ctx, "document.list", func(ctx context.Context) error {
		var err error
		docs, err = s.repo.List(ctx)
		if err != nil {
			return storeError(err, "failed to list documents")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	children := groupByParent(docs, func(d models.Document) *int64 { return d.ParentID })
	for i := range docs {
		kids := append([]models.Document(nil), children[docs[i].ID]...)
		sort.SliceStable(kids, func(a, b int) bool { return kids[a].OrderIndex < kids[b].OrderIndex })
		docs[i].Children = kids
	}
	return docs, nil
}

// Get returns a document and its direct children.
func (s *DocumentService) Get(ctx context.Context, id int64) (*models.Document, error) {
	var doc *models.Document
	err := s.store.do(ctx, "document.get", func(ctx context.Context) error {
		found, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return documentNotFound()
			}
			return storeError(err, "failed to load document")
		}
		if found.Children, err = s.repo.ListByParent(ctx, nil, id); err != nil {
			return storeError(err, "failed to load child documents")
		}
		doc = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Create stores a new document. A parent, when given, must already exist.
func (s *DocumentService) Create(ctx context.Context, req dto.DocumentCreateRequest) (*models.Document, error) {
	if err := dto.Validate(req, s.validator); err != nil {
		return nil, err
	}

	doc := &models.Document{
		Title:       req.Title,
		Content:     req.Content,
		ContentType: req.ContentType,
		ParentID:    req.ParentID,
		OrderIndex:  req.OrderIndex,
	}
	err := s.store.inTx(ctx, "document.create", func(ctx context.Context, tx *sqlx.Tx) error {
		if doc.ParentID != nil {
			exists, err := s.repo.Exists(ctx, tx, *doc.ParentID)
			if err != nil {
				return storeError(err, "failed to check parent document")
			}
			if !exists {
				return appErrors.Clone(appErrors.ErrReferentialIntegrity, fmt.Sprintf("parent document %d does not exist", *doc.ParentID))
			}
		}
		if err := s.repo.Create(ctx, tx, doc); err != nil {
			return storeError(err, "failed to create document")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc.Children = []models.Document{}
	s.logger.Info("document created", zap.Int64("document_id", doc.ID))
	return doc, nil
}

// Update applies the fields present in req and refreshes updated_at.
func (s *DocumentService) Update(ctx context.Context, id int64, req dto.DocumentUpdateRequest) (*models.Document, error) {
	if err := dto.Validate(req, s.validator); err != nil {
		return nil, err
	}

	var doc *models.Document
	err := s.store.inTx(ctx, "document.update", func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return documentNotFound()
			}
			return storeError(err, "failed to load document")
		}
		if parent := req.ParentID.Ptr(); parent != nil {
			if err := ensureAcyclic(ctx, s.repo, tx, "document", id, *parent); err != nil {
				return err
			}
		}

		req.Apply(current)
		if err := s.repo.Update(ctx, tx, current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return documentNotFound()
			}
			return storeError(err, "failed to update document")
		}
		if current.Children, err = s.repo.ListByParent(ctx, tx, id); err != nil {
			return storeError(err, "failed to load child documents")
		}
		doc = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated", zap.Int64("document_id", id), zap.Strings("fields", req.Fields()))
	return doc, nil
}

// Delete removes a document together with its whole subtree in one transaction.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	var removed int64
	err := s.store.inTx(ctx, "document.delete", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := s.repo.FindByIDForUpdate(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return documentNotFound()
			}
			return storeError(err, "failed to load document")
		}
		ids, err := collectSubtree(ctx, s.repo, tx, id)
		if err != nil {
			return storeError(err, "failed to collect document subtree")
		}
		if removed, err = s.repo.DeleteByIDs(ctx, tx, ids); err != nil {
			return storeError(err, "failed to delete document")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("document deleted", zap.Int64("document_id", id), zap.Int64("rows_removed", removed))
	return nil
}

func documentNotFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, "Document not found")
}
