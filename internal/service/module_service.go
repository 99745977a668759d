package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/docs-platform-api/internal/dto"
	"github.com/noah-isme/docs-platform-api/internal/models"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

type moduleRepository interface {
	treeStore
	List(ctx context.Context) ([]models.Module, error)
	FindByID(ctx context.Context, id int64) (*models.Module, error)
	ListByParent(ctx context.Context, exec sqlx.ExtContext, parentID int64) ([]models.Module, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Module, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, module *models.Module) error
	Update(ctx context.Context, exec sqlx.ExtContext, module *models.Module) error
	DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (int64, error)
}

// ModuleService manages course modules.
type ModuleService struct {
	repo      moduleRepository
	store     storeRunner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService constructs a ModuleService.
func NewModuleService(repo moduleRepository, tx txProvider, metrics storeObserver, validate *validator.Validate, logger *zap.Logger, cfg StoreConfig) *ModuleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{
		repo:      repo,
		store:     newStoreRunner(tx, metrics, cfg),
		validator: validate,
		logger:    logger,
	}
}

// List returns all modules with their direct children.
func (s *ModuleService) List(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module
	err := s.store.do(ctx, "module.list", func(ctx context.Context) error {
		var err error
		if modules, err = s.repo.List(ctx); err != nil {
			return storeError(err, "failed to list modules")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	children := groupByParent(modules, func(m models.Module) *int64 { return m.ParentID })
	for i := range modules {
		modules[i].Children = append([]models.Module(nil), children[modules[i].ID]...)
	}
	return modules, nil
}

// Get returns one module.
func (s *ModuleService) Get(ctx context.Context, id int64) (*models.Module, error) {
	var module *models.Module
	err := s.store.do(ctx, "module.get", func(ctx context.Context) error {
		found, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return moduleNotFound()
			}
			return storeError(err, "failed to load module")
		}
		if found.Children, err = s.repo.ListByParent(ctx, nil, id); err != nil {
			return storeError(err, "failed to load child modules")
		}
		module = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

// Create stores a new module. updated_at stays null until the module is first changed.
func (s *ModuleService) Create(ctx context.Context, req dto.ModuleCreateRequest) (*models.Module, error) {
	if err := dto.Validate(req, s.validator); err != nil {
		return nil, err
	}

	module := &models.Module{
		Title:    req.Title,
		Duration: req.Duration,
		Lessons:  req.Lessons,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		ParentID: req.ParentID,
	}
	err := s.store.inTx(ctx, "module.create", func(ctx context.Context, tx *sqlx.Tx) error {
		if module.ParentID != nil {
			exists, err := s.repo.Exists(ctx, tx, *module.ParentID)
			if err != nil {
				return storeError(err, "failed to check parent module")
			}
			if !exists {
				return appErrors.Clone(appErrors.ErrReferentialIntegrity, fmt.Sprintf("parent module %d does not exist", *module.ParentID))
			}
		}
		if err := s.repo.Create(ctx, tx, module); err != nil {
			return storeError(err, "failed to create module")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	module.Children = []models.Module{}
	s.logger.Info("module created", zap.Int64("module_id", module.ID))
	return module, nil
}

// Update applies the fields present in req.
func (s *ModuleService) Update(ctx context.Context, id int64, req dto.ModuleUpdateRequest) (*models.Module, error) {
	if err := dto.Validate(req, s.validator); err != nil {
		return nil, err
	}

	var module *models.Module
	err := s.store.inTx(ctx, "module.update", func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return moduleNotFound()
			}
			return storeError(err, "failed to load module")
		}
		if parent := req.ParentID.Ptr(); parent != nil {
			if err := ensureAcyclic(ctx, s.repo, tx, "module", id, *parent); err != nil {
				return err
			}
		}

		req.Apply(current)
		if err := s.repo.Update(ctx, tx, current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return moduleNotFound()
			}
			return storeError(err, "failed to update module")
		}
		if current.Children, err = s.repo.ListByParent(ctx, tx, id); err != nil {
			return storeError(err, "failed to load child modules")
		}
		module = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("module updated", zap.Int64("module_id", id), zap.Strings("fields", req.Fields()))
	return module, nil
}

// Delete removes a module and every module below it.
func (s *ModuleService) Delete(ctx context.Context, id int64) error {
	var removed int64
	err := s.store.inTx(ctx, "module.delete", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := s.repo.FindByIDForUpdate(ctx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return moduleNotFound()
			}
			return storeError(err, "failed to load module")
		}
		ids, err := collectSubtree(ctx, s.repo, tx, id)
		if err != nil {
			return storeError(err, "failed to collect module subtree")
		}
		if removed, err = s.repo.DeleteByIDs(ctx, tx, ids); err != nil {
			return storeError(err, "failed to delete module")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("module deleted", zap.Int64("module_id", id), zap.Int64("rows_removed", removed))
	return nil
}

func moduleNotFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, "Module not found")
}
