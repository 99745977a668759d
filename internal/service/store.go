package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/docs-platform-api/pkg/database"
	appErrors "github.com/noah-isme/docs-platform-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type storeObserver interface {
	ObserveStoreOperation(op, outcome string, duration time.Duration)
}

// StoreConfig bounds store access from services.
type StoreConfig struct {
	QueryTimeout time.Duration
}

// storeRunner puts a deadline on every store call and runs writes in a single transaction.
type storeRunner struct {
	tx      txProvider
	timeout time.Duration
	metrics storeObserver
}

func newStoreRunner(tx txProvider, metrics storeObserver, cfg StoreConfig) storeRunner {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	return storeRunner{tx: tx, timeout: cfg.QueryTimeout, metrics: metrics}
}

func (r storeRunner) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	r.observe(op, start, err)
	return err
}

func (r storeRunner) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) (err error) {
	if r.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	defer func() { r.observe(op, start, err) }()

	tx, err := r.tx.BeginTxx(ctx, nil)
	if err != nil {
		return storeError(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return storeError(err, "failed to commit transaction")
	}
	return nil
}

func (r storeRunner) observe(op string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(appErrors.FromError(err).Code)
	}
	r.metrics.ObserveStoreOperation(op, outcome, time.Since(start))
}

// storeError maps a repository failure onto the API error taxonomy. Errors that already carry
// an API error pass through unchanged.
func storeError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	err = database.Translate(err)
	var constraint *database.ConstraintError
	switch {
	case errors.As(err, &constraint):
		wrapped := appErrors.Wrap(err, appErrors.ErrConstraintViolation.Code, appErrors.ErrConstraintViolation.Status, appErrors.ErrConstraintViolation.Message)
		for _, v := range constraint.Violations {
			wrapped.Fields = append(wrapped.Fields, appErrors.FieldError{
				Field:   v.Column,
				Rule:    v.Rule,
				Message: fmt.Sprintf("%s.%s violates the %s rule", constraint.Table, v.Column, v.Rule),
			})
		}
		return wrapped
	case errors.Is(err, database.ErrTimeout):
		return appErrors.Wrap(err, appErrors.ErrStoreTimeout.Code, appErrors.ErrStoreTimeout.Status, appErrors.ErrStoreTimeout.Message)
	case errors.Is(err, database.ErrUnavailable):
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	case errors.Is(err, database.ErrUniqueViolation):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "resource already exists")
	case errors.Is(err, database.ErrForeignKeyViolation):
		return appErrors.Wrap(err, appErrors.ErrReferentialIntegrity.Code, appErrors.ErrReferentialIntegrity.Status, appErrors.ErrReferentialIntegrity.Message)
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}
