package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/docs-platform-api/pkg/database"
)

// columns validates model `validate` tags and reports violations by column name.
var columns = newColumnValidator()

func newColumnValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("db"), ",")
		return name
	})
	return v
}

// checkColumns rejects a row before it reaches the store when it breaks a column rule.
func checkColumns(table string, row interface{}) error {
	err := columns.Struct(row)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("check %s columns: %w", table, err)
	}
	violations := make([]database.ColumnViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, database.ColumnViolation{Column: fe.Field(), Rule: fe.Tag()})
	}
	return &database.ConstraintError{Table: table, Violations: violations}
}

// lockHierarchy takes a transaction-scoped advisory lock that serialises re-parenting within
// one table. It is released on commit or rollback.
func lockHierarchy(ctx context.Context, exec sqlx.ExtContext, table string) error {
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, table+".hierarchy"); err != nil {
		return fmt.Errorf("lock %s hierarchy: %w", table, database.Translate(err))
	}
	return nil
}

func execOr(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

// now returns the current time at the precision Postgres stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
