package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
)

// Sentinels for store failures that callers must tell apart.
var (
	ErrTimeout             = errors.New("store operation timed out")
	ErrUnavailable         = errors.New("store unavailable")
	ErrUniqueViolation     = errors.New("unique constraint violated")
	ErrForeignKeyViolation = errors.New("foreign key constraint violated")
	ErrConstraint          = errors.New("column constraint violated")
)

// ColumnViolation names a column and the rule it broke.
type ColumnViolation struct {
	Column string
	Rule   string
}

// ConstraintError reports column level violations detected before or during a write.
type ConstraintError struct {
	Table      string
	Violations []ColumnViolation
	Err        error
}

func (e *ConstraintError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s.%s (%s)", e.Table, v.Column, v.Rule))
	}
	return "constraint violation: " + strings.Join(parts, ", ")
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

// Postgres SQLSTATE codes the API reacts to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeStringTruncation    = "22001"
	codeNumericOutOfRange   = "22003"
	codeQueryCanceled       = "57014"
	codeAdminShutdown       = "57P01"
	codeTooManyConnections  = "53300"
)

// Translate classifies driver errors into the package sentinels, keeping the original error in
// the chain. Errors it does not recognise are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrConstraint) ||
		errors.Is(err, ErrUniqueViolation) || errors.Is(err, ErrForeignKeyViolation) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeQueryCanceled:
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		case pqErr.Code == codeUniqueViolation:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		case pqErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
		case pqErr.Code == codeNotNullViolation:
			return constraintFromPQ(pqErr, "required", err)
		case pqErr.Code == codeStringTruncation:
			return constraintFromPQ(pqErr, "max", err)
		case pqErr.Code == codeNumericOutOfRange:
			return constraintFromPQ(pqErr, "range", err)
		case pqErr.Code == codeCheckViolation:
			return constraintFromPQ(pqErr, "check", err)
		case pqErr.Code.Class() == "08", pqErr.Code == codeAdminShutdown, pqErr.Code == codeTooManyConnections:
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func constraintFromPQ(pqErr *pq.Error, rule string, cause error) error {
	column := pqErr.Column
	if column == "" {
		column = pqErr.Constraint
	}
	return &ConstraintError{
		Table:      pqErr.Table,
		Violations: []ColumnViolation{{Column: column, Rule: rule}},
		Err:        cause,
	}
}
