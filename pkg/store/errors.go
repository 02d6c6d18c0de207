package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"barter/pkg/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// classify turns driver errors into the models constraint kinds so callers
// can match them with errors.Is regardless of the backing database.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var ce *models.ConstraintError
	if errors.As(err, &ce) || errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if kind := postgresKind(pgErr.Code); kind != nil {
			constraint := pgErr.ConstraintName
			if constraint == "" {
				constraint = pgErr.ColumnName
			}
			return &models.ConstraintError{Kind: kind, Table: pgErr.TableName, Constraint: constraint, Err: err}
		}
		return err
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		if kind := sqliteKind(sqErr.ExtendedCode, sqErr.Error()); kind != nil {
			table, constraint := sqliteDetail(sqErr.Error())
			return &models.ConstraintError{Kind: kind, Table: table, Constraint: constraint, Err: err}
		}
	}
	return err
}

func postgresKind(code string) error {
	switch code {
	case "23505":
		return models.ErrUniqueViolation
	case "23503", "23001":
		return models.ErrForeignKeyViolation
	case "23514", "22001":
		return models.ErrCheckViolation
	case "23502":
		return models.ErrNotNullViolation
	}
	return nil
}

// sqliteKind maps an extended result code. ON DELETE RESTRICT is enforced
// through a trigger, so a foreign key failure can also arrive as
// ErrConstraintTrigger; the message tells it apart from a RAISE.
func sqliteKind(code sqlite3.ErrNoExtended, msg string) error {
	switch code {
	case sqlite3.ErrConstraintTrigger:
		if strings.Contains(msg, "FOREIGN KEY constraint failed") {
			return models.ErrForeignKeyViolation
		}
		return nil
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return models.ErrUniqueViolation
	case sqlite3.ErrConstraintForeignKey:
		return models.ErrForeignKeyViolation
	case sqlite3.ErrConstraintCheck:
		return models.ErrCheckViolation
	case sqlite3.ErrConstraintNotNull:
		return models.ErrNotNullViolation
	}
	return nil
}

// sqliteDetail splits "UNIQUE constraint failed: companies.email" into its
// table and column. Check failures carry only the constraint name.
func sqliteDetail(msg string) (table, constraint string) {
	_, detail, ok := strings.Cut(msg, "failed: ")
	if !ok {
		return "", ""
	}
	detail = strings.TrimSpace(detail)
	if t, c, ok := strings.Cut(detail, "."); ok && !strings.Contains(t, " ") {
		return t, c
	}
	return "", detail
}

// IsStorageFailure reports whether err came from the database itself rather
// than from the data: constraint violations, missing rows and cancellations
// are not storage failures.
func IsStorageFailure(err error) bool {
	if err == nil {
		return false
	}
	return !models.IsConstraintViolation(err) &&
		!errors.Is(err, ErrNotFound) &&
		!errors.Is(err, context.Canceled)
}
