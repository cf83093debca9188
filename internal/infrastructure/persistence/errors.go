package persistence

import (
	"errors"
	"strings"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorKind classifies store errors independently of the driver
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindUniqueViolation
	KindForeignKeyViolation
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUniqueViolation:
		return "unique_violation"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	default:
		return "unknown"
	}
}

// postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Classify maps a store error to an ErrorKind
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return KindUniqueViolation
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return KindForeignKeyViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return KindUniqueViolation
		case pgForeignKeyViolation:
			return KindForeignKeyViolation
		}
	}
	// sqlite and mysql fall back to message inspection
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "duplicate entry"),
		strings.Contains(msg, "duplicate key"):
		return KindUniqueViolation
	case strings.Contains(msg, "foreign key constraint"):
		return KindForeignKeyViolation
	}
	return KindUnknown
}

// translate maps a store error onto the domain taxonomy. resource names the
// entity in messages and code is the business code involved in a uniqueness
// conflict, if any. Unknown errors are returned unchanged.
func translate(err error, resource, code string) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	switch Classify(err) {
	case KindNotFound:
		return shared.NotFound(resource)
	case KindUniqueViolation:
		return shared.DuplicateCode(resource, code).WithCause(err)
	case KindForeignKeyViolation:
		return shared.InUse(resource, nil).WithCause(err)
	}
	return err
}
