package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/jwalitptl/ehr-api/internal/repository"
)

// Postgres SQLSTATE codes mapped to repository sentinels
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

var errNotFound = repository.ErrNotFound

// translate maps driver errors onto repository sentinels, keeping the
// constraint detail in the message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s", repository.ErrForeignKey, pqErr.Constraint)
		}
	}
	return err
}

// escapeLike escapes LIKE metacharacters so the term matches literally
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
