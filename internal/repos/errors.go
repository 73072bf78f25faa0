package repos

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"stockledger/internal/domain"
)

func sqliteCode(err error) int {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()
	}
	return 0
}

// isUniqueViolation reports a UNIQUE constraint failure. The message check
// covers drivers that do not report extended codes.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	code := sqliteCode(err)
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	code := sqliteCode(err)
	return code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	code := sqliteCode(err)
	return code == sqlite3.SQLITE_CONSTRAINT_CHECK ||
		strings.Contains(err.Error(), "CHECK constraint failed")
}

// storeErr classifies an unexpected driver error as ErrStoreUnavailable.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
