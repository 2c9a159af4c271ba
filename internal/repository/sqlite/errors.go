package sqlite

import (
	"database/sql"
	"errors"
	"strings"
)

// Error handling utilities for SQLite.

// isUniqueViolation checks if an error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// SQLite unique constraint error message
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed: UNIQUE")
}

// uniqueViolationColumn extracts the column name from a unique constraint
// error. SQLite reports the failing column as "table.column", e.g.
// "UNIQUE constraint failed: users.username".
func uniqueViolationColumn(err error) string {
	if !isUniqueViolation(err) {
		return ""
	}
	errStr := err.Error()
	idx := strings.Index(errStr, "UNIQUE constraint failed:")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(errStr[idx+len("UNIQUE constraint failed:"):])
	// Take the first "table.column" token.
	if end := strings.IndexAny(rest, ", "); end > 0 {
		rest = rest[:end]
	}
	if dot := strings.LastIndex(rest, "."); dot >= 0 {
		return rest[dot+1:]
	}
	return rest
}

// isForeignKeyViolation checks if an error is a foreign key constraint violation.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "FOREIGN KEY constraint failed")
}

// isNoRows checks if an error indicates no rows were found.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
