package db

import "strings"

// IsUniqueViolation reports whether err is a unique constraint violation.
// With a constraint name it matches that specific index; without one it falls
// back to the generic Postgres and sqlite phrasings.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	if strings.Contains(msg, "duplicate key value") {
		return true
	}
	return strings.Contains(msg, "UNIQUE constraint failed")
}
