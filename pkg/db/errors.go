package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. The message check covers the postgres wording and the
// sqlite wording used in tests.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
