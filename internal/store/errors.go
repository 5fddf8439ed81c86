package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
)

var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrChatNotFound     = errors.New("chat not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrVersionTooNew    = errors.New("database schema is newer than this build")

	// ErrUnavailable is returned internally when the database could not be
	// opened; public operations turn it into an empty result.
	ErrUnavailable = errors.New("store unavailable")

	// Transient conditions that trigger one reopen and retry.
	ErrConnClosing         = errors.New("connection is closing")
	ErrInvalidState        = errors.New("connection is in an invalid state")
	ErrTransactionInactive = errors.New("transaction is not active")
)

// IsTransient reports whether err means the connection went stale and a
// fresh one is likely to succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	// domain errors carry caller-supplied ids, never match them on text
	for _, target := range []error{ErrChatNotFound, ErrMessageNotFound, ErrEmptyDescription, ErrInvalidTimestamp, ErrVersionTooNew} {
		if errors.Is(err, target) {
			return false
		}
	}
	for _, target := range []error{ErrConnClosing, ErrInvalidState, ErrTransactionInactive, sql.ErrConnDone, sql.ErrTxDone, driver.ErrBadConn} {
		if errors.Is(err, target) {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is closed") || strings.Contains(msg, "connection is closing")
}
