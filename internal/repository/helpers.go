package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate reports a unique-constraint conflict, such as a second
	// pending approval record for one request.
	ErrDuplicate = errors.New("duplicate")
)

// timeNow stamps updated_at columns. Tests may pin it.
var timeNow = func() time.Time { return time.Now().UTC() }

// timeLayout is fixed-width so stored timestamps compare lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// parseNullableTime parses a sql.NullString into a *time.Time.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString returns nil (SQL NULL) for a nil pointer.
func nullableTimeToString(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func checkRowsAffected(res sql.Result, what string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected for %s: %w", what, err)
	}
	return n, nil
}
