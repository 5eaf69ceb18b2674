package repository

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"flashquiz-backend/internal/store"
)

const (
	TableFlashcards = "flashcards"
	TableProgress   = "progress"
	TablePDFs       = "uploaded_pdfs"
)

var (
	// ErrNotFound means the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoRows means the store accepted a write but reported no row.
	ErrNoRows = errors.New("store returned no rows")
)

// MemoryTables mirrors the SQL schema for store.NewMemory.
func MemoryTables() []store.Table {
	return []store.Table{
		{Name: TableFlashcards, TimestampColumn: "created_at"},
		{
			Name:            TableProgress,
			TimestampColumn: "attempted_at",
			References:      []store.Reference{{Column: "flashcard_id", Table: TableFlashcards}},
		},
		{Name: TablePDFs, TimestampColumn: "uploaded_at"},
	}
}

// Backends disagree on scalar types (SQLite hands back int64 for booleans
// and may return timestamps as text), so rows are decoded leniently.

func int64Field(rec store.Record, key string) (int64, error) {
	switch v := rec[key].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", key, err)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("column %s is null", key)
	default:
		return 0, fmt.Errorf("column %s: unexpected type %T", key, v)
	}
}

func optionalInt64Field(rec store.Record, key string) (*int64, error) {
	if rec[key] == nil {
		return nil, nil
	}
	n, err := int64Field(rec, key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func boolField(rec store.Record, key string) (bool, error) {
	switch v := rec[key].(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("column %s: unexpected type %T", key, v)
	}
}

func stringField(rec store.Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func optionalStringField(rec store.Record, key string) *string {
	if rec[key] == nil {
		return nil
	}
	s := stringField(rec, key)
	return &s
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func timeField(rec store.Record, key string) (time.Time, error) {
	switch v := rec[key].(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("column %s: unparseable time %q", key, v)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("column %s: unexpected type %T", key, v)
	}
}

// nullable turns a nil pointer into an untyped nil so backends store NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
