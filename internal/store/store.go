// Package store defines the narrow table contract the rest of the backend
// depends on, together with the concrete backends that satisfy it.
//
// A Store only knows about tables, records, equality filters and a single
// sort column. Identifiers and creation timestamps are assigned by the
// backend. Empty results are never errors: callers decide what absence means.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrUnavailable wraps connection and transport failures.
	ErrUnavailable = errors.New("store unavailable")
	// ErrConstraint wraps integrity violations reported by the backend
	// (foreign keys, NOT NULL, CHECK).
	ErrConstraint = errors.New("store constraint violation")
	// ErrInvalidQuery is returned for malformed table or column names.
	ErrInvalidQuery = errors.New("invalid store query")
)

// Record is one row, keyed by column name.
type Record map[string]any

// Filter is an equality predicate on one column.
type Filter struct {
	Column string
	Value  any
}

// Eq is shorthand for Filter{Column: column, Value: value}.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Order sorts a selection by one column. The zero value leaves the order to
// the backend. Rows with equal sort keys are ordered by "id" in the same
// direction.
type Order struct {
	Column     string
	Descending bool
}

// Asc and Desc build an Order.
func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Descending: true} }

type Store interface {
	// Insert writes rec into table and returns the stored row including
	// backend-assigned columns. A nil record with a nil error means the
	// backend accepted the call but wrote nothing.
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	// Select returns every row of table matching all filters.
	Select(ctx context.Context, table string, filters []Filter, order Order) ([]Record, error)
	// Delete removes every row matching all filters and returns the removed
	// rows. Cascades configured on the table are applied by the backend.
	Delete(ctx context.Context, table string, filters []Filter) ([]Record, error)
	Close() error
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: bad identifier %q", ErrInvalidQuery, name)
	}
	return nil
}

func checkQuery(table string, columns []string) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	for _, c := range columns {
		if err := checkIdent(c); err != nil {
			return err
		}
	}
	return nil
}

func filterColumns(filters []Filter) []string {
	cols := make([]string, len(filters))
	for i, f := range filters {
		cols[i] = f.Column
	}
	return cols
}
