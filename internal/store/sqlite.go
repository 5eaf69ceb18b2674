package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite is a Store over a database/sql handle opened with the modernc
// driver. Foreign keys must be enabled on the handle for cascades to apply.
type SQLite struct {
	db      *sql.DB
	dialect dialect
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, dialect: sqliteDialect}
}

func (s *SQLite) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	query, args, err := s.dialect.insert(table, rec)
	if err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *SQLite) Select(ctx context.Context, table string, filters []Filter, order Order) ([]Record, error) {
	query, args, err := s.dialect.selectRows(table, filters, order)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, args)
}

func (s *SQLite) Delete(ctx context.Context, table string, filters []Filter) ([]Record, error) {
	query, args, err := s.dialect.delete(table, filters)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, args)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) query(ctx context.Context, query string, args []any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifySQLiteError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, classifySQLiteError(err)
	}

	var out []Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classifySQLiteError(err)
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			rec[c] = values[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySQLiteError(err)
	}
	return out, nil
}

func classifySQLiteError(err error) error {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		if sqErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return fmt.Errorf("%w: %s", ErrConstraint, sqErr.Error())
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
