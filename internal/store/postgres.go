package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store over a pgx connection pool.
type Postgres struct {
	pool    *pgxpool.Pool
	dialect dialect
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, dialect: postgresDialect}
}

func (s *Postgres) Insert(ctx context.Context, table string, rec Record) (Record, error) {
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

func (s *Postgres) Select(ctx context.Context, table string, filters []Filter, order Order) ([]Record, error) {
	query, args, err := s.dialect.selectRows(table, filters, order)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, args)
}

func (s *Postgres) Delete(ctx context.Context, table string, filters []Filter) ([]Record, error) {
	query, args, err := s.dialect.delete(table, filters)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, args)
}

// Close is a no-op: the pool belongs to whoever created it.
func (s *Postgres) Close() error {
	return nil
}

func (s *Postgres) query(ctx context.Context, query string, args []any) ([]Record, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyPgError(err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, classifyPgError(err)
	}
	out := make([]Record, len(maps))
	for i, m := range maps {
		out[i] = Record(m)
	}
	return out, nil
}

func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violation.
		if strings.HasPrefix(pgErr.Code, "23") {
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.Message)
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
