package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Table describes how the in-memory backend should treat one table.
type Table struct {
	Name string
	// TimestampColumn is filled with the insertion time when absent.
	TimestampColumn string
	// References are foreign keys from this table; deleting the referenced
	// row cascades to this table.
	References []Reference
}

type Reference struct {
	Column string
	Table  string
}

// Memory is a process-local Store used for tests and demos. It assigns
// integer ids, stamps creation time, enforces declared foreign keys and
// applies ON DELETE CASCADE.
type Memory struct {
	mu     sync.Mutex
	tables map[string]Table
	rows   map[string][]Record
	nextID map[string]int64
	now    func() time.Time
}

func NewMemory(tables ...Table) *Memory {
	m := &Memory{
		tables: make(map[string]Table, len(tables)),
		rows:   make(map[string][]Record, len(tables)),
		nextID: make(map[string]int64, len(tables)),
		now:    time.Now,
	}
	for _, t := range tables {
		m.tables[t.Name] = t
	}
	return m
}

// WithClock replaces the timestamp source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) table(name string) (Table, error) {
	t, ok := m.tables[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: unknown table %q", ErrInvalidQuery, name)
	}
	return t, nil
}

func (m *Memory) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.table(table)
	if err != nil {
		return nil, err
	}

	for _, ref := range t.References {
		v, ok := rec[ref.Column]
		if !ok || v == nil {
			continue
		}
		if len(m.match(ref.Table, []Filter{Eq("id", v)})) == 0 {
			return nil, fmt.Errorf("%w: %s.%s references missing %s row", ErrConstraint, table, ref.Column, ref.Table)
		}
	}

	m.nextID[table]++
	row := rec.clone()
	row["id"] = m.nextID[table]
	if t.TimestampColumn != "" {
		if _, ok := row[t.TimestampColumn]; !ok {
			row[t.TimestampColumn] = m.now().UTC()
		}
	}
	m.rows[table] = append(m.rows[table], row)
	return row.clone(), nil
}

func (m *Memory) Select(ctx context.Context, table string, filters []Filter, order Order) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.table(table); err != nil {
		return nil, err
	}

	matched := m.match(table, filters)
	out := make([]Record, len(matched))
	for i, idx := range matched {
		out[i] = m.rows[table][idx].clone()
	}

	if order.Column != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i][order.Column], out[j][order.Column])
			if c == 0 {
				c = compareValues(out[i]["id"], out[j]["id"])
			}
			if order.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, table string, filters []Filter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.table(table); err != nil {
		return nil, err
	}
	return m.deleteLocked(table, filters), nil
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) deleteLocked(table string, filters []Filter) []Record {
	matched := m.match(table, filters)
	if len(matched) == 0 {
		return nil
	}

	removed := make([]Record, 0, len(matched))
	drop := make(map[int]bool, len(matched))
	for _, idx := range matched {
		drop[idx] = true
		removed = append(removed, m.rows[table][idx].clone())
	}

	kept := m.rows[table][:0:0]
	for i, r := range m.rows[table] {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	m.rows[table] = kept

	for _, child := range m.tables {
		for _, ref := range child.References {
			if ref.Table != table {
				continue
			}
			for _, r := range removed {
				m.deleteLocked(child.Name, []Filter{Eq(ref.Column, r["id"])})
			}
		}
	}
	return removed
}

func (m *Memory) match(table string, filters []Filter) []int {
	var out []int
	for i, r := range m.rows[table] {
		ok := true
		for _, f := range filters {
			if compareValues(r[f.Column], f.Value) != 0 {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// compareValues orders the scalar types the backends hand out. Integers of
// any width compare numerically; mismatched kinds compare by their printed
// form.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if ai, ok := toInt64(a); ok {
		if bi, ok := toInt64(b); ok {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
	}

	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}

	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case *int64:
		if n == nil {
			return 0, false
		}
		return *n, true
	}
	return 0, false
}
