package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	placeholder func(n int) string
}

var (
	postgresDialect = dialect{placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
	sqliteDialect   = dialect{placeholder: func(int) string { return "?" }}
)

func quote(ident string) string {
	return `"` + ident + `"`
}

func (d dialect) insert(table string, rec Record) (string, []any, error) {
	cols := make([]string, 0, len(rec))
	for c := range rec {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	if err := checkQuery(table, cols); err != nil {
		return "", nil, err
	}

	if len(cols) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", quote(table)), nil, nil
	}

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
		marks[i] = d.placeholder(i + 1)
		args[i] = rec[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quote(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	return query, args, nil
}

func (d dialect) where(filters []Filter) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, len(filters))
	args := make([]any, 0, len(filters))
	for i, f := range filters {
		if f.Value == nil {
			parts[i] = quote(f.Column) + " IS NULL"
			continue
		}
		args = append(args, f.Value)
		parts[i] = quote(f.Column) + " = " + d.placeholder(len(args))
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func (d dialect) selectRows(table string, filters []Filter, order Order) (string, []any, error) {
	cols := filterColumns(filters)
	if order.Column != "" {
		cols = append(cols, order.Column)
	}
	if err := checkQuery(table, cols); err != nil {
		return "", nil, err
	}

	where, args := d.where(filters)
	query := "SELECT * FROM " + quote(table) + where
	if order.Column != "" {
		dir := "ASC"
		if order.Descending {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", quote(order.Column), dir)
		if order.Column != "id" {
			query += fmt.Sprintf(", %s %s", quote("id"), dir)
		}
	}
	return query, args, nil
}

func (d dialect) delete(table string, filters []Filter) (string, []any, error) {
	if err := checkQuery(table, filterColumns(filters)); err != nil {
		return "", nil, err
	}
	where, args := d.where(filters)
	return "DELETE FROM " + quote(table) + where + " RETURNING *", args, nil
}
