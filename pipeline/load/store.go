package load

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Store is the destination database, reduced to the per-table
// primitives the loader needs.
type Store interface {
	Insert(ctx context.Context, table string, columns []string, rows [][]any) error
	Upsert(ctx context.Context, table string, columns []string, conflictColumns []string, rows [][]any) error
	DeleteAll(ctx context.Context, table string) error
	Count(ctx context.Context, table string) (int, error)
}

// Placeholder renders the parameter marker for a 1-based argument
// position. Postgres wants $1, sqlite and libsql take ?.
type Placeholder func(position int) string

func DollarPlaceholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func QuestionPlaceholder(int) string {
	return "?"
}

// SQLStore implements Store over database/sql. Its SQL is limited to
// multi-row INSERT ... ON CONFLICT, which Postgres, sqlite and libsql
// all share.
type SQLStore struct {
	db          *sql.DB
	placeholder Placeholder
}

func NewPostgresStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, placeholder: DollarPlaceholder}
}

func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, placeholder: QuestionPlaceholder}
}

func (s *SQLStore) Insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	return s.insert(ctx, table, columns, nil, rows)
}

func (s *SQLStore) Upsert(ctx context.Context, table string, columns []string, conflictColumns []string, rows [][]any) error {
	return s.insert(ctx, table, columns, conflictColumns, rows)
}

func (s *SQLStore) insert(ctx context.Context, table string, columns []string, conflictColumns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	var query strings.Builder
	fmt.Fprintf(&query, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	position := 1
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("table %s: row %d has %d values for %d columns", table, i, len(row), len(columns))
		}
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(")
		for j := range row {
			if j > 0 {
				query.WriteString(", ")
			}
			query.WriteString(s.placeholder(position))
			position++
		}
		query.WriteString(")")
		args = append(args, row...)
	}

	if len(conflictColumns) > 0 {
		conflict := map[string]bool{}
		for _, c := range conflictColumns {
			conflict[c] = true
		}
		var updates []string
		for _, c := range columns {
			if conflict[c] {
				continue
			}
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
		}
		if len(updates) == 0 {
			// Every column is part of the key: nothing to update.
			fmt.Fprintf(&query, " ON CONFLICT (%s) DO NOTHING", strings.Join(conflictColumns, ", "))
		} else {
			fmt.Fprintf(&query, " ON CONFLICT (%s) DO UPDATE SET %s",
				strings.Join(conflictColumns, ", "), strings.Join(updates, ", "))
		}
	}

	_, err := s.db.ExecContext(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("writing %d rows to %s: %w", len(rows), table, err)
	}
	return nil
}

func (s *SQLStore) DeleteAll(ctx context.Context, table string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+table)
	if err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	return nil
}

func (s *SQLStore) Count(ctx context.Context, table string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return count, nil
}
