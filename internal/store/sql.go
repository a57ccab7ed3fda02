package store

import (
	"context"
	"database/sql"
	"fmt"

	"db-seed/internal/dialect"
	"db-seed/internal/schema"

	"github.com/Masterminds/squirrel"
)

// maxRowsPerStatement is the row-value limit of SQL Server's VALUES clause,
// applied to every dialect to keep statements moderate.
const maxRowsPerStatement = 1000

// Runner is satisfied by both *sql.DB and *sql.Tx.
type Runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore reads parent ids and writes generated batches through database/sql.
type SQLStore struct {
	db  Runner
	tx  *sql.Tx
	d   dialect.Dialect
	qb  squirrel.StatementBuilderType
	seq int
}

func New(db Runner, d dialect.Dialect) *SQLStore {
	return &SQLStore{
		db: db,
		d:  d,
		qb: squirrel.StatementBuilder.PlaceholderFormat(d.PlaceholderFormat()),
	}
}

// RunInTx runs fn against a store bound to a single transaction. The
// transaction is committed only when fn succeeds.
func RunInTx(ctx context.Context, db *sql.DB, d dialect.Dialect, fn func(s *SQLStore) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	s := New(tx, d)
	s.tx = tx
	if err := fn(s); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IDs returns every primary key value of e.
func (s *SQLStore) IDs(ctx context.Context, e *schema.Entity) ([]any, error) {
	query, args, err := s.qb.Select(e.PrimaryKey()).From(e.TableName()).ToSql()
	if err != nil {
		return nil, err
	}
	ids, err := s.column(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to read ids of %s: %w", e.TableName(), err)
	}
	return ids, nil
}

// UsedIDs returns the distinct non-null values stored in column of e.
func (s *SQLStore) UsedIDs(ctx context.Context, e *schema.Entity, column string) ([]any, error) {
	query, args, err := s.qb.Select(column).Distinct().
		From(e.TableName()).
		Where(squirrel.NotEq{column: nil}).
		ToSql()
	if err != nil {
		return nil, err
	}
	ids, err := s.column(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", e.TableName(), column, err)
	}
	return ids, nil
}

func (s *SQLStore) column(ctx context.Context, query string, args []any) ([]any, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, normalizeID(v))
	}
	return values, rows.Err()
}

// normalizeID turns driver byte slices (MySQL without column types) into
// strings so ids can key maps.
func normalizeID(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Tx returns the transaction bound by RunInTx, or nil.
func (s *SQLStore) Tx() *sql.Tx {
	return s.tx
}

// Savepoint runs fn inside a savepoint named after prefix. When fn fails the
// work is rolled back to the savepoint and the surrounding transaction stays
// usable, which Postgres otherwise refuses after any failed statement.
func (s *SQLStore) Savepoint(ctx context.Context, prefix string, fn func() error) error {
	s.seq++
	save, rollback, release := s.d.SavepointQueries(fmt.Sprintf("%s_%d", prefix, s.seq))
	if _, err := s.db.ExecContext(ctx, save); err != nil {
		return fmt.Errorf("failed to set savepoint: %w", err)
	}

	if err := fn(); err != nil {
		if _, rbErr := s.db.ExecContext(ctx, rollback); rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint failed: %v)", err, rbErr)
		}
		return err
	}

	if release != "" {
		if _, err := s.db.ExecContext(ctx, release); err != nil {
			return fmt.Errorf("failed to release savepoint: %w", err)
		}
	}
	return nil
}

// WriteBatch inserts records inside a savepoint, so a failed batch leaves the
// surrounding transaction usable.
func (s *SQLStore) WriteBatch(ctx context.Context, e *schema.Entity, records []*schema.Record) error {
	if len(records) == 0 {
		return nil
	}
	return s.Savepoint(ctx, "seed_batch", func() error {
		return s.insert(ctx, e, records)
	})
}

func (s *SQLStore) insert(ctx context.Context, e *schema.Entity, records []*schema.Record) error {
	for _, group := range groupByColumns(records) {
		cols := group[0].Keys()
		if len(cols) == 0 {
			return fmt.Errorf("%d records of %s have no values to insert", len(group), e.Name)
		}

		per := s.rowsPerStatement(len(cols))
		for start := 0; start < len(group); start += per {
			end := min(start+per, len(group))

			ib := s.qb.Insert(e.TableName()).Columns(cols...)
			for _, r := range group[start:end] {
				ib = ib.Values(r.Values()...)
			}
			query, args, err := ib.ToSql()
			if err != nil {
				return err
			}
			if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert into %s failed: %w", e.TableName(), err)
			}
		}
	}
	return nil
}

func (s *SQLStore) rowsPerStatement(cols int) int {
	if !s.d.MultiRowInsert() {
		return 1
	}
	n := s.d.MaxParams() / cols
	if n > maxRowsPerStatement {
		n = maxRowsPerStatement
	}
	if n < 1 {
		n = 1
	}
	return n
}

// groupByColumns splits records by column set, keeping first-seen order.
// Records only differ when a field was omitted after a generation failure.
func groupByColumns(records []*schema.Record) [][]*schema.Record {
	index := make(map[string]int)
	var groups [][]*schema.Record
	for _, r := range records {
		sig := r.Signature()
		i, ok := index[sig]
		if !ok {
			i = len(groups)
			index[sig] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

// Count returns the current row count of e.
func (s *SQLStore) Count(ctx context.Context, e *schema.Entity) (int, error) {
	query, args, err := s.qb.Select("COUNT(*)").From(e.TableName()).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", e.TableName(), err)
	}
	return n, nil
}

// Clean empties the table of e.
func (s *SQLStore) Clean(ctx context.Context, e *schema.Entity) error {
	for _, q := range s.d.CleanQueries(e.TableName()) {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to clean %s: %w", e.TableName(), err)
		}
	}
	return nil
}
