package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// SQLiteDialect reads metadata through the pragma table-valued functions
// (SQLite 3.16+). The schema argument is only consumed by the "? IS NOT NULL" guard.
type SQLiteDialect struct{}

func (d *SQLiteDialect) GetTablesQuery(schema string) string {
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND ? IS NOT NULL ORDER BY name`
}

func (d *SQLiteDialect) GetColumnsQuery(schema string) string {
	return `
SELECT
    m.name,
    p.name,
    p.type,
    p.type,
    CASE WHEN instr(p.type, '(') > 0 THEN CAST(substr(p.type, instr(p.type, '(') + 1) AS INTEGER) END,
    CASE WHEN p."notnull" = 0 AND p.pk = 0 THEN 'YES' ELSE 'NO' END,
    CASE WHEN p.pk > 0 THEN 'PRI' ELSE '' END,
    CASE WHEN p.pk = 1 AND lower(p.type) = 'integer' THEN 'auto_increment' ELSE '' END,
    (SELECT 'UNIQUE' FROM pragma_index_list(m.name) il
        JOIN pragma_index_info(il.name) ii
        WHERE il."unique" = 1 AND il.origin = 'u' AND ii.name = p.name LIMIT 1),
    NULL
FROM sqlite_master m
JOIN pragma_table_info(m.name) p
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%' AND ? IS NOT NULL
ORDER BY m.name, p.cid`
}

func (d *SQLiteDialect) GetForeignKeysQuery(schema string) string {
	return `
SELECT m.name, 'fk_' || m.name || '_' || f.id, f."from", f."table", f."to"
FROM sqlite_master m
JOIN pragma_foreign_key_list(m.name) f
WHERE m.type = 'table' AND ? IS NOT NULL`
}

// BeforeClean is a no-op: PRAGMA foreign_keys cannot change inside a
// transaction, and tables are emptied children first anyway.
func (d *SQLiteDialect) BeforeClean(tx *sql.Tx) error {
	return nil
}

func (d *SQLiteDialect) AfterClean(tx *sql.Tx) error {
	return nil
}

// CleanQueries leaves sqlite_sequence alone; it only exists once an
// AUTOINCREMENT table has been created.
func (d *SQLiteDialect) CleanQueries(table string) []string {
	return []string{fmt.Sprintf("DELETE FROM %s", table)}
}

func (d *SQLiteDialect) PlaceholderFormat() squirrel.PlaceholderFormat {
	return squirrel.Question
}

func (d *SQLiteDialect) SavepointQueries(name string) (string, string, string) {
	return standardSavepoints(name)
}

// MaxParams is SQLITE_MAX_VARIABLE_NUMBER since 3.32.
func (d *SQLiteDialect) MaxParams() int {
	return 32766
}

func (d *SQLiteDialect) MultiRowInsert() bool {
	return true
}

func (d *SQLiteDialect) NormalizeType(sqlType string) string {
	t := strings.ToLower(sqlType)
	if i := strings.Index(t, "("); i > 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

func (d *SQLiteDialect) GetSchemaName(input string) string {
	if input == "" {
		return "main"
	}
	return input
}
