package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

type PostgresDialect struct{}

func (d *PostgresDialect) GetTablesQuery(schema string) string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = $1 AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *PostgresDialect) GetColumnsQuery(schema string) string {
	// column_default stands in for MySQL's EXTRA: serial columns show nextval(...),
	// identity columns are reported as such.
	return `SELECT 
    c.table_name, 
    c.column_name, 
    c.data_type, 
    c.udt_name, 
    c.character_maximum_length, 
    c.is_nullable, 
    (SELECT 'PRI' FROM information_schema.table_constraints tc 
     JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name 
     WHERE tc.constraint_type = 'PRIMARY KEY' 
     AND kcu.table_schema = c.table_schema AND kcu.table_name = c.table_name AND kcu.column_name = c.column_name LIMIT 1) AS COLUMN_KEY,
    CASE WHEN c.is_identity = 'YES' THEN 'identity' ELSE c.column_default END AS EXTRA, 
    (SELECT 'UNIQUE' FROM information_schema.table_constraints tc 
     JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name 
     WHERE tc.constraint_type = 'UNIQUE' 
     AND kcu.table_schema = c.table_schema AND kcu.table_name = c.table_name AND kcu.column_name = c.column_name LIMIT 1) AS IS_UNIQUE,
    col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position) AS COMMENT
FROM information_schema.columns c
WHERE c.table_schema = $1 
ORDER BY c.table_name, c.ordinal_position`
}

func (d *PostgresDialect) GetForeignKeysQuery(schema string) string {
	return `SELECT kcu.table_name, kcu.constraint_name, kcu.column_name, ccu.table_name AS referenced_table_name, ccu.column_name AS referenced_column_name FROM information_schema.key_column_usage kcu JOIN information_schema.constraint_column_usage ccu ON kcu.constraint_name = ccu.constraint_name JOIN information_schema.table_constraints tc ON kcu.constraint_name = tc.constraint_name WHERE kcu.table_schema = $1 AND tc.constraint_type = 'FOREIGN KEY'`
}

func (d *PostgresDialect) BeforeClean(tx *sql.Tx) error {
	// Only DEFERRABLE foreign keys are affected; TRUNCATE ... CASCADE covers the rest.
	_, err := tx.Exec("SET CONSTRAINTS ALL DEFERRED")
	return err
}

func (d *PostgresDialect) AfterClean(tx *sql.Tx) error {
	_, err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE")
	return err
}

func (d *PostgresDialect) CleanQueries(table string) []string {
	return []string{fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)}
}

func (d *PostgresDialect) PlaceholderFormat() squirrel.PlaceholderFormat {
	return squirrel.Dollar
}

func (d *PostgresDialect) SavepointQueries(name string) (string, string, string) {
	return standardSavepoints(name)
}

// MaxParams is the wire protocol limit on bind parameters (int16 count).
func (d *PostgresDialect) MaxParams() int {
	return 65535
}

func (d *PostgresDialect) MultiRowInsert() bool {
	return true
}

func (d *PostgresDialect) NormalizeType(sqlType string) string {
	t := strings.ToLower(sqlType)
	switch t {
	case "int4", "int2":
		return "int"
	case "int8":
		return "bigint"
	case "float4":
		return "float"
	case "float8":
		return "double"
	case "bpchar":
		return "char"
	case "varchar":
		return "varchar"
	default:
		return t
	}
}

func (d *PostgresDialect) GetSchemaName(input string) string {
	if input == "" {
		return "public"
	}
	return input
}
