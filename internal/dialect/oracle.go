package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

type OracleDialect struct{}

func (d *OracleDialect) GetTablesQuery(schema string) string {
	// Oracle doesn't have a "schema" string concept in quite the same way for current user tables.
	// USER_TABLES lists tables owned by the current user.
	// We include a dummy clause to consume the schema argument if passed by standard callers.
	return `SELECT TABLE_NAME FROM USER_TABLES WHERE :1 IS NOT NULL`
}

func (d *OracleDialect) GetColumnsQuery(schema string) string {
	// Retrieves column information for the current user's tables.
	// We join with USER_CONS_COLUMNS to identify Primary Keys (P) and Unique (U) constraints.
	// We also fetch comments from USER_COL_COMMENTS.
	return `
SELECT
    t.TABLE_NAME,
    t.COLUMN_NAME,
    CASE
        WHEN t.DATA_TYPE = 'NUMBER' AND COALESCE(t.DATA_SCALE, 0) > 0 THEN 'DECIMAL'
        WHEN t.DATA_TYPE = 'NUMBER' THEN 'INTEGER'
        ELSE t.DATA_TYPE
    END,
    t.DATA_TYPE || CASE WHEN t.DATA_LENGTH IS NOT NULL THEN '(' || t.DATA_LENGTH || ')' ELSE '' END,
    COALESCE(t.DATA_PRECISION, t.DATA_LENGTH),
    t.NULLABLE,
    CASE WHEN p.CONSTRAINT_NAME IS NOT NULL THEN 'PRI' ELSE '' END,
    CASE WHEN t.IDENTITY_COLUMN = 'YES' THEN 'auto_increment' ELSE '' END,
    CASE WHEN u.CONSTRAINT_NAME IS NOT NULL THEN 'UNIQUE' ELSE '' END,
    c.COMMENTS
FROM USER_TAB_COLUMNS t
LEFT JOIN (
    SELECT cc.TABLE_NAME, cc.COLUMN_NAME, cc.CONSTRAINT_NAME
    FROM USER_CONS_COLUMNS cc
    JOIN USER_CONSTRAINTS uc ON cc.CONSTRAINT_NAME = uc.CONSTRAINT_NAME
    WHERE uc.CONSTRAINT_TYPE = 'P'
) p ON t.TABLE_NAME = p.TABLE_NAME AND t.COLUMN_NAME = p.COLUMN_NAME
LEFT JOIN (
    SELECT cc.TABLE_NAME, cc.COLUMN_NAME, cc.CONSTRAINT_NAME
    FROM USER_CONS_COLUMNS cc
    JOIN USER_CONSTRAINTS uc ON cc.CONSTRAINT_NAME = uc.CONSTRAINT_NAME
    WHERE uc.CONSTRAINT_TYPE = 'U'
) u ON t.TABLE_NAME = u.TABLE_NAME AND t.COLUMN_NAME = u.COLUMN_NAME
LEFT JOIN USER_COL_COMMENTS c ON t.TABLE_NAME = c.TABLE_NAME AND t.COLUMN_NAME = c.COLUMN_NAME
WHERE :1 IS NOT NULL
ORDER BY t.TABLE_NAME, t.COLUMN_ID`
}

func (d *OracleDialect) GetForeignKeysQuery(schema string) string {
	return `
SELECT
    c.TABLE_NAME,
    c.CONSTRAINT_NAME,
    cc.COLUMN_NAME,
    r.TABLE_NAME AS REF_TABLE,
    rcc.COLUMN_NAME AS REF_COLUMN
FROM USER_CONSTRAINTS c
JOIN USER_CONS_COLUMNS cc
    ON c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
    AND c.OWNER = cc.OWNER
JOIN USER_CONSTRAINTS r
    ON c.R_CONSTRAINT_NAME = r.CONSTRAINT_NAME
    AND c.R_OWNER = r.OWNER
JOIN USER_CONS_COLUMNS rcc
    ON r.CONSTRAINT_NAME = rcc.CONSTRAINT_NAME
    AND r.OWNER = rcc.OWNER
    AND cc.POSITION = rcc.POSITION
WHERE c.CONSTRAINT_TYPE = 'R'
AND :1 IS NOT NULL`
}

type oracleConstraint struct {
	Table string
	Name  string
}

func (d *OracleDialect) foreignKeys(tx *sql.Tx, status string) ([]oracleConstraint, error) {
	rows, err := tx.Query("SELECT TABLE_NAME, CONSTRAINT_NAME FROM USER_CONSTRAINTS WHERE CONSTRAINT_TYPE = 'R' AND STATUS = :1", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var constraints []oracleConstraint
	for rows.Next() {
		var c oracleConstraint
		if err := rows.Scan(&c.Table, &c.Name); err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}
	return constraints, rows.Err()
}

// BeforeClean disables every enabled foreign key of the current user.
// DDL commits implicitly in Oracle, so this cannot be rolled back.
func (d *OracleDialect) BeforeClean(tx *sql.Tx) error {
	constraints, err := d.foreignKeys(tx, "ENABLED")
	if err != nil {
		return err
	}
	for _, c := range constraints {
		query := fmt.Sprintf("ALTER TABLE %s DISABLE CONSTRAINT %s", c.Table, c.Name)
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to disable constraint %s on %s: %w", c.Name, c.Table, err)
		}
	}
	return nil
}

func (d *OracleDialect) AfterClean(tx *sql.Tx) error {
	constraints, err := d.foreignKeys(tx, "DISABLED")
	if err != nil {
		return err
	}
	for _, c := range constraints {
		query := fmt.Sprintf("ALTER TABLE %s ENABLE CONSTRAINT %s", c.Table, c.Name)
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to enable constraint %s on %s: %w", c.Name, c.Table, err)
		}
	}
	return nil
}

func (d *OracleDialect) CleanQueries(table string) []string {
	return []string{fmt.Sprintf("TRUNCATE TABLE %s", table)}
}

// PlaceholderFormat uses :1, :2, etc. (1-based index)
func (d *OracleDialect) PlaceholderFormat() squirrel.PlaceholderFormat {
	return squirrel.Colon
}

func (d *OracleDialect) SavepointQueries(name string) (string, string, string) {
	return fmt.Sprintf("SAVEPOINT %s", name),
		fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", name),
		""
}

func (d *OracleDialect) MaxParams() int {
	return 65535
}

// MultiRowInsert is false: INSERT ... VALUES (...), (...) needs Oracle 23c.
func (d *OracleDialect) MultiRowInsert() bool {
	return false
}

func (d *OracleDialect) NormalizeType(sqlType string) string {
	s := strings.ToLower(sqlType)
	if strings.Contains(s, "char") || strings.Contains(s, "clob") {
		return "string"
	}
	if strings.Contains(s, "int") || strings.Contains(s, "number") || strings.Contains(s, "float") {
		return "integer"
	}
	if strings.Contains(s, "date") || strings.Contains(s, "time") || strings.Contains(s, "year") {
		return "datetime"
	}
	return s
}

// GetSchemaName never returns "": Oracle treats the empty string as NULL, which would
// defeat the ":1 IS NOT NULL" guard of the metadata queries.
func (d *OracleDialect) GetSchemaName(input string) string {
	if input == "" {
		return "USER"
	}
	return input
}
