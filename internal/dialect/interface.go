package dialect

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
)

// Dialect abstracts database-specific operations.
type Dialect interface {
	// Metadata Queries (Schema Introspection)
	GetTablesQuery(schema string) string
	GetColumnsQuery(schema string) string
	GetForeignKeysQuery(schema string) string

	// Execution Hooks around cleaning
	BeforeClean(tx *sql.Tx) error
	AfterClean(tx *sql.Tx) error

	// Query Generation
	CleanQueries(table string) []string
	PlaceholderFormat() squirrel.PlaceholderFormat
	// SavepointQueries returns the statements to set, roll back to and release
	// a savepoint. An empty release means the dialect has none.
	SavepointQueries(name string) (save, rollback, release string)
	// MaxParams caps bound parameters per statement.
	MaxParams() int
	MultiRowInsert() bool

	// Helpers
	NormalizeType(sqlType string) string
	GetSchemaName(input string) string
}
