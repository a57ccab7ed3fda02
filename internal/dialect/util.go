package dialect

import (
	"fmt"
	"strings"
)

// DefaultNormalizeType is a default implementation for type normalization (lowercase).
func DefaultNormalizeType(sqlType string) string {
	return strings.ToLower(sqlType)
}

// DefaultGetSchemaName is a default implementation for Getting Schema Name (identity).
func DefaultGetSchemaName(input string) string {
	return input
}

// standardSavepoints is the SQL:1999 savepoint syntax shared by most engines.
func standardSavepoints(name string) (string, string, string) {
	return fmt.Sprintf("SAVEPOINT %s", name),
		fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", name),
		fmt.Sprintf("RELEASE SAVEPOINT %s", name)
}
