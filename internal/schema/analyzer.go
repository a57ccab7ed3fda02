package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"db-seed/internal/dialect"
)

// ---------------------------------------------------------------------
// Database introspection
// ---------------------------------------------------------------------

// Analyze builds entities from the live schema: tables, columns and foreign keys
// are read through the dialect's metadata queries. The returned entities carry no
// SeedConfig; the caller decides which ones to seed.
func Analyze(ctx context.Context, db *sql.DB, d dialect.Dialect, schemaName string) ([]*Entity, error) {
	target := d.GetSchemaName(schemaName)

	// normalized (UPPERCASE) keys so Oracle's casing still matches
	byTable := make(map[string]*Entity)
	var entities []*Entity

	// --- Step 1: Tables ---
	rows, err := db.QueryContext(ctx, d.GetTablesQuery(target), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		e := &Entity{Name: name, Table: name}
		byTable[strings.ToUpper(name)] = e
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	// --- Step 2: Columns ---
	colRows, err := db.QueryContext(ctx, d.GetColumnsQuery(target), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer colRows.Close()

	for colRows.Next() {
		var tName, cName, dType, cType, isNull, cKey, extra, isUnique, comment sql.NullString
		var cLen sql.NullString

		if err := colRows.Scan(&tName, &cName, &dType, &cType, &cLen, &isNull, &cKey, &extra, &isUnique, &comment); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", tName.String, err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}

		e, ok := byTable[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}

		isPK := strings.Contains(cKey.String, "PRI") || strings.Contains(cKey.String, "PRIMARY")

		isAutoInc := false
		if extra.Valid {
			extraLower := strings.ToLower(extra.String)
			isAutoInc = strings.Contains(extraLower, "auto_increment") ||
				strings.Contains(extraLower, "identity") ||
				strings.Contains(extraLower, "nextval")
		}

		f := &Field{
			Name:     cName.String,
			Nullable: isNull.String == "YES" || isNull.String == "Y",
			Unique:   isUnique.Valid && strings.Contains(isUnique.String, "UNIQUE"),
			Comment:  comment.String,
		}
		f.MaxLength = parseLength(cLen)
		f.Kind = columnKind(d.NormalizeType(dType.String), f.Name, f.Comment, f.MaxLength)

		if isPK {
			// Generated identities are left to the store; other keys must be
			// written like any unique column.
			if isAutoInc {
				f.PrimaryKey = true
			} else {
				f.Unique = true
				if e.Key == "" {
					e.Key = f.Name
				}
			}
		}
		e.Fields = append(e.Fields, f)
	}
	if err := colRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	// --- Step 3: Foreign Keys ---
	fkRows, err := db.QueryContext(ctx, d.GetForeignKeysQuery(target), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var tName, cConst, cName, rTable, rCol sql.NullString
		if err := fkRows.Scan(&tName, &cConst, &cName, &rTable, &rCol); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		if !tName.Valid || !rTable.Valid {
			continue
		}

		e, ok := byTable[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}
		// references outside the analyzed schema cannot be served
		ref, ok := byTable[strings.ToUpper(rTable.String)]
		if !ok {
			continue
		}
		f := e.Field(cName.String)
		if f == nil || f.PrimaryKey {
			continue
		}
		f.Kind = KindRef
		f.Ref = ref
		f.DBColumn = f.Name
	}
	if err := fkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys: %w", err)
	}

	return entities, nil
}

func parseLength(cLen sql.NullString) int {
	if !cLen.Valid || cLen.String == "" {
		return 0
	}
	var length int
	if _, err := fmt.Sscanf(cLen.String, "%d", &length); err == nil {
		if length < 0 { // nvarchar(max)
			return 0
		}
		return length
	}
	var fLength float64
	if _, err := fmt.Sscanf(cLen.String, "%f", &fLength); err == nil {
		return int(fLength)
	}
	return 0
}

// columnKind maps a normalized SQL type, refined by what the column name and
// comment suggest, to a field kind.
func columnKind(dataType, colName, comment string, length int) Kind {
	t := strings.ToLower(dataType)

	switch {
	case strings.Contains(t, "bool") || t == "bit":
		return KindBool
	case strings.Contains(t, "uuid") || t == "uniqueidentifier":
		return KindUUID
	case t == "inet" || t == "cidr":
		return KindIP
	case t == "date":
		return KindDate
	case strings.Contains(t, "date") || strings.Contains(t, "time"):
		return KindDateTime
	case strings.Contains(t, "decimal") || strings.Contains(t, "numeric") || strings.Contains(t, "money"):
		return KindDecimal
	case strings.Contains(t, "float") || strings.Contains(t, "double") || t == "real":
		return KindFloat
	case strings.Contains(t, "int"):
		return KindInteger
	case strings.Contains(t, "char") || strings.Contains(t, "text") ||
		strings.Contains(t, "string") || strings.Contains(t, "clob"):
		if k := KindFromMeaning(AnalyzeMeaning(colName, comment)); k != KindUnknown {
			return k
		}
		if strings.Contains(t, "text") || strings.Contains(t, "clob") || length == 0 || length > 255 {
			return KindText
		}
		return KindString
	}
	return KindUnknown
}
