package schema

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// Entity describes one record type and, when SeedConfig is set, how many
// rows of it to generate.
type Entity struct {
	Name   string
	Table  string // defaults to the underscored Name
	Key    string // identity column when no field is a generated primary key
	Fields []*Field
	Seed   *SeedConfig
}

type Field struct {
	Name       string
	Kind       Kind
	Nullable   bool
	Unique     bool
	PrimaryKey bool
	MaxLength  int
	Ref        *Entity // referenced entity for reference kinds
	DBColumn   string  // explicit storage column, overrides the derived one
	Comment    string
}

// SeedConfig is the per-entity generation request.
type SeedConfig struct {
	Count     int
	Overrides map[string]Override // keyed by field name
}

// TableName returns the storage table of the entity.
func (e *Entity) TableName() string {
	if e.Table != "" {
		return e.Table
	}
	return inflect.Underscore(e.Name)
}

// PrimaryKey returns the identity column, "id" when nothing says otherwise.
func (e *Entity) PrimaryKey() string {
	if e.Key != "" {
		return e.Key
	}
	for _, f := range e.Fields {
		if f.PrimaryKey {
			return f.Column()
		}
	}
	return "id"
}

func (e *Entity) Seeded() bool {
	return e.Seed != nil
}

// Field looks a field up by name, case-insensitively.
func (e *Entity) Field(name string) *Field {
	for _, f := range e.Fields {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// Column is the storage key generated values are written under. Single references
// target the raw parent id column ("<name>_id") rather than an object slot.
func (f *Field) Column() string {
	if f.DBColumn != "" {
		return f.DBColumn
	}
	if f.Kind == KindRef {
		return f.Name + "_id"
	}
	return f.Name
}
