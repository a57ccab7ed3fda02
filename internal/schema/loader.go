package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileSchema struct {
	Entities []fileEntity `yaml:"entities"`
}

type fileEntity struct {
	Name   string      `yaml:"name"`
	Table  string      `yaml:"table"`
	Fields []fileField `yaml:"fields"`
	Seed   *fileSeed   `yaml:"seed"`
}

type fileField struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	Nullable   bool   `yaml:"nullable"`
	Unique     bool   `yaml:"unique"`
	PrimaryKey bool   `yaml:"primary_key"`
	MaxLength  int    `yaml:"max_length"`
	Ref        string `yaml:"ref"`
	Column     string `yaml:"column"`
}

type fileSeed struct {
	Count  int                 `yaml:"count"`
	Fields map[string]Override `yaml:"fields"`
}

// LoadFile reads a YAML schema file.
func LoadFile(path string) ([]*Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	entities, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entities, nil
}

// Parse builds entities from a YAML schema document. References are resolved
// by entity name, so an entity may reference one declared after it.
func Parse(data []byte) ([]*Entity, error) {
	var doc fileSchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	byName := make(map[string]*Entity)
	entities := make([]*Entity, 0, len(doc.Entities))
	for _, fe := range doc.Entities {
		if fe.Name == "" {
			return nil, fmt.Errorf("entity without a name")
		}
		key := strings.ToLower(fe.Name)
		if _, dup := byName[key]; dup {
			return nil, fmt.Errorf("entity %s declared twice", fe.Name)
		}
		e := &Entity{Name: fe.Name, Table: fe.Table}
		byName[key] = e
		entities = append(entities, e)
	}

	for i, fe := range doc.Entities {
		e := entities[i]
		for _, ff := range fe.Fields {
			f, err := buildField(ff, byName)
			if err != nil {
				return nil, fmt.Errorf("entity %s: %w", e.Name, err)
			}
			e.Fields = append(e.Fields, f)
		}

		if fe.Seed == nil {
			continue
		}
		overrides, err := resolveOverrides(e, fe.Seed.Fields)
		if err != nil {
			return nil, err
		}
		e.Seed = &SeedConfig{Count: fe.Seed.Count, Overrides: overrides}
	}
	return entities, nil
}

// resolveOverrides keys overrides by the name of the field they match, so the
// seeder never has to guess between spellings.
func resolveOverrides(e *Entity, byKey map[string]Override) (map[string]Override, error) {
	overrides := make(map[string]Override, len(byKey))
	claimed := make(map[string]string, len(byKey))
	for key, o := range byKey {
		f := e.Field(key)
		if f == nil {
			return nil, fmt.Errorf("entity %s: override for unknown field %q", e.Name, key)
		}
		if prev, dup := claimed[f.Name]; dup {
			a, b := min(prev, key), max(prev, key)
			return nil, fmt.Errorf("entity %s: overrides %q and %q both name field %s", e.Name, a, b, f.Name)
		}
		claimed[f.Name] = key
		overrides[f.Name] = o
	}
	return overrides, nil
}

func buildField(ff fileField, byName map[string]*Entity) (*Field, error) {
	if ff.Name == "" {
		return nil, fmt.Errorf("field without a name")
	}
	kind, _ := ParseKind(ff.Kind)
	f := &Field{
		Name:       ff.Name,
		Kind:       kind,
		Nullable:   ff.Nullable,
		Unique:     ff.Unique || impliesUnique(ff.Kind),
		PrimaryKey: ff.PrimaryKey,
		MaxLength:  ff.MaxLength,
		DBColumn:   ff.Column,
	}
	if kind.IsReference() {
		if ff.Ref == "" {
			return nil, fmt.Errorf("field %s: %s field needs a ref", ff.Name, kind)
		}
		ref, ok := byName[strings.ToLower(ff.Ref)]
		if !ok {
			return nil, fmt.Errorf("field %s: unknown ref %q", ff.Name, ff.Ref)
		}
		f.Ref = ref
	}
	return f, nil
}
