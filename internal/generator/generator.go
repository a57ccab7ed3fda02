package generator

import (
	"context"
	"time"

	"db-seed/internal/fake"
	"db-seed/internal/schema"
)

// Generator produces values for one field. Prepare is called once before the
// first Generate.
type Generator interface {
	Prepare(ctx context.Context) error
	Generate() (any, error)
}

// IDReader is the read side of the store used by reference generators.
type IDReader interface {
	// IDs returns every identity value currently stored for e.
	IDs(ctx context.Context, e *schema.Entity) ([]any, error)
	// UsedIDs returns the distinct non-null values of column on e.
	UsedIDs(ctx context.Context, e *schema.Entity, column string) ([]any, error)
}

// Env is what a constructor may draw on besides the field itself.
type Env struct {
	Source   *fake.Source
	Reader   IDReader
	Owner    *schema.Entity
	UseTZ    bool
	Location *time.Location
}

func (env *Env) location() *time.Location {
	if env.Location == nil {
		return time.UTC
	}
	return env.Location
}

// Constructor builds the generator for one field.
type Constructor func(env *Env, f *schema.Field) Generator

// Registry maps field kinds to constructors.
type Registry struct {
	constructors map[schema.Kind]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[schema.Kind]Constructor)}
}

// DefaultRegistry knows every built-in kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(schema.KindBool, newBool)
	r.Register(schema.KindString, newString)
	r.Register(schema.KindText, newText)
	r.Register(schema.KindDate, newDate)
	r.Register(schema.KindDateTime, newDateTime)
	r.Register(schema.KindDecimal, newDecimal)
	r.Register(schema.KindFloat, newFloat)
	r.Register(schema.KindInteger, newInteger)
	r.Register(schema.KindEmail, newEmail)
	r.Register(schema.KindURL, newURL)
	r.Register(schema.KindUUID, newUUID)
	r.Register(schema.KindIP, newIP)
	r.Register(schema.KindSlug, newSlug)
	r.Register(schema.KindRef, NewReference)
	r.Register(schema.KindManyToMany, newNone)
	return r
}

// Register sets the constructor for kind, replacing any earlier one.
func (r *Registry) Register(kind schema.Kind, c Constructor) {
	r.constructors[kind] = c
}

// New builds the generator for f. It returns false when the kind is unknown.
func (r *Registry) New(env *Env, f *schema.Field) (Generator, bool) {
	c, ok := r.constructors[f.Kind]
	if !ok {
		return nil, false
	}
	return c(env, f), true
}
