package generator

import (
	"context"
	"errors"
	"fmt"

	"db-seed/internal/fake"
	"db-seed/internal/schema"
)

var (
	// ErrPoolExhausted is returned by a unique, non-nullable reference once
	// every parent id has been handed out.
	ErrPoolExhausted = errors.New("reference pool exhausted")
	// ErrEmptyPool is returned by a non-nullable reference whose parent has no rows.
	ErrEmptyPool = errors.New("referenced entity has no rows")
)

// Reference hands out existing parent ids for a single reference field.
type Reference struct {
	src    *fake.Source
	reader IDReader
	owner  *schema.Entity
	field  *schema.Field
	pool   []any
}

// NewReference is the constructor registered for KindRef.
func NewReference(env *Env, f *schema.Field) Generator {
	return &Reference{src: env.Source, reader: env.Reader, owner: env.Owner, field: f}
}

// Prepare loads the parent ids. Unique references also drop ids the owner
// already uses and shuffle what remains, so that popping yields a random
// permutation.
func (r *Reference) Prepare(ctx context.Context) error {
	if r.field.Ref == nil {
		return fmt.Errorf("field %s has no referenced entity", r.field.Name)
	}
	ids, err := r.reader.IDs(ctx, r.field.Ref)
	if err != nil {
		return err
	}
	if !r.field.Unique {
		r.pool = ids
		return nil
	}

	used, err := r.reader.UsedIDs(ctx, r.owner, r.field.Column())
	if err != nil {
		return err
	}
	taken := make(map[any]struct{}, len(used))
	for _, id := range used {
		taken[id] = struct{}{}
	}
	r.pool = make([]any, 0, len(ids))
	for _, id := range ids {
		if _, ok := taken[id]; !ok {
			r.pool = append(r.pool, id)
		}
	}
	r.src.Shuffle(r.pool)
	return nil
}

func (r *Reference) Generate() (any, error) {
	if len(r.pool) == 0 {
		if r.field.Nullable {
			return nil, nil
		}
		if r.field.Unique {
			return nil, ErrPoolExhausted
		}
		return nil, ErrEmptyPool
	}
	if !r.field.Unique {
		return r.src.Pick(r.pool), nil
	}
	last := len(r.pool) - 1
	id := r.pool[last]
	r.pool = r.pool[:last]
	return id, nil
}

// Remaining is the number of ids a unique reference can still hand out.
func (r *Reference) Remaining() int {
	return len(r.pool)
}
