package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"db-seed/internal/fake"
	"db-seed/internal/generator"
	"db-seed/internal/schema"
)

// DefaultBatchSize is the number of records handed to the writer at once.
const DefaultBatchSize = 2000

// Writer persists generated records.
type Writer interface {
	WriteBatch(ctx context.Context, e *schema.Entity, records []*schema.Record) error
}

// Seeder generates records for entities in dependency order and hands them to
// a Writer in batches.
type Seeder struct {
	reader    generator.IDReader
	writer    Writer
	src       *fake.Source
	registry  *generator.Registry
	reporter  Reporter
	batchSize int
	strict    bool
	useTZ     bool
	location  *time.Location
}

type Option func(*Seeder)

// WithBatchSize sets the batch size. Values below 1 keep the default.
func WithBatchSize(n int) Option {
	return func(s *Seeder) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithStrict makes the first field or batch failure abort the run.
func WithStrict(strict bool) Option {
	return func(s *Seeder) { s.strict = strict }
}

func WithRegistry(r *generator.Registry) Option {
	return func(s *Seeder) { s.registry = r }
}

func WithReporter(r Reporter) Option {
	return func(s *Seeder) { s.reporter = r }
}

// WithTimeZone makes date-time values zone-aware in loc. A nil loc keeps naive
// timestamps.
func WithTimeZone(loc *time.Location) Option {
	return func(s *Seeder) {
		s.useTZ = loc != nil
		s.location = loc
	}
}

func New(reader generator.IDReader, writer Writer, src *fake.Source, opts ...Option) *Seeder {
	s := &Seeder{
		reader:    reader,
		writer:    writer,
		src:       src,
		registry:  generator.DefaultRegistry(),
		reporter:  NewLogReporter(io.Discard),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run seeds every entity carrying a SeedConfig. Parents are fully written before
// their children are generated. The returned results cover the entities
// processed so far, also when an error stops the run.
func (s *Seeder) Run(ctx context.Context, entities []*schema.Entity) ([]Result, error) {
	start := time.Now()
	order := schema.Resolve(entities)

	for _, c := range order.Cycles {
		s.reporter.CycleDetected(c)
		if s.strict && !c.Breakable() {
			return nil, fmt.Errorf("%w: %s", ErrCycle, c)
		}
	}

	results := make([]Result, 0, len(order.Entities))
	for _, e := range order.Entities {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.processEntity(ctx, e)
		results = append(results, res)
		s.reporter.EntityDone(res)
		if err != nil {
			return results, err
		}
	}

	s.reporter.RunDone(results, time.Since(start))
	return results, nil
}

// slot is one writable field of an entity with its value source.
type slot struct {
	field    *schema.Field
	key      string
	gen      generator.Generator
	override *schema.Override
}

func (sl *slot) value(src *fake.Source) (any, error) {
	if sl.override != nil {
		return sl.override.Resolve(src), nil
	}
	return sl.gen.Generate()
}

func (s *Seeder) processEntity(ctx context.Context, e *schema.Entity) (Result, error) {
	start := time.Now()
	res := Result{Entity: e.Name, Table: e.TableName(), Target: e.Seed.Count}
	finish := func(err error) (Result, error) {
		res.Elapsed = time.Since(start)
		res.Status = status(res)
		return res, err
	}

	if e.Seed.Count <= 0 {
		res.Status = StatusSkipped
		return res, nil
	}

	slots, err := s.slots(ctx, e, &res)
	if err != nil {
		return finish(err)
	}

	for offset := 0; offset < e.Seed.Count; offset += s.batchSize {
		size := min(s.batchSize, e.Seed.Count-offset)
		records := make([]*schema.Record, 0, size)
		for i := 0; i < size; i++ {
			rec := schema.NewRecord(len(slots))
			for _, sl := range slots {
				v, err := sl.value(s.src)
				if err != nil {
					fe := &FieldError{Entity: e.Name, Field: sl.field.Name, Record: offset + i, Err: err}
					res.FieldErrors++
					s.reporter.FieldFailed(fe)
					if s.strict {
						return finish(fe)
					}
					continue
				}
				rec.Set(sl.key, v)
			}
			records = append(records, rec)
		}
		res.Generated += len(records)

		if err := s.writer.WriteBatch(ctx, e, records); err != nil {
			be := &BatchError{Entity: e.Name, Offset: offset, Size: len(records), Err: err}
			res.Failed += len(records)
			s.reporter.BatchFailed(be)
			if s.strict || ctx.Err() != nil {
				return finish(be)
			}
			continue
		}
		res.Written += len(records)
		s.reporter.BatchWritten(e, len(records))
	}
	return finish(nil)
}

// slots builds and prepares a generator for every writable field. Fields with
// neither a generator nor an override are left out of the records.
func (s *Seeder) slots(ctx context.Context, e *schema.Entity, res *Result) ([]*slot, error) {
	env := &generator.Env{
		Source:   s.src,
		Reader:   s.reader,
		Owner:    e,
		UseTZ:    s.useTZ,
		Location: s.location,
	}

	var slots []*slot
	for _, f := range e.Fields {
		if f.PrimaryKey || f.Kind == schema.KindManyToMany {
			continue
		}
		sl := &slot{field: f, key: f.Column(), override: overrideFor(e.Seed, f.Name)}

		gen, ok := s.registry.New(env, f)
		if ok {
			if err := gen.Prepare(ctx); err != nil {
				return nil, fmt.Errorf("failed to prepare %s.%s: %w", e.Name, f.Name, err)
			}
			sl.gen = gen
		} else if sl.override == nil {
			res.Omitted = append(res.Omitted, f.Name)
			s.reporter.FieldOmitted(e, f)
			continue
		}
		slots = append(slots, sl)
	}
	return slots, nil
}

// overrideFor looks the field up by its exact name. Schema loading stores
// override keys under the field names they resolve to.
func overrideFor(cfg *schema.SeedConfig, field string) *schema.Override {
	if o, ok := cfg.Overrides[field]; ok {
		return &o
	}
	return nil
}

func status(res Result) string {
	switch {
	case res.Target <= 0:
		return StatusSkipped
	case res.Written == 0:
		return StatusFailed
	case res.Written < res.Target || res.FieldErrors > 0:
		return StatusPartial
	}
	return StatusOK
}
