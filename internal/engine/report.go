package engine

import (
	"io"
	"log"
	"sort"
	"time"

	"db-seed/internal/schema"
)

const (
	StatusOK      = "OK"
	StatusPartial = "PARTIAL"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
)

// Result is the outcome of seeding one entity.
type Result struct {
	Entity      string
	Table       string
	Target      int
	Generated   int
	Written     int
	Failed      int // records lost with rejected batches
	FieldErrors int
	Omitted     []string // fields left to the store's defaults
	Status      string
	Elapsed     time.Duration
}

// Reporter receives progress events. The seeder never prints on its own.
type Reporter interface {
	CycleDetected(c schema.Cycle)
	FieldOmitted(e *schema.Entity, f *schema.Field)
	FieldFailed(err *FieldError)
	BatchWritten(e *schema.Entity, n int)
	BatchFailed(err *BatchError)
	EntityDone(r Result)
	RunDone(results []Result, elapsed time.Duration)
}

// failureLogLimit is how many failures of one field are logged before the
// rest are only counted.
const failureLogLimit = 3

// LogReporter writes events through a standard logger.
type LogReporter struct {
	logger   *log.Logger
	failures map[string]map[string]int // entity -> field -> count
}

func NewLogReporter(w io.Writer) *LogReporter {
	return &LogReporter{
		logger:   log.New(w, "", log.LstdFlags),
		failures: make(map[string]map[string]int),
	}
}

func (r *LogReporter) CycleDetected(c schema.Cycle) {
	if c.Breakable() {
		r.logger.Printf("[WARN] reference cycle %s: %s.%s will be left null", c, c.Path[len(c.Path)-1].Name, c.Field.Name)
		return
	}
	r.logger.Printf("[WARN] reference cycle %s: %s is required and cannot be filled", c, c.Field.Name)
}

func (r *LogReporter) FieldOmitted(e *schema.Entity, f *schema.Field) {
	r.logger.Printf("[WARN] %s.%s: no generator for kind %s, field omitted", e.Name, f.Name, f.Kind)
}

func (r *LogReporter) FieldFailed(err *FieldError) {
	fields, ok := r.failures[err.Entity]
	if !ok {
		fields = make(map[string]int)
		r.failures[err.Entity] = fields
	}
	fields[err.Field]++
	if fields[err.Field] <= failureLogLimit {
		r.logger.Printf("[DEBUG] %v", err)
	}
}

func (r *LogReporter) BatchWritten(*schema.Entity, int) {}

func (r *LogReporter) BatchFailed(err *BatchError) {
	r.logger.Printf("[ERROR] %v", err)
}

func (r *LogReporter) EntityDone(res Result) {
	fields := r.failures[res.Entity]
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if n := fields[name]; n > failureLogLimit {
			r.logger.Printf("[DEBUG] %s.%s: %d more failures not shown", res.Entity, name, n-failureLogLimit)
		}
	}
	delete(r.failures, res.Entity)

	r.logger.Printf("%s: %d/%d written (%s) in %s", res.Entity, res.Written, res.Target, res.Status, res.Elapsed.Round(time.Millisecond))
}

func (r *LogReporter) RunDone(results []Result, elapsed time.Duration) {
	total := 0
	for _, res := range results {
		total += res.Written
	}
	r.logger.Printf("Seed done: %d records in %s", total, elapsed.Round(time.Millisecond))
}
