package cmd

import (
	"fmt"
	"os"

	"db-seed/internal/engine"
	"db-seed/internal/schema"

	"github.com/gosuri/uiprogress"
)

// progressReporter draws one bar per entity on top of the log reporter.
type progressReporter struct {
	*engine.LogReporter
	progress *uiprogress.Progress
	bars     map[*schema.Entity]*uiprogress.Bar
}

func newProgressReporter(order []*schema.Entity) *progressReporter {
	p := uiprogress.New()
	r := &progressReporter{
		LogReporter: engine.NewLogReporter(os.Stderr),
		progress:    p,
		bars:        make(map[*schema.Entity]*uiprogress.Bar),
	}

	width := 0
	for _, e := range order {
		width = max(width, len(e.Name))
	}
	for _, e := range order {
		if e.Seed.Count <= 0 {
			continue
		}
		name := e.Name
		bar := p.AddBar(e.Seed.Count).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return fmt.Sprintf("%-*s %d/%d", width, name, b.Current(), b.Total)
		})
		r.bars[e] = bar
	}
	return r
}

func (r *progressReporter) Start() { r.progress.Start() }

func (r *progressReporter) Stop() { r.progress.Stop() }

func (r *progressReporter) advance(e *schema.Entity, n int) {
	if bar, ok := r.bars[e]; ok {
		bar.Set(bar.Current() + n)
	}
}

func (r *progressReporter) BatchWritten(e *schema.Entity, n int) {
	r.advance(e, n)
}

func (r *progressReporter) BatchFailed(err *engine.BatchError) {
	r.LogReporter.BatchFailed(err)
	for e := range r.bars {
		if e.Name == err.Entity {
			r.advance(e, err.Size)
		}
	}
}
