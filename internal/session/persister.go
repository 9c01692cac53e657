package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

const writeTimeout = 10 * time.Second

type job struct {
	name string
	run  func(ctx context.Context) error
	done chan struct{}
}

// persister runs repository writes one at a time in submission order.
// Failures are logged and dropped; in-memory state is never rolled back.
type persister struct {
	jobs chan job
	wg   conc.WaitGroup
	log  *slog.Logger
}

func newPersister(log *slog.Logger, size int) *persister {
	p := &persister{
		jobs: make(chan job, size),
		log:  log.With("component", "persister"),
	}
	p.wg.Go(p.loop)
	return p
}

func (p *persister) loop() {
	for j := range p.jobs {
		if j.run != nil {
			p.exec(j)
		}
		if j.done != nil {
			close(j.done)
		}
	}
}

func (p *persister) exec(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	start := time.Now()

	var err error
	var pc panics.Catcher
	pc.Try(func() { err = j.run(ctx) })
	if r := pc.Recovered(); r != nil {
		p.log.Error("persist panicked", "job", j.name, "panic", r.Value, "stack", string(r.Stack))
		return
	}
	if err != nil {
		p.log.Error("persist failed", "job", j.name, "error", err)
		return
	}
	p.log.Debug("persisted", "job", j.name, "took", time.Since(start))
}

func (p *persister) enqueue(name string, run func(ctx context.Context) error) {
	p.jobs <- job{name: name, run: run}
}

// flush waits until every job queued before the call has finished.
func (p *persister) flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case p.jobs <- job{name: "flush", done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close drains the queue and stops the worker.
func (p *persister) close() {
	close(p.jobs)
	if r := p.wg.WaitAndRecover(); r != nil {
		p.log.Error("persister panicked", "panic", r.Value, "stack", string(r.Stack))
	}
}
