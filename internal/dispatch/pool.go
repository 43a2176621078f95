// ABOUTME: Supervised pool for background jobs spawned by the dispatcher
// ABOUTME: Every job is registered with a handle; nothing runs untracked

package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job is the handle kept for one background job.
type Job struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartedAt time.Time `json:"started_at"`
}

// Pool runs background jobs and retains a handle for each until it
// finishes. Jobs receive a context detached from the originating
// request: once spawned, a job is not cancellable by its caller.
type Pool struct {
	mu     sync.Mutex
	jobs   map[string]Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates an empty pool.
func NewPool(logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		jobs:   make(map[string]Job),
		logger: logger.With("component", "pool"),
	}
}

// Go spawns fn as a tracked background job and returns its handle.
func (p *Pool) Go(name string, fn func(ctx context.Context)) Job {
	job := Job{
		ID:        uuid.New().String(),
		Name:      name,
		StartedAt: time.Now().UTC(),
	}

	p.mu.Lock()
	p.jobs[job.ID] = job
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			delete(p.jobs, job.ID)
			p.mu.Unlock()
		}()

		start := time.Now()
		fn(context.Background())
		p.logger.Debug("job finished", "name", name, "duration", time.Since(start))
	}()

	return job
}

// Active returns handles for jobs still running.
func (p *Pool) Active() []Job {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Job, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, j)
	}
	return out
}

// Count returns the number of live jobs.
func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

// Wait blocks until every job spawned so far has finished. Used for
// graceful shutdown; jobs themselves are not cancelled.
func (p *Pool) Wait() {
	p.wg.Wait()
}
