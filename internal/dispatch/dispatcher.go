// ABOUTME: Dispatcher turning one post into concurrent agent-run and command jobs
// ABOUTME: Creates the post and QUEUED runs synchronously, then returns immediately

package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yaam/agentboard/internal/agents"
	"github.com/yaam/agentboard/internal/audit"
	"github.com/yaam/agentboard/internal/metrics"
	"github.com/yaam/agentboard/internal/parse"
	"github.com/yaam/agentboard/internal/services"
	"github.com/yaam/agentboard/internal/store"
)

const (
	defaultContextWindow   = 5
	defaultGenerateTimeout = 30 * time.Second
	defaultMediaTimeout    = 120 * time.Second
)

// Config wires the dispatcher's collaborators.
type Config struct {
	Store    *store.MemoryStore
	Registry *agents.Registry
	Services *services.Bundle
	Audit    *audit.Recorder
	Logger   *slog.Logger

	// ContextWindow bounds the thread history handed to the generator.
	ContextWindow int
	// GenerateTimeout bounds one reply generation call.
	GenerateTimeout time.Duration
	// MediaTimeout bounds one media generation call.
	MediaTimeout time.Duration
}

// Dispatcher owns run creation and every run state transition.
type Dispatcher struct {
	store    *store.MemoryStore
	registry *agents.Registry
	services *services.Bundle
	audit    *audit.Recorder
	pool     *Pool
	logger   *slog.Logger

	contextWindow   int
	generateTimeout time.Duration
	mediaTimeout    time.Duration
}

// New creates a dispatcher and hooks itself into the store so every
// run transition is audited and counted exactly once.
func New(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = defaultContextWindow
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = defaultGenerateTimeout
	}
	if cfg.MediaTimeout <= 0 {
		cfg.MediaTimeout = defaultMediaTimeout
	}

	d := &Dispatcher{
		store:           cfg.Store,
		registry:        cfg.Registry,
		services:        cfg.Services,
		audit:           cfg.Audit,
		pool:            NewPool(cfg.Logger),
		logger:          cfg.Logger.With("component", "dispatch"),
		contextWindow:   cfg.ContextWindow,
		generateTimeout: cfg.GenerateTimeout,
		mediaTimeout:    cfg.MediaTimeout,
	}
	d.store.SetTransitionFunc(d.recordTransition)
	return d
}

// Pool exposes the job pool for shutdown and status reporting.
func (d *Dispatcher) Pool() *Pool {
	return d.pool
}

// Services exposes the service bundle for status reporting.
func (d *Dispatcher) Services() *services.Bundle {
	return d.services
}

// ProcessPost creates the post, one QUEUED run per valid mention, and
// one background job per mention and per recognized command. It returns
// as soon as the post and run records exist; jobs run independently and
// their failures never reach the caller.
func (d *Dispatcher) ProcessPost(ctx context.Context, text string, parentID *string, userID string) (*store.Post, []*store.AgentRun) {
	mentions := parse.Mentions(text, d.registry)
	commands := parse.Commands(text)

	post := d.store.CreatePost(userID, text, parentID, mentions)
	metrics.PostsCreated.WithLabelValues(string(store.AuthorHuman)).Inc()
	d.audit.Log(audit.Entry{
		Type:         audit.EventPostCreate,
		UserID:       userID,
		ResourceType: "post",
		ResourceID:   post.ID,
		ThreadID:     post.ThreadID,
		PostID:       post.ID,
	})

	runs := make([]*store.AgentRun, 0, len(mentions))
	for _, handle := range mentions {
		run := d.store.CreateRun(handle, post.ID, post.ThreadID)
		runs = append(runs, run)
		metrics.RunsActive.Inc()

		runID, agentHandle := run.ID, run.AgentHandle
		d.pool.Go("run:"+agentHandle, func(jobCtx context.Context) {
			d.executeRun(jobCtx, runID, agentHandle, post)
		})
	}

	for _, cmd := range commands {
		d.pool.Go("command:"+string(cmd.Kind), func(jobCtx context.Context) {
			d.executeCommand(jobCtx, cmd, post, userID)
		})
	}

	d.logger.Info("post processed",
		"post_id", post.ID,
		"thread_id", post.ThreadID,
		"mentions", len(mentions),
		"commands", len(commands),
	)
	return post, runs
}

// executeRun drives one agent run through its lifecycle. All outcomes
// are terminal here: a generation failure flips the run to ERROR and
// leaves a visible error reply rather than silence.
func (d *Dispatcher) executeRun(ctx context.Context, runID, agentHandle string, trigger *store.Post) {
	d.store.Transition(runID, store.RunRunning, nil)

	profile, err := d.registry.Get(agentHandle)
	if err != nil {
		d.failRun(runID, agentHandle, trigger, err)
		return
	}

	history := d.store.ThreadContext(trigger.ThreadID, d.contextWindow)

	genCtx, cancel := context.WithTimeout(ctx, d.generateTimeout)
	defer cancel()
	text, err := d.services.Generate(genCtx, services.GenerateRequest{
		Profile: profile,
		History: history,
		Prompt:  trigger.Text,
	})
	if err != nil {
		d.failRun(runID, agentHandle, trigger, err)
		return
	}
	if text == "" {
		d.failRun(runID, agentHandle, trigger, fmt.Errorf("no response generated"))
		return
	}

	reply := d.store.CreateReply(store.AuthorAgent, profile.Handle, text, trigger.ID, trigger.ThreadID)
	metrics.PostsCreated.WithLabelValues(string(store.AuthorAgent)).Inc()
	d.store.Transition(runID, store.RunDone, &reply.ID)
}

// failRun ends the run in ERROR and posts an agent-authored notice so
// the user sees the failure in the thread.
func (d *Dispatcher) failRun(runID, agentHandle string, trigger *store.Post, cause error) {
	d.logger.Error("agent run failed", "run_id", runID, "agent", agentHandle, "error", cause)
	d.store.Transition(runID, store.RunError, nil)

	notice := fmt.Sprintf("❌ Error processing request: %v", cause)
	d.store.CreateReply(store.AuthorAgent, agentHandle, notice, trigger.ID, trigger.ThreadID)
	metrics.PostsCreated.WithLabelValues(string(store.AuthorAgent)).Inc()
}

// recordTransition is installed as the store's transition hook. Every
// legal run transition lands here exactly once.
func (d *Dispatcher) recordTransition(run *store.AgentRun, prev store.RunStatus) {
	entry := audit.Entry{
		UserID:       run.AgentHandle,
		ResourceType: "agent_run",
		ResourceID:   run.ID,
		ThreadID:     run.ThreadID,
		PostID:       run.TriggerPostID,
	}

	switch run.Status {
	case store.RunRunning:
		entry.Type = audit.EventAgentRunStart
	case store.RunDone:
		entry.Type = audit.EventAgentRunComplete
		if run.OutputPostID != nil {
			entry.Details = map[string]any{"output_post_id": *run.OutputPostID}
		}
	case store.RunError:
		entry.Type = audit.EventAgentRunError
		entry.Status = audit.StatusFailure
	default:
		return
	}
	d.audit.Log(entry)

	if run.Status.Terminal() {
		metrics.RunsActive.Dec()
		metrics.RunsCompleted.WithLabelValues(run.AgentHandle, string(run.Status)).Inc()
		if run.EndedAt != nil {
			metrics.RunDuration.WithLabelValues(run.AgentHandle).Observe(run.EndedAt.Sub(run.StartedAt).Seconds())
		}
	}
	d.logger.Debug("run transition", "run_id", run.ID, "from", prev, "to", run.Status)
}
