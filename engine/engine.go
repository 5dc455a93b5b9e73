// Package engine orchestrates agent execution: it owns the agent registry,
// per-run lifecycle and channels, and the event processing pipeline that
// applies event actions to the backing stores before forwarding events to
// clients.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/taa217/lucidai/artifact"
	"github.com/taa217/lucidai/core"
	"github.com/taa217/lucidai/logging"
	"github.com/taa217/lucidai/session"
)

// Config defines tuning parameters for the Engine's operational behavior.
type Config struct {
	// MaxConcurrentRuns limits simultaneous agent runs. 0 means unlimited.
	MaxConcurrentRuns int

	// EventBufferSize sets the channel buffer size for event processing.
	EventBufferSize int

	// MaxModelCallsPerRun caps model invocations within a single run,
	// guarding against runaway loops. 0 means unlimited.
	MaxModelCallsPerRun int
}

// DefaultConfig provides production-ready defaults.
var DefaultConfig = Config{
	MaxConcurrentRuns:   10,
	EventBufferSize:     100,
	MaxModelCallsPerRun: 0,
}

// Options configures an Engine instance using the functional options pattern.
// All service dependencies have in-memory defaults suitable for development
// and tests; production deployments supply durable implementations.
type Options struct {
	// Config contains operational parameters. Defaults to DefaultConfig.
	Config Config

	// SessionStore manages session persistence and state.
	SessionStore core.SessionStore

	// ArtifactStore handles binary artifact storage.
	ArtifactStore core.ArtifactStore

	// Recall provides durable cross-session memory. Nil disables recall;
	// agents observe an always-empty memory.
	Recall core.Recaller

	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Engine coordinates agent execution and manages the lifecycle of runs.
//
// Event flow per run:
//  1. User content is persisted as the starting event
//  2. The agent executes in its own goroutine, emitting events
//  3. Event actions (state deltas, artifacts) are applied to services
//  4. Non-partial events are persisted to session history
//  5. Events are forwarded to the client channel
//
// All public methods are safe for concurrent use.
type Engine struct {
	sessionStore  core.SessionStore
	artifactStore core.ArtifactStore
	recall        core.Recaller
	logger        logging.Logger

	config Config

	agents map[string]core.Agent
	mu     sync.RWMutex

	activeRuns map[string]context.CancelFunc
	runsMu     sync.RWMutex

	sem chan struct{} // bounds concurrent runs when MaxConcurrentRuns > 0
}

var _ core.Engine = (*Engine)(nil)

// New creates an Engine with in-memory defaults, overridable via options.
// The engine does not take ownership of provided services; callers remain
// responsible for their lifecycle.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:        DefaultConfig,
		SessionStore:  session.NewInMemoryStore(),
		ArtifactStore: artifact.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var sem chan struct{}
	if opts.Config.MaxConcurrentRuns > 0 {
		sem = make(chan struct{}, opts.Config.MaxConcurrentRuns)
	}

	return &Engine{
		sessionStore:  opts.SessionStore,
		artifactStore: opts.ArtifactStore,
		recall:        opts.Recall,
		logger:        opts.Logger,
		config:        opts.Config,
		agents:        make(map[string]core.Agent),
		activeRuns:    make(map[string]context.CancelFunc),
		sem:           sem,
	}
}

// Register adds an agent to the registry under agent.Name(). An existing
// agent with the same name is replaced.
func (e *Engine) Register(a core.Agent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.agents[a.Name()] = a
}

// GetAgent retrieves a registered agent by name.
func (e *Engine) GetAgent(name string) (core.Agent, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.agents[name]
	return a, ok
}

// Invoke executes an agent asynchronously, returning the run id plus channels
// streaming events and terminal errors. Both channels close when the run
// completes. Immediate setup failures (unknown agent, session load) are
// returned directly.
func (e *Engine) Invoke(
	ctx context.Context,
	sessionID string,
	agentName string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	agent, ok := e.GetAgent(agentName)
	if !ok {
		return "", nil, nil, fmt.Errorf("agent %s not found", agentName)
	}

	sess, err := e.sessionStore.Get(sessionID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	runID := core.NewID()

	eventsCh := make(chan core.Event, e.config.EventBufferSize)
	errorsCh := make(chan error, 1)
	agentEmit := make(chan core.Event, e.config.EventBufferSize)
	resumeCh := make(chan struct{}, 1)

	runCtx, cancel := context.WithCancel(ctx)

	e.runsMu.Lock()
	e.activeRuns[runID] = cancel
	e.runsMu.Unlock()

	rc := core.NewRunContext(
		runCtx,
		sessionID,
		runID,
		core.AgentInfo{Name: agent.Name(), Type: "agent"},
		userContent,
		e.config.MaxModelCallsPerRun,
		agentEmit,
		resumeCh,
		sess,
		e.sessionStore,
		e.artifactStore,
		e.recall,
		e.logger,
	)

	userEvent := core.NewUserContentEvent(runID, &userContent)
	if err := e.sessionStore.AppendEvent(sessionID, userEvent); err != nil {
		cancel()
		e.runsMu.Lock()
		delete(e.activeRuns, runID)
		e.runsMu.Unlock()
		return "", nil, nil, fmt.Errorf("failed to append user event: %w", err)
	}

	go func() {
		defer func() {
			// untrack before closing: once the client observes the events
			// channel close, StopRun must already report the run as gone
			e.runsMu.Lock()
			delete(e.activeRuns, runID)
			e.runsMu.Unlock()
			close(agentEmit)
		}()

		if e.sem != nil {
			select {
			case e.sem <- struct{}{}:
				defer func() { <-e.sem }()
			case <-runCtx.Done():
				return
			}
		}

		if err := e.runAgent(rc, agent); err != nil {
			select {
			case <-runCtx.Done():
			case errorsCh <- fmt.Errorf("agent execution failed: %w", err):
			}
		}
	}()

	go func() {
		defer func() {
			close(eventsCh)
			close(errorsCh)
		}()
		e.processEvents(runCtx, sessionID, agentEmit, resumeCh, eventsCh, errorsCh)
	}()

	return runID, eventsCh, errorsCh, nil
}

// InvokeSync executes an agent and blocks until completion, collecting all
// generated events. Prefer Invoke for streaming consumption; this buffers
// everything in memory.
func (e *Engine) InvokeSync(
	ctx context.Context,
	sessionID string,
	agentName string,
	userContent core.Content,
) (string, []core.Event, error) {
	runID, eventsCh, errorsCh, err := e.Invoke(ctx, sessionID, agentName, userContent)
	if err != nil {
		return "", nil, err
	}

	var events []core.Event
	for {
		select {
		case <-ctx.Done():
			return runID, events, ctx.Err()

		case event, ok := <-eventsCh:
			if !ok {
				select {
				case err := <-errorsCh:
					return runID, events, err
				default:
					return runID, events, nil
				}
			}
			events = append(events, event)

		case err := <-errorsCh:
			if err != nil {
				return runID, events, err
			}
		}
	}
}

// StopRun forcibly terminates a run by id, cancelling its context. The run
// is untracked immediately so a repeated stop reports it as not found even
// while the run's goroutines are still winding down.
func (e *Engine) StopRun(runID string) error {
	e.runsMu.Lock()
	cancel, exists := e.activeRuns[runID]
	if exists {
		delete(e.activeRuns, runID)
	}
	e.runsMu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()
	return nil
}

// GetSession retrieves a point-in-time snapshot of the session by id.
func (e *Engine) GetSession(sessionID string) (*core.Session, error) {
	return e.sessionStore.Get(sessionID)
}

func (e *Engine) runAgent(rc *core.RunContext, agent core.Agent) error {
	if err := agent.Start(rc); err != nil {
		return err
	}
	defer func() {
		if err := agent.Stop(rc); err != nil {
			e.logger.Warn("error stopping agent", "agent", agent.Name(), "error", err)
		}
	}()

	return agent.Run(rc)
}

// processEvents drains the agent's emit channel, applying event actions and
// persisting non-partial events before forwarding them to the client. A
// service failure during processing terminates the run; partial state
// corruption is worse than a failed run.
func (e *Engine) processEvents(
	ctx context.Context,
	sessionID string,
	agentEmit <-chan core.Event,
	resumeCh chan<- struct{},
	eventsCh chan<- core.Event,
	errorsCh chan<- error,
) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-agentEmit:
			if !ok {
				return
			}

			if err := e.applyEventActions(sessionID, ev); err != nil {
				select {
				case <-ctx.Done():
				case errorsCh <- fmt.Errorf("failed to process event actions: %w", err):
				}
				return
			}

			if !ev.IsPartial() {
				if err := e.sessionStore.AppendEvent(sessionID, ev); err != nil {
					select {
					case <-ctx.Done():
					case errorsCh <- fmt.Errorf("failed to append event to session: %w", err):
					}
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case eventsCh <- ev:
				e.logger.Debug("engine delivered event", "event_id", ev.ID, "session_id", sessionID)
			}

			// Resumption signal for agents waiting on turn completion.
			if !ev.IsPartial() {
				select {
				case <-ctx.Done():
					return
				case resumeCh <- struct{}{}:
				default:
					// channel full, signal already pending
				}
			}
		}
	}
}

// applyEventActions applies the side-effects encoded in an event's Actions.
func (e *Engine) applyEventActions(sessionID string, ev core.Event) error {
	if len(ev.Actions.StateDelta) > 0 {
		if err := e.sessionStore.ApplyDelta(sessionID, ev.Actions.StateDelta); err != nil {
			return fmt.Errorf("failed to apply state delta: %w", err)
		}
	}

	if ev.Actions.Escalate != nil && *ev.Actions.Escalate {
		e.logger.Debug("engine event escalation requested", "session_id", sessionID)
	}

	return nil
}
