// Package lucidai provides a high-level facade over the engine and service
// abstractions (sessions, artifacts, memory, logging) for building the
// application's AI pipelines. Most callers:
//  1. Create an App via New() (optionally overriding the in-memory defaults)
//  2. Register agents (the slide orchestrator, tutoring agents, custom ones)
//  3. Invoke them asynchronously (Invoke) or synchronously (InvokeSync)
//
// Defaults are safe for local development and tests; production deployments
// supply a Redis session store, a configured memory facade, and a structured
// logger.
package lucidai

import (
	"context"

	"github.com/taa217/lucidai/artifact"
	"github.com/taa217/lucidai/core"
	"github.com/taa217/lucidai/engine"
	"github.com/taa217/lucidai/logging"
	"github.com/taa217/lucidai/memory"
	"github.com/taa217/lucidai/session"
)

// Options configures the App instance.
type Options struct {
	// EngineConfig tunes concurrency and event buffering.
	EngineConfig engine.Config

	// Stores default to in-memory implementations if not provided.
	SessionStore  core.SessionStore
	ArtifactStore core.ArtifactStore

	// Memory is the durable recall facade. Defaults to a facade constructed
	// from the environment (no-op when MEM0_API_KEY is unset).
	Memory *memory.Store

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// App is the high-level facade aggregating the engine and its services.
type App struct {
	opts   Options
	engine core.Engine
	memory *memory.Store
}

// New creates an App with optional overrides. Any unset service is
// initialized with its development default.
func New(optFns ...func(o *Options)) *App {
	opts := Options{
		EngineConfig:  engine.DefaultConfig,
		SessionStore:  session.NewInMemoryStore(),
		ArtifactStore: artifact.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Memory == nil {
		opts.Memory = memory.New(memory.ConfigFromEnv(), func(o *memory.Options) {
			o.Logger = opts.Logger
		})
	}

	eng := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.SessionStore = opts.SessionStore
		o.ArtifactStore = opts.ArtifactStore
		o.Recall = opts.Memory
		o.Logger = opts.Logger
	})

	return &App{opts: opts, engine: eng, memory: opts.Memory}
}

// RegisterAgent adds an agent to the underlying engine.
func (a *App) RegisterAgent(ag core.Agent) { a.engine.Register(ag) }

// Memory returns the durable recall facade used by the app.
func (a *App) Memory() *memory.Store { return a.memory }

// Invoke starts an asynchronous run returning event and error channels.
func (a *App) Invoke(
	ctx context.Context,
	sessionID string,
	agentName string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	return a.engine.Invoke(ctx, sessionID, agentName, userContent)
}

// InvokeSync executes an agent to completion and returns all emitted events.
func (a *App) InvokeSync(
	ctx context.Context,
	sessionID string,
	agentName string,
	userContent core.Content,
) (string, []core.Event, error) {
	return a.engine.InvokeSync(ctx, sessionID, agentName, userContent)
}
