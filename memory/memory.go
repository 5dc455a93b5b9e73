package memory

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/taa217/lucidai/core"
	"github.com/taa217/lucidai/logging"
)

// sessionMetadataKey is the fixed metadata key under which the session
// identifier is recorded with every interaction.
const sessionMetadataKey = "session_id"

// defaultSearchLimit caps search results when the caller passes limit <= 0.
const defaultSearchLimit = 5

// Config carries the memory service settings, read once at process start and
// passed explicitly into New. An empty APIKey selects the no-op backend.
type Config struct {
	// APIKey authenticates against the remote memory service. Empty means
	// the feature is disabled and the facade runs with the no-op backend.
	APIKey string

	// BaseURL overrides the remote service endpoint. Defaults to the hosted
	// mem0 API when empty.
	BaseURL string

	// Timeout bounds each remote call. Defaults to 10s when zero.
	Timeout time.Duration
}

// ConfigFromEnv builds a Config from MEM0_API_KEY / MEM0_BASE_URL. No format
// validation is performed; presence of the key is the only signal consumed.
func ConfigFromEnv() Config {
	return Config{
		APIKey:  os.Getenv("MEM0_API_KEY"),
		BaseURL: os.Getenv("MEM0_BASE_URL"),
	}
}

// Options configures optional collaborators of the Store.
type Options struct {
	// Logger receives backend selection and operation diagnostics.
	// Defaults to NoOpLogger.
	Logger logging.Logger

	// HTTPClient overrides the client used by the remote backend, primarily
	// for tests. Defaults to a client honoring Config.Timeout.
	HTTPClient *http.Client
}

// backend is the narrow surface both variants implement. The facade holds
// exactly one backend reference, set once at construction and read thereafter.
type backend interface {
	// Add persists one textual record tagged with the user id and metadata.
	Add(ctx context.Context, userID, text string, metadata map[string]any) error

	// Search returns up to limit plain-text snippets relevant to the query.
	Search(ctx context.Context, userID, query string, limit int) ([]string, error)
}

// Store is the uniform-interface facade presented to callers. The public
// contract is identical regardless of which backend is active; callers cannot
// observe the backend except through latency and presence/absence of results.
type Store struct {
	backend backend
	logger  logging.Logger
}

// Compile-time interface assertion.
var _ core.Recaller = (*Store)(nil)

// New constructs a Store, selecting the backend exactly once:
//
//   - no API key configured    -> no-op backend
//   - remote construction fails -> no-op backend (error swallowed)
//   - otherwise                 -> remote backend
//
// The fallback is unconditional: no error from backend construction
// propagates out of New. The selection is fixed for the lifetime of the
// Store; there is no re-evaluation and no hot-swap.
func New(cfg Config, optFns ...func(o *Options)) *Store {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{logger: opts.Logger}

	if cfg.APIKey == "" {
		opts.Logger.Debug("memory disabled: no API key configured, using no-op backend")
		s.backend = noopBackend{}
		return s
	}

	remote, err := newMem0Backend(cfg, opts.HTTPClient)
	if err != nil {
		opts.Logger.Warn("memory backend construction failed, degrading to no-op", "error", err)
		s.backend = noopBackend{}
		return s
	}

	opts.Logger.Debug("memory enabled with remote backend", "base_url", remote.baseURL.String())
	s.backend = remote
	return s
}

// RecordInteraction formats a compact textual record combining the question
// and answer, merges sessionID into the metadata mapping under a fixed key,
// and forwards it to the backend's add operation. Success is "did not return
// an error"; there is no returned identifier.
//
// Runtime errors from the backend propagate to the caller as-is.
func (s *Store) RecordInteraction(ctx context.Context, userID, sessionID, question, answer string, metadata map[string]any) error {
	text := fmt.Sprintf("Q: %s\nA: %s", question, answer)

	md := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	if sessionID != "" {
		md[sessionMetadataKey] = sessionID
	}

	return s.backend.Add(ctx, userID, text, md)
}

// Search forwards to the backend's search operation and returns whatever
// snippets the backend yields, already normalized to plain strings. The no-op
// backend always returns an empty slice. limit caps the number of snippets
// requested from the backend; the facade does not enforce it additionally.
func (s *Store) Search(ctx context.Context, userID, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return s.backend.Search(ctx, userID, query, limit)
}
