package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/taa217/lucidai/logging"
)

// ErrNotReady is returned by Wait when the retry budget is exhausted without
// a successful response.
type ErrNotReady struct {
	URL      string
	Attempts int
}

func (e *ErrNotReady) Error() string {
	return fmt.Sprintf("service at %s not ready after %d attempts", e.URL, e.Attempts)
}

// Poller blocks until an HTTP health endpoint returns 200 or the retry
// budget is exhausted. Any request error or non-200 status counts as "not
// yet ready" and consumes one attempt. There is no backoff and no jitter:
// the interval between attempts is fixed.
type Poller struct {
	// URL is the health endpoint, typically "http://host:port/health".
	URL string

	// Interval is the fixed sleep between attempts. Defaults to 1s.
	Interval time.Duration

	// MaxRetries is the total number of attempts. Defaults to 30.
	MaxRetries int

	// Client overrides the HTTP client, primarily for tests.
	Client *http.Client

	// Logger receives per-attempt diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Wait polls the endpoint until it returns 200, the attempts are exhausted,
// or ctx is cancelled. Exactly MaxRetries attempts are made; the sleep runs
// between attempts, not after the last one.
func (p *Poller) Wait(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 30
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	logger := p.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		healthy, err := p.check(ctx, client)
		if healthy {
			logger.Debug("service ready", "url", p.URL, "attempt", attempt)
			return nil
		}
		logger.Debug("service not ready", "url", p.URL, "attempt", attempt, "error", err)

		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return &ErrNotReady{URL: p.URL, Attempts: maxRetries}
}

// check performs one request. A request error or non-200 status is "not
// ready"; the error return carries the reason for logging.
func (p *Poller) check(ctx context.Context, client *http.Client) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return false, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("status %d", resp.StatusCode)
	}
	return true, nil
}
