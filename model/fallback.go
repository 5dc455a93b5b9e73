package model

import (
	"context"
	"errors"
	"fmt"
)

// Fallback chains several models in priority order. Generate tries each model
// in turn and forwards the first successful stream; when a provider fails
// mid-stream its buffered partials are discarded so the consumer never sees a
// half answer stitched from two vendors. If every provider fails, the
// aggregated errors are reported on the error channel.
type Fallback struct {
	models []Model
}

var _ Model = (*Fallback)(nil)

// NewFallback constructs a fallback chain. Order matters: the first model is
// the preferred provider, the rest are tried only after it fails.
func NewFallback(models ...Model) *Fallback {
	return &Fallback{models: models}
}

// Generate implements Model.
func (f *Fallback) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(f.models) == 0 {
			errCh <- fmt.Errorf("fallback chain is empty")
			return
		}

		var failures []error
		for _, m := range f.models {
			if ctx.Err() != nil {
				errCh <- ctx.Err()
				return
			}

			buffered, err := f.tryModel(ctx, m, req)
			if err != nil {
				failures = append(failures, fmt.Errorf("%s/%s: %w", m.Info().Provider, m.Info().Name, err))
				continue
			}

			for _, resp := range buffered {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- resp:
				}
			}
			return
		}

		errCh <- fmt.Errorf("all providers failed: %w", errors.Join(failures...))
	}()

	return respCh, errCh
}

// tryModel runs one provider to completion, buffering its responses. The
// buffer is returned only when the provider finished without error; a
// mid-stream failure discards everything it produced.
func (f *Fallback) tryModel(ctx context.Context, m Model, req Request) ([]Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var buffered []Response
	for resp := range respCh {
		buffered = append(buffered, resp)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if len(buffered) == 0 {
		return nil, fmt.Errorf("provider produced no response")
	}
	return buffered, nil
}

// Info reports the preferred provider's identity, marking the chain.
func (f *Fallback) Info() Info {
	if len(f.models) == 0 {
		return Info{Name: "fallback", Provider: "fallback"}
	}
	info := f.models[0].Info()
	info.Name = info.Name + "+fallback"
	return info
}
