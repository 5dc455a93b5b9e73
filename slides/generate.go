package slides

import (
	"fmt"

	"github.com/taa217/lucidai/core"
	"github.com/taa217/lucidai/model"
)

// runModel performs one non-streaming model call and returns the final text.
// It consumes the model limiter so a run cannot loop on provider calls
// without bound.
func runModel(rc *core.RunContext, m model.Model, instructions, prompt string) (string, error) {
	if rc.Limiter != nil {
		if err := rc.Limiter.Increment(); err != nil {
			return "", err
		}
	}

	respCh, errCh := m.Generate(rc.Context, model.Request{
		Instructions: instructions,
		Contents:     []core.Content{core.NewTextContent("user", prompt)},
	})

	var final string
	for resp := range respCh {
		if !resp.Partial {
			final = resp.Content.Text()
		}
	}
	if err := <-errCh; err != nil {
		return "", err
	}
	if final == "" {
		return "", fmt.Errorf("model %s returned empty response", m.Info().Name)
	}
	return final, nil
}
