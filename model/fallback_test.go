package model

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/taa217/lucidai/core"
)

// failingModel errors after emitting a partial, exercising the
// discard-buffered-partials path.
type failingModel struct {
	name string
}

func (m *failingModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 2)
	errCh := make(chan error, 1)
	go func() {
		defer close(respCh)
		defer close(errCh)
		respCh <- Response{Partial: true, Content: core.NewTextContent("assistant", "half an ans")}
		errCh <- fmt.Errorf("provider %s unavailable", m.name)
	}()
	return respCh, errCh
}

func (m *failingModel) Info() Info { return Info{Name: m.name, Provider: m.name} }

func TestFallbackUsesFirstHealthyProvider(t *testing.T) {
	healthy := NewMockModel("backup", "mock")
	healthy.AddResponse("q", "full answer")

	fb := NewFallback(&failingModel{name: "primary"}, healthy)

	respCh, errCh := fb.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewTextContent("user", "q")},
	})

	responses, err := collect(t, respCh, errCh)
	if err != nil {
		t.Fatalf("fallback failed: %v", err)
	}

	for _, resp := range responses {
		if strings.Contains(resp.Content.Text(), "half an ans") {
			t.Fatalf("failed provider's partial leaked through: %q", resp.Content.Text())
		}
	}
	final := responses[len(responses)-1]
	if final.Content.Text() != "full answer" {
		t.Fatalf("unexpected final response %q", final.Content.Text())
	}
}

func TestFallbackAggregatesAllFailures(t *testing.T) {
	fb := NewFallback(&failingModel{name: "a"}, &failingModel{name: "b"})

	respCh, errCh := fb.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewTextContent("user", "q")},
	})

	_, err := collect(t, respCh, errCh)
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "provider a unavailable") || !strings.Contains(msg, "provider b unavailable") {
		t.Fatalf("error does not name both providers: %v", err)
	}
}

func TestFallbackEmptyChain(t *testing.T) {
	fb := NewFallback()
	respCh, errCh := fb.Generate(context.Background(), Request{})
	if _, err := collect(t, respCh, errCh); err == nil {
		t.Fatalf("expected error for empty chain")
	}
}

func TestFallbackPreservesOrder(t *testing.T) {
	first := NewMockModel("first", "mock")
	first.AddResponse("q", "from first")
	second := NewMockModel("second", "mock")
	second.AddResponse("q", "from second")

	fb := NewFallback(first, second)

	respCh, errCh := fb.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewTextContent("user", "q")},
	})
	responses, err := collect(t, respCh, errCh)
	if err != nil {
		t.Fatalf("fallback failed: %v", err)
	}
	if responses[len(responses)-1].Content.Text() != "from first" {
		t.Fatalf("preferred provider not used first")
	}
}
