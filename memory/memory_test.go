package memory

import (
	"context"
	"errors"
	"testing"
)

type captureBackend struct {
	userID   string
	text     string
	metadata map[string]any

	query string
	limit int

	addErr    error
	searchErr error
	snippets  []string
}

func (c *captureBackend) Add(_ context.Context, userID, text string, metadata map[string]any) error {
	c.userID = userID
	c.text = text
	c.metadata = metadata
	return c.addErr
}

func (c *captureBackend) Search(_ context.Context, _, query string, limit int) ([]string, error) {
	c.query = query
	c.limit = limit
	return c.snippets, c.searchErr
}

func TestNewSelectsNoopWithoutAPIKey(t *testing.T) {
	s := New(Config{})
	if _, ok := s.backend.(noopBackend); !ok {
		t.Fatalf("expected noop backend, got %T", s.backend)
	}
}

func TestNewSelectsRemoteWithAPIKey(t *testing.T) {
	s := New(Config{APIKey: "k", BaseURL: "https://mem0.example"})
	if _, ok := s.backend.(*mem0Backend); !ok {
		t.Fatalf("expected remote backend, got %T", s.backend)
	}
}

func TestNewFallsBackOnConstructionError(t *testing.T) {
	s := New(Config{APIKey: "k", BaseURL: "://not-a-url"})
	if _, ok := s.backend.(noopBackend); !ok {
		t.Fatalf("expected fallback to noop backend, got %T", s.backend)
	}

	// relative URL parses fine but has no scheme/host
	s = New(Config{APIKey: "k", BaseURL: "just-a-path"})
	if _, ok := s.backend.(noopBackend); !ok {
		t.Fatalf("expected fallback for schemeless URL, got %T", s.backend)
	}
}

func TestRecordInteractionFormatsAndTags(t *testing.T) {
	cb := &captureBackend{}
	s := &Store{backend: cb}

	err := s.RecordInteraction(context.Background(), "u1", "sess-9", "what is 2+2?", "4", map[string]any{"subject": "math"})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if cb.userID != "u1" {
		t.Fatalf("unexpected user id %q", cb.userID)
	}
	if cb.text != "Q: what is 2+2?\nA: 4" {
		t.Fatalf("unexpected record text %q", cb.text)
	}
	if cb.metadata["session_id"] != "sess-9" {
		t.Fatalf("session id not merged into metadata: %#v", cb.metadata)
	}
	if cb.metadata["subject"] != "math" {
		t.Fatalf("caller metadata lost: %#v", cb.metadata)
	}
}

func TestRecordInteractionNilMetadata(t *testing.T) {
	cb := &captureBackend{}
	s := &Store{backend: cb}

	if err := s.RecordInteraction(context.Background(), "u1", "sess-9", "q", "a", nil); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if len(cb.metadata) != 1 || cb.metadata["session_id"] != "sess-9" {
		t.Fatalf("expected exactly session_id key, got %#v", cb.metadata)
	}
}

func TestRecordInteractionPropagatesError(t *testing.T) {
	want := errors.New("remote down")
	s := &Store{backend: &captureBackend{addErr: want}}

	if err := s.RecordInteraction(context.Background(), "u1", "s1", "q", "a", nil); !errors.Is(err, want) {
		t.Fatalf("expected backend error to propagate, got %v", err)
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	cb := &captureBackend{snippets: []string{"a"}}
	s := &Store{backend: cb}

	if _, err := s.Search(context.Background(), "u1", "fractions", 0); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if cb.limit != 5 {
		t.Fatalf("expected default limit 5, got %d", cb.limit)
	}

	if _, err := s.Search(context.Background(), "u1", "fractions", 3); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if cb.limit != 3 {
		t.Fatalf("explicit limit not forwarded, got %d", cb.limit)
	}
}

func TestSearchPropagatesError(t *testing.T) {
	want := errors.New("timeout")
	s := &Store{backend: &captureBackend{searchErr: want}}

	if _, err := s.Search(context.Background(), "u1", "q", 5); !errors.Is(err, want) {
		t.Fatalf("expected backend error to propagate, got %v", err)
	}
}

func TestNoopBackendIsEmptyButWorking(t *testing.T) {
	s := New(Config{})

	if err := s.RecordInteraction(context.Background(), "u1", "s1", "q", "a", nil); err != nil {
		t.Fatalf("noop record errored: %v", err)
	}

	snippets, err := s.Search(context.Background(), "u1", "anything", 5)
	if err != nil {
		t.Fatalf("noop search errored: %v", err)
	}
	if len(snippets) != 0 {
		t.Fatalf("noop search returned snippets: %v", snippets)
	}
}
