package memory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *mem0Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b, err := newMem0Backend(Config{APIKey: "test-key", BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("backend construction failed: %v", err)
	}
	return b
}

func TestMem0AddRequestShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"results":[]}`))
	})

	err := b.Add(context.Background(), "u1", "Q: q\nA: a", map[string]any{"session_id": "s1"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if gotPath != "/v1/memories/" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Token test-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["user_id"] != "u1" {
		t.Fatalf("user_id missing from body: %#v", gotBody)
	}

	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("expected one message, got %#v", gotBody["messages"])
	}
	msg := messages[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "Q: q\nA: a" {
		t.Fatalf("unexpected message %#v", msg)
	}
}

func TestMem0AddRejectsNon2xx(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	if err := b.Add(context.Background(), "u1", "text", nil); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}

func TestMem0SearchRequestShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`[]`))
	})

	if _, err := b.Search(context.Background(), "u1", "fractions", 7); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if gotPath != "/v1/memories/search/" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["query"] != "fractions" || gotBody["user_id"] != "u1" {
		t.Fatalf("unexpected body %#v", gotBody)
	}
	if gotBody["limit"].(float64) != 7 {
		t.Fatalf("limit not forwarded: %#v", gotBody["limit"])
	}
}

func TestMem0SearchNormalization(t *testing.T) {
	response := `{"results": [
		{"content": "from content", "text": "shadowed", "message": "shadowed"},
		{"text": "from text", "message": "shadowed"},
		{"message": "from message"},
		{"score": 0.9},
		{"content": "", "text": "empty content falls through"}
	]}`

	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(response))
	})

	got, err := b.Search(context.Background(), "u1", "q", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	want := []string{"from content", "from text", "from message", "empty content falls through"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("normalization mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestMem0SearchBareArrayResponse(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"content": "one"}, {"content": "two"}]`))
	})

	got, err := b.Search(context.Background(), "u1", "q", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Fatalf("unexpected snippets %#v", got)
	}
}

func TestMem0SearchMalformedResponse(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	if _, err := b.Search(context.Background(), "u1", "q", 5); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewMem0BackendDefaults(t *testing.T) {
	b, err := newMem0Backend(Config{APIKey: "k"}, nil)
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	if b.baseURL.String() != defaultBaseURL {
		t.Fatalf("unexpected default base URL %q", b.baseURL)
	}
	if b.client.Timeout == 0 {
		t.Fatalf("expected default client timeout")
	}
}
