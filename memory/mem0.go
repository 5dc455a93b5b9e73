package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultBaseURL is the hosted mem0 platform endpoint.
const defaultBaseURL = "https://api.mem0.ai"

// mem0Backend talks to the mem0 v1 REST API. One record per add call, carried
// as a single-message conversation; searches return the service's relevance
// ranking untouched.
type mem0Backend struct {
	apiKey  string
	baseURL *url.URL
	client  *http.Client
}

var _ backend = (*mem0Backend)(nil)

func newMem0Backend(cfg Config, client *http.Client) (*mem0Backend, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = defaultBaseURL
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", raw, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q missing scheme or host", raw)
	}

	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &mem0Backend{
		apiKey:  cfg.APIKey,
		baseURL: base,
		client:  client,
	}, nil
}

// mem0Message is one conversational turn in an add request.
type mem0Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mem0AddRequest struct {
	Messages []mem0Message  `json:"messages"`
	UserID   string         `json:"user_id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type mem0SearchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

func (b *mem0Backend) Add(ctx context.Context, userID, text string, metadata map[string]any) error {
	req := mem0AddRequest{
		Messages: []mem0Message{{Role: "user", Content: text}},
		UserID:   userID,
		Metadata: metadata,
	}

	if _, err := b.post(ctx, "/v1/memories/", req); err != nil {
		return fmt.Errorf("memory add: %w", err)
	}
	return nil
}

func (b *mem0Backend) Search(ctx context.Context, userID, query string, limit int) ([]string, error) {
	req := mem0SearchRequest{
		Query:  query,
		UserID: userID,
		Limit:  limit,
	}

	body, err := b.post(ctx, "/v1/memories/search/", req)
	if err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}

	return normalizeSnippets(body)
}

// post sends a JSON request to the given API path and returns the raw
// response body on any 2xx status.
func (b *mem0Backend) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := b.baseURL.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}

	return body, nil
}

// normalizeSnippets flattens a mem0 search response into plain strings. The
// service has returned both a bare array and an object with a "results"
// field, so both shapes are accepted. For each entry the first non-empty
// field wins, checked in order: "content", then "text", then "message".
// Entries with none of the fields are dropped. Result order is preserved.
func normalizeSnippets(body []byte) ([]string, error) {
	var entries []map[string]any

	if err := json.Unmarshal(body, &entries); err != nil {
		var wrapped struct {
			Results []map[string]any `json:"results"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		entries = wrapped.Results
	}

	snippets := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s := stringField(entry, "content"); s != "" {
			snippets = append(snippets, s)
			continue
		}
		if s := stringField(entry, "text"); s != "" {
			snippets = append(snippets, s)
			continue
		}
		if s := stringField(entry, "message"); s != "" {
			snippets = append(snippets, s)
		}
	}

	return snippets, nil
}

func stringField(entry map[string]any, key string) string {
	if v, ok := entry[key].(string); ok {
		return v
	}
	return ""
}
