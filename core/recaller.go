package core

import "context"

// Recaller is the narrow memory capability agents consume: record one
// question/answer exchange and search past exchanges as plain text snippets.
//
// The canonical implementation is memory.Store, which degrades to a no-op
// when the remote memory service is not configured; callers therefore treat
// empty search results as the normal "no memory" case rather than an error.
type Recaller interface {
	// RecordInteraction persists one question/answer exchange for the user.
	// Success is "did not return an error"; there is no returned identifier.
	RecordInteraction(ctx context.Context, userID, sessionID, question, answer string, metadata map[string]any) error

	// Search returns up to limit plain-text snippets relevant to query,
	// scoped to the user. An empty slice is a valid result.
	Search(ctx context.Context, userID, query string, limit int) ([]string, error)
}
