// Package memory provides best-effort durable recall of past question/answer
// exchanges per user, backed by a remote conversational-memory service
// (mem0). The facade degrades silently to a no-op backend when the remote
// capability is unavailable, so absence of the feature never breaks the
// calling flow.
//
// Backend selection happens exactly once, at construction:
//
//	store := memory.New(memory.ConfigFromEnv())
//	_ = store.RecordInteraction(ctx, userID, sessionID, question, answer, nil)
//	snippets, err := store.Search(ctx, userID, "photosynthesis", 5)
//
// A missing API key, or any error constructing the remote backend, selects
// the no-op backend; construction never fails. Runtime errors from the remote
// backend's add/search calls are NOT swallowed and propagate to the caller.
// This asymmetry is deliberate: setup failures degrade the feature, transient
// remote failures surface to the caller.
package memory
