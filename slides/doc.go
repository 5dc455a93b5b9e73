// Package slides implements the slide-deck generation pipeline: a planner
// agent outlines the deck, writer goroutines draft each slide concurrently,
// and an assembler merges the drafts into a Deck, persists it as an artifact,
// and records the exchange in durable memory.
//
// Wire it up with NewOrchestrator, which composes the three stages as a
// SequentialAgent ready for engine registration:
//
//	orch := slides.NewOrchestrator(model)
//	eng.Register(orch)
//	_, events, err := eng.InvokeSync(ctx, sessionID, orch.Name(), content)
package slides
