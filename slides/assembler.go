package slides

import (
	"encoding/json"
	"fmt"

	"github.com/taa217/lucidai/agent"
	"github.com/taa217/lucidai/core"
)

// AssemblerAgent merges the staged slide drafts into a Deck, persists the
// rendered JSON as a run artifact, emits the deck as a structured event, and
// records the exchange in durable memory. Memory recording is best-effort
// glue: a recall failure is logged, never fails the deck.
type AssemblerAgent struct {
	agent.BaseAgent
}

// NewAssemblerAgent creates the assembly stage.
func NewAssemblerAgent() *AssemblerAgent {
	return &AssemblerAgent{BaseAgent: agent.NewBaseAgent("Assembler")}
}

// Run implements core.Agent.
func (a *AssemblerAgent) Run(rc *core.RunContext) error {
	outline, err := outlineFromState(rc)
	if err != nil {
		return err
	}

	deck := Deck{
		Title:  outline.Title,
		Slides: make([]Slide, 0, len(outline.Slides)),
	}
	for i := range outline.Slides {
		slide, err := slideFromState(rc, i)
		if err != nil {
			return err
		}
		deck.Slides = append(deck.Slides, slide)
	}

	rendered, err := json.MarshalIndent(deck, "", "  ")
	if err != nil {
		return fmt.Errorf("render deck: %w", err)
	}

	artifactID := fmt.Sprintf("deck-%s.json", rc.RunID)
	if err := rc.SaveArtifact(artifactID, rendered); err != nil {
		return fmt.Errorf("save deck artifact: %w", err)
	}

	a.recordDeck(rc, deck)

	ev := core.NewDataEvent(a.Name(), map[string]any{
		"stage":    "assembled",
		"title":    deck.Title,
		"slides":   len(deck.Slides),
		"artifact": artifactID,
		"deck":     json.RawMessage(rendered),
	})
	ev.RunID = rc.RunID
	done := true
	ev.TurnComplete = &done
	return rc.EmitEvent(ev)
}

// recordDeck writes the request/deck summary to durable memory.
func (a *AssemblerAgent) recordDeck(rc *core.RunContext, deck Deck) {
	if rc.Recall == nil {
		return
	}

	request := ""
	if v, ok := rc.GetState(stateRequestKey); ok {
		request, _ = v.(string)
	}
	if request == "" {
		request = rc.UserContent.Text()
	}

	summary := fmt.Sprintf("Generated deck %q with %d slides", deck.Title, len(deck.Slides))
	err := rc.RecordInteraction(request, summary, map[string]any{"artifact": fmt.Sprintf("deck-%s.json", rc.RunID)})
	if err != nil {
		rc.LogWarn("failed to record deck in memory", "error", err)
	}
}
