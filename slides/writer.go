package slides

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/taa217/lucidai/agent"
	"github.com/taa217/lucidai/core"
	"github.com/taa217/lucidai/model"
)

const writerInstructions = `You are a slide writer for educational presentations.
Given a slide title and teaching goal, produce a JSON object with this exact
shape and nothing else:
{"title": "...", "bullets": ["..."], "speaker_notes": "...", "image_prompt": "..."}
Write 3 to 5 concise bullets. Speaker notes expand the bullets into spoken
prose. The image prompt describes one supporting visual.`

// defaultWriterConcurrency bounds simultaneous provider calls during fan-out.
const defaultWriterConcurrency = 4

// WriterAgent expands every planned slide into full content. The outline
// length is unknown until the planner has run, so the fan-out happens inside
// Run: one goroutine per slide, bounded by maxConcurrency. Drafts are staged
// under "slides.slide.<index>" for the assembler.
type WriterAgent struct {
	agent.BaseAgent
	model          model.Model
	maxConcurrency int
}

// NewWriterAgent creates the writing stage. maxConcurrency <= 0 selects the
// default bound.
func NewWriterAgent(m model.Model, maxConcurrency int) *WriterAgent {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultWriterConcurrency
	}
	return &WriterAgent{
		BaseAgent:      agent.NewBaseAgent("Writer"),
		model:          m,
		maxConcurrency: maxConcurrency,
	}
}

// Run implements core.Agent.
func (w *WriterAgent) Run(rc *core.RunContext) error {
	outline, err := outlineFromState(rc)
	if err != nil {
		return err
	}

	drafts := make([]Slide, len(outline.Slides))
	errs := make([]error, len(outline.Slides))

	sem := make(chan struct{}, w.maxConcurrency)
	var wg sync.WaitGroup

	for i, planned := range outline.Slides {
		wg.Add(1)
		go func(i int, planned PlannedSlide) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			drafts[i], errs[i] = w.writeSlide(rc, outline.Title, planned)
		}(i, planned)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("slide drafting failed: %w", err)
	}

	for i, draft := range drafts {
		encoded, err := json.Marshal(draft)
		if err != nil {
			return fmt.Errorf("encode slide %d: %w", i, err)
		}
		rc.SetState(fmt.Sprintf("%s%d", stateSlidePrefix, i), string(encoded))
	}

	// EmitProgress keeps the staged outline and drafts in the delta buffer
	// for the assembler; a flushing emit here would strand the assembler
	// against a stale session snapshot.
	ev := core.NewDataEvent(w.Name(), map[string]any{
		"stage":  "written",
		"slides": len(drafts),
	})
	ev.RunID = rc.RunID
	return rc.EmitProgress(ev)
}

// writeSlide drives one model call for one planned slide.
func (w *WriterAgent) writeSlide(rc *core.RunContext, deckTitle string, planned PlannedSlide) (Slide, error) {
	prompt := fmt.Sprintf("Deck: %s\nSlide title: %s\nTeaching goal: %s", deckTitle, planned.Title, planned.Goal)

	raw, err := runModel(rc, w.model, writerInstructions, prompt)
	if err != nil {
		return Slide{}, fmt.Errorf("slide %q: %w", planned.Title, err)
	}

	slide, err := parseSlide(raw)
	if err != nil {
		return Slide{}, fmt.Errorf("slide %q: %w", planned.Title, err)
	}
	return slide, nil
}

// slideFromState reads back one staged slide draft.
func slideFromState(rc *core.RunContext, index int) (Slide, error) {
	v, ok := rc.GetState(fmt.Sprintf("%s%d", stateSlidePrefix, index))
	if !ok {
		return Slide{}, fmt.Errorf("slide %d missing from session state", index)
	}
	raw, ok := v.(string)
	if !ok {
		return Slide{}, fmt.Errorf("slide %d state has unexpected type %T", index, v)
	}
	var slide Slide
	if err := json.Unmarshal([]byte(raw), &slide); err != nil {
		return Slide{}, fmt.Errorf("decode staged slide %d: %w", index, err)
	}
	return slide, nil
}
