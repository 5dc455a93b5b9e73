package slides

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taa217/lucidai/agent"
	"github.com/taa217/lucidai/core"
	"github.com/taa217/lucidai/model"
)

// State keys shared between pipeline stages.
const (
	stateOutlineKey     = "slides.outline"
	stateSlidePrefix    = "slides.slide."
	stateRequestKey     = "slides.request"
	defaultPlannerCount = 5
)

const plannerInstructions = `You are a presentation planner for educational content.
Given a topic, produce a JSON object with this exact shape and nothing else:
{"title": "...", "slides": [{"title": "...", "goal": "..."}]}
Plan %d slides. Each goal is one sentence stating what the slide must teach.`

// PlannerAgent turns the user's request into a deck outline and stages it in
// session state for the writer stage.
type PlannerAgent struct {
	agent.BaseAgent
	model      model.Model
	slideCount int
}

// NewPlannerAgent creates the planning stage. slideCount <= 0 selects the
// default deck length.
func NewPlannerAgent(m model.Model, slideCount int) *PlannerAgent {
	if slideCount <= 0 {
		slideCount = defaultPlannerCount
	}
	return &PlannerAgent{
		BaseAgent:  agent.NewBaseAgent("Planner"),
		model:      m,
		slideCount: slideCount,
	}
}

// Run implements core.Agent.
func (p *PlannerAgent) Run(rc *core.RunContext) error {
	request := strings.TrimSpace(rc.UserContent.Text())
	if request == "" {
		return fmt.Errorf("empty slide request")
	}

	raw, err := runModel(rc, p.model, fmt.Sprintf(plannerInstructions, p.slideCount), request)
	if err != nil {
		return fmt.Errorf("planner model call: %w", err)
	}

	outline, err := parseOutline(raw)
	if err != nil {
		return fmt.Errorf("planner output: %w", err)
	}

	encoded, err := json.Marshal(outline)
	if err != nil {
		return fmt.Errorf("encode outline: %w", err)
	}

	rc.SetState(stateRequestKey, request)
	rc.SetState(stateOutlineKey, string(encoded))

	// EmitProgress, not EmitEvent: the staged outline must stay in the delta
	// buffer for the writer and assembler stages.
	ev := core.NewDataEvent(p.Name(), map[string]any{
		"stage":  "planned",
		"title":  outline.Title,
		"slides": len(outline.Slides),
	})
	ev.RunID = rc.RunID
	return rc.EmitProgress(ev)
}

// outlineFromState reads back the staged outline. Used by later stages.
func outlineFromState(rc *core.RunContext) (Outline, error) {
	v, ok := rc.GetState(stateOutlineKey)
	if !ok {
		return Outline{}, fmt.Errorf("no outline in session state, planner must run first")
	}
	raw, ok := v.(string)
	if !ok {
		return Outline{}, fmt.Errorf("outline state has unexpected type %T", v)
	}
	var outline Outline
	if err := json.Unmarshal([]byte(raw), &outline); err != nil {
		return Outline{}, fmt.Errorf("decode staged outline: %w", err)
	}
	return outline, nil
}
