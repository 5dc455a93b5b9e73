package slides

import (
	"github.com/taa217/lucidai/agent"
	"github.com/taa217/lucidai/model"
)

// OrchestratorOptions tune the pipeline shape.
type OrchestratorOptions struct {
	// Name registers the pipeline under this agent name. Defaults to "SlideDeck".
	Name string

	// SlideCount is the number of slides the planner targets.
	SlideCount int

	// WriterConcurrency bounds simultaneous writer model calls.
	WriterConcurrency int
}

// NewOrchestrator composes planner, writer, and assembler into a sequential
// pipeline ready for engine registration. The same model drives planning and
// writing; pass a model.Fallback to chain providers.
func NewOrchestrator(m model.Model, optFns ...func(o *OrchestratorOptions)) *agent.SequentialAgent {
	opts := OrchestratorOptions{Name: "SlideDeck"}
	for _, fn := range optFns {
		fn(&opts)
	}

	planner := NewPlannerAgent(m, opts.SlideCount)
	writer := NewWriterAgent(m, opts.WriterConcurrency)
	assembler := NewAssemblerAgent()

	pipeline := agent.NewSequentialAgent(opts.Name, planner, writer, assembler)
	_ = pipeline.SetSubAgents(planner, writer, assembler)
	return pipeline
}
