package agent

import (
	"fmt"

	"github.com/taa217/lucidai/core"
)

// SequentialAgent coordinates the execution of multiple child agents in
// order, passing the shared run context so each agent can build on the
// staged state of the previous one. Execution stops at the first error.
//
// Typical use is a staged pipeline where each step consumes what the
// previous step produced, such as plan, write, assemble.
type SequentialAgent struct {
	BaseAgent
	children []core.Agent
}

// NewSequentialAgent creates a new sequential execution coordinator. The
// children execute in the order given.
func NewSequentialAgent(name string, children ...core.Agent) *SequentialAgent {
	return &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
}

// Run implements core.Agent. It executes each child agent with the shared
// run context; errors stop further processing immediately.
func (s *SequentialAgent) Run(rc *core.RunContext) error {
	for _, child := range s.children {
		if err := child.Run(rc); err != nil {
			return fmt.Errorf("sequential execution failed at agent %s: %w", child.Name(), err)
		}
	}
	return nil
}
