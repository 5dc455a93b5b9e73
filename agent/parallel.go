package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/taa217/lucidai/core"
)

// ParallelAgent coordinates the concurrent execution of multiple child
// agents. Each child receives a cloned run context with its own branch path,
// so staged state deltas cannot collide across siblings while shared session
// data stays readable. Suited to independent I/O bound work such as drafting
// multiple slides against a model provider at once.
type ParallelAgent struct {
	BaseAgent
	children []core.Agent
	timeout  time.Duration
}

// NewParallelAgent creates a new parallel execution coordinator. A zero
// timeout means no additional deadline beyond the run context's own.
func NewParallelAgent(name string, timeout time.Duration, children ...core.Agent) *ParallelAgent {
	return &ParallelAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
		timeout:   timeout,
	}
}

// branchContext clones the parent context and assigns a hierarchical branch
// path ("Parent.Child") ensuring isolation of pending deltas and artifacts.
func (p *ParallelAgent) branchContext(rc *core.RunContext, child core.Agent) *core.RunContext {
	suffix := fmt.Sprintf("%s.%s", p.Name(), child.Name())
	return rc.WithBranch(buildBranchPath(rc.Branch, suffix))
}

// Run implements core.Agent, launching all children concurrently. The first
// error encountered (after all complete) is returned; successful children
// continue even if siblings fail.
func (p *ParallelAgent) Run(rc *core.RunContext) error {
	runCtx := rc
	if p.timeout > 0 {
		ctx, cancel := contextWithTimeout(rc, p.timeout)
		defer cancel()
		runCtx = ctx
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(p.children))

	for _, child := range p.children {
		wg.Add(1)
		go func(c core.Agent) {
			defer wg.Done()
			branchCtx := p.branchContext(runCtx, c)
			if err := c.Run(branchCtx); err != nil {
				errCh <- fmt.Errorf("parallel execution failed for agent %s: %w", c.Name(), err)
			}
		}(child)
	}

	wg.Wait()
	close(errCh)

	if len(errCh) > 0 {
		return <-errCh
	}
	return nil
}
