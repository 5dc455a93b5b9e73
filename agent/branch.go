package agent

import (
	"context"
	"time"

	"github.com/taa217/lucidai/core"
)

// buildBranchPath joins a parent branch path with a suffix using dot
// separation, yielding hierarchical paths like "Writers.slide-2".
func buildBranchPath(parent, suffix string) string {
	if parent == "" {
		return suffix
	}
	return parent + "." + suffix
}

// contextWithTimeout clones the run context and bounds its ambient Context
// with the given timeout. The returned cancel func must be called to release
// the timer.
func contextWithTimeout(rc *core.RunContext, timeout time.Duration) (*core.RunContext, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(rc.Context, timeout)
	clone := rc.Clone()
	clone.Context = ctx
	return clone, cancel
}
