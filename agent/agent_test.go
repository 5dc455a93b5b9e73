package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taa217/lucidai/core"
)

// recordingAgent notes the order and branch it ran under.
type recordingAgent struct {
	BaseAgent
	mu       *sync.Mutex
	calls    *[]string
	branches *[]string
	fail     bool
	delay    time.Duration
}

func newRecordingAgent(name string, mu *sync.Mutex, calls, branches *[]string) *recordingAgent {
	return &recordingAgent{BaseAgent: NewBaseAgent(name), mu: mu, calls: calls, branches: branches}
}

func (a *recordingAgent) Run(rc *core.RunContext) error {
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	a.mu.Lock()
	*a.calls = append(*a.calls, a.Name())
	*a.branches = append(*a.branches, rc.Branch)
	a.mu.Unlock()
	if a.fail {
		return fmt.Errorf("agent %s failed", a.Name())
	}
	return nil
}

func newTestContext() *core.RunContext {
	return core.NewRunContext(
		context.Background(),
		"s1", "r1",
		core.AgentInfo{Name: "root", Type: "test"},
		core.NewTextContent("user", "go"),
		0,
		make(chan core.Event, 16), nil,
		core.NewSession("s1"), nil, nil, nil, nil,
	)
}

func TestSequentialAgentOrder(t *testing.T) {
	var mu sync.Mutex
	var calls, branches []string

	seq := NewSequentialAgent("pipeline",
		newRecordingAgent("first", &mu, &calls, &branches),
		newRecordingAgent("second", &mu, &calls, &branches),
		newRecordingAgent("third", &mu, &calls, &branches),
	)

	err := seq.Run(newTestContext())

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestSequentialAgentStopsOnError(t *testing.T) {
	var mu sync.Mutex
	var calls, branches []string

	failing := newRecordingAgent("boom", &mu, &calls, &branches)
	failing.fail = true

	seq := NewSequentialAgent("pipeline",
		newRecordingAgent("first", &mu, &calls, &branches),
		failing,
		newRecordingAgent("after", &mu, &calls, &branches),
	)

	err := seq.Run(newTestContext())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Len(t, calls, 2, "agents after the failure must not run")
}

func TestParallelAgentBranchIsolation(t *testing.T) {
	var mu sync.Mutex
	var calls, branches []string

	par := NewParallelAgent("Writers", 0,
		newRecordingAgent("slide-1", &mu, &calls, &branches),
		newRecordingAgent("slide-2", &mu, &calls, &branches),
	)

	err := par.Run(newTestContext())

	require.NoError(t, err)
	require.Len(t, branches, 2)
	seen := map[string]bool{}
	for _, b := range branches {
		seen[b] = true
		assert.True(t, strings.HasPrefix(b, "Writers."), "branch missing parent prefix: %q", b)
	}
	assert.Len(t, seen, 2, "branches must be unique per child")
}

func TestParallelAgentAggregatesFailure(t *testing.T) {
	var mu sync.Mutex
	var calls, branches []string

	failing := newRecordingAgent("bad", &mu, &calls, &branches)
	failing.fail = true

	par := NewParallelAgent("Writers", 0,
		newRecordingAgent("good", &mu, &calls, &branches),
		failing,
	)

	err := par.Run(newTestContext())

	require.Error(t, err)
	assert.Len(t, calls, 2, "healthy sibling should still run")
}

func TestBaseAgentHierarchy(t *testing.T) {
	var mu sync.Mutex
	var calls, branches []string

	child := newRecordingAgent("child", &mu, &calls, &branches)
	grandchild := newRecordingAgent("grandchild", &mu, &calls, &branches)
	require.NoError(t, child.SetSubAgents(grandchild))

	root := NewSequentialAgent("root", child)
	require.NoError(t, root.SetSubAgents(child))

	found := root.FindAgent("grandchild")
	require.NotNil(t, found)
	assert.Equal(t, "grandchild", found.Name())
	assert.NotNil(t, grandchild.Parent())
}

func TestBaseAgentLifecycle(t *testing.T) {
	var mu sync.Mutex
	var calls, branches []string
	a := newRecordingAgent("a", &mu, &calls, &branches)

	rc := newTestContext()
	require.NoError(t, a.Start(rc))
	assert.Error(t, a.Start(rc), "double start should fail")
	require.NoError(t, a.Stop(rc))
	assert.Error(t, a.Stop(rc), "double stop should fail")
}

func TestBuildBranchPath(t *testing.T) {
	assert.Equal(t, "Writers.slide-1", buildBranchPath("", "Writers.slide-1"))
	assert.Equal(t, "Deck.Writers.slide-1", buildBranchPath("Deck", "Writers.slide-1"))
}
