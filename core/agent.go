package core

// Agent is the primary processing unit of the LucidAI runtime. Agents receive
// their input through a RunContext, process it, and emit events to
// communicate results and state changes back to the engine.
//
// The interface supports both single agents and hierarchical multi-agent
// pipelines (planner/writer/assembler trees) through the sub-agent management
// methods.
//
// Implementations must:
//   - Respect context cancellation for graceful shutdown
//   - Emit events through the provided RunContext
//   - Manage their lifecycle through Start/Stop methods
type Agent interface {
	Name() string
	Start(runCtx *RunContext) error
	Stop(runCtx *RunContext) error
	Run(runCtx *RunContext) error
	SetSubAgents(children ...Agent) error
	SubAgents() []Agent
	Parent() Agent
	FindAgent(name string) Agent
	Description() string
}

// AgentInfo carries identifying details about an agent used in contexts & events.
// Name is the external identifier; Type categorizes implementation (e.g. "planner", "writer").
type AgentInfo struct{ Name, Type string }
