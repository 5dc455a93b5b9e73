// Package core defines the shared contracts of the LucidAI runtime: the
// Agent and Engine interfaces, the Event/Content types exchanged between
// agents and callers, sessions with their stores, and the RunContext passed
// to every agent run.
//
// Concrete implementations live in sibling packages (engine, agent, session,
// artifact, memory); depend on the interfaces here to keep wiring pluggable
// without dependency cycles.
package core
