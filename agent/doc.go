// Package agent provides the building blocks for composing multi-agent
// workflows: BaseAgent supplies shared lifecycle and hierarchy management,
// SequentialAgent chains children with shared state, and ParallelAgent fans
// children out concurrently with branch-isolated contexts.
package agent
