// Package session provides SessionStore implementations: a volatile
// in-memory store for tests and single-process deployments, and a Redis
// backed store for deployments where conversation state must survive
// restarts or be shared across replicas.
package session
