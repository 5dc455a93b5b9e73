// Package health provides the readiness model shared by the launcher and the
// individual services: a Status payload served on GET /health, and a Poller
// that blocks until a spawned service reports healthy or a retry budget is
// exhausted.
package health

// Service health states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Status is the JSON payload a service returns from its health endpoint.
type Status struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Healthy creates a healthy status.
func Healthy(message string) Status {
	return Status{Status: StatusHealthy, Message: message}
}

// Degraded creates a degraded status: serving, but with reduced capability.
func Degraded(message string) Status {
	return Status{Status: StatusDegraded, Message: message}
}

// Unhealthy creates an unhealthy status.
func Unhealthy(message string) Status {
	return Status{Status: StatusUnhealthy, Message: message}
}

// IsHealthy reports whether the status signals full health.
func (s Status) IsHealthy() bool { return s.Status == StatusHealthy }
