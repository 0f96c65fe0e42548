package models

import "time"

// ComponentStatus values reported by readiness probes.
const (
	ComponentUp   = "up"
	ComponentDown = "down"
)

// ComponentHealth describes one dependency probed by readiness checks.
type ComponentHealth struct {
	Status   string `json:"status"`
	Required bool   `json:"required"`
	Message  string `json:"message,omitempty"`
}

// HealthReport aggregates component checks.
type HealthReport struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	CheckedAt  time.Time                  `json:"checked_at"`
}

// Healthy reports whether every required component is up.
func (r HealthReport) Healthy() bool {
	for _, c := range r.Components {
		if c.Required && c.Status != ComponentUp {
			return false
		}
	}
	return true
}
