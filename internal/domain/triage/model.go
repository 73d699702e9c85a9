package triage

import "time"

// FacilityContext is the caller-supplied situational input to an evaluation.
// Read-only; CurrentTime is injected so prompt construction stays
// deterministic under test.
type FacilityContext struct {
	Name        string    `json:"name"`
	QueueLength int       `json:"queue_length"`
	CurrentTime time.Time `json:"current_time"`
}
