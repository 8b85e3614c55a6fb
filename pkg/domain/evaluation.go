package domain

import "time"

// StatusKind is the kind of report a sensor tick produces.
// Every tick currently ends in a skip; the sensor never requests runs itself.
type StatusKind string

const (
	StatusSkip StatusKind = "skip"
)

// Skip messages reported by the sensor.
const (
	SkipFileNotFound = "file not found"
	SkipNoChanges    = "no changes detected"
)

// Status is the human-readable outcome of a tick.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

// Skip builds a skip status.
func Skip(message string) Status {
	return Status{Kind: StatusSkip, Message: message}
}

// Evaluation records what a single sensor tick observed and decided.
type Evaluation struct {
	Sensor   string `json:"sensor"`
	Status   Status `json:"status"`
	Manifest string `json:"manifest"`

	// CurrentMtime and LastMtime are seconds since the epoch.
	CurrentMtime float64 `json:"current_mtime"`
	LastMtime    float64 `json:"last_mtime"`

	Changed        bool           `json:"changed"`
	Reloaded       bool           `json:"reloaded"`
	Outcome        *ReloadOutcome `json:"outcome,omitempty"`
	CursorAdvanced bool           `json:"cursor_advanced"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// ReloadIssued reports whether the tick sent a reload request.
func (e *Evaluation) ReloadIssued() bool {
	return e.Outcome != nil
}
