package domain

import "time"

// Conflict records a remote record that overwrote a local category.
type Conflict struct {
	Text           string `json:"text"`
	LocalCategory  string `json:"localCategory"`
	RemoteCategory string `json:"remoteCategory"`
}

// Message is the user-facing conflict notice.
func (c Conflict) Message() string {
	return `Conflict detected for quote: "` + c.Text + `". Server version will be used.`
}

// SyncResult summarises one reconciliation cycle.
type SyncResult struct {
	CycleID   string        `json:"cycleId"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Fetched   int           `json:"fetched"`
	Added     int           `json:"added"`
	Updated   int           `json:"updated"`
	Conflicts []Conflict    `json:"conflicts,omitempty"`
	Saved     bool          `json:"saved"`
	Skipped   bool          `json:"skipped,omitempty"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
}

// Changed reports whether the cycle mutated the store.
func (r SyncResult) Changed() bool {
	return r.Added > 0 || r.Updated > 0
}

// Outcome is a low-cardinality label for metrics and logs.
func (r SyncResult) Outcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case IsUnavailable(r.Err):
		return "unavailable"
	case IsMalformedResponse(r.Err):
		return "malformed"
	case IsPersistence(r.Err):
		return "persistence_error"
	case r.Err != nil:
		return "error"
	case r.Changed():
		return "merged"
	default:
		return "noop"
	}
}
