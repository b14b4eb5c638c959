package scan

import "time"

// State is the tri-state outcome of a connection attempt. Filtered and
// Closed carry different information (no response vs active refusal)
// and are never conflated.
type State string

const (
	StateOpen     State = "open"
	StateClosed   State = "closed"
	StateFiltered State = "filtered"
)

// PortOutcome is the scan engine's verdict for a single port, created
// exactly once per port. Raw holds any bytes the service volunteered
// immediately after connect and is only populated for open ports.
type PortOutcome struct {
	Port  uint16
	State State
	Raw   []byte
}

// ProgressEvent is an ephemeral snapshot of scan progress. Completed
// is monotonically increasing; intermediate events may be dropped but
// the final event (Completed == Total) is always delivered.
type ProgressEvent struct {
	Completed int
	Total     int
	Elapsed   time.Duration
}
