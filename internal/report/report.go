package report

import (
	"encoding/json"
	"time"

	"github.com/nibbabob/portdog/internal/scan"
)

// Record is the final per-port entry: scan verdict plus whatever the
// fingerprint stage identified. Closed and filtered ports carry no
// identification but are reported, not omitted.
type Record struct {
	Port    uint16 `json:"port"`
	State   string `json:"state"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
	Banner  string `json:"banner,omitempty"`
}

// Report is the complete result set of one run, ordered by the port
// set's canonical order. Owned by the run and never mutated after
// hand-off to the presentation layer.
type Report struct {
	Target  string
	Elapsed time.Duration
	Records []Record
}

// MarshalJSON reports elapsed time in milliseconds rather than the
// nanosecond count a raw time.Duration would serialize to
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Target    string   `json:"target"`
		ElapsedMS int64    `json:"elapsed_ms"`
		Records   []Record `json:"ports"`
	}{
		Target:    r.Target,
		ElapsedMS: r.Elapsed.Milliseconds(),
		Records:   r.Records,
	})
}

// Summary aggregates record states for one-line reporting
type Summary struct {
	Open     int
	Closed   int
	Filtered int
}

// Summarize tallies the report's records by state
func (r *Report) Summarize() Summary {
	var s Summary

	for _, record := range r.Records {
		switch scan.State(record.State) {
		case scan.StateOpen:
			s.Open++
		case scan.StateClosed:
			s.Closed++
		case scan.StateFiltered:
			s.Filtered++
		}
	}

	return s
}

// OpenRecords returns only the open-port entries, in order
func (r *Report) OpenRecords() []Record {
	open := []Record{}

	for _, record := range r.Records {
		if scan.State(record.State) == scan.StateOpen {
			open = append(open, record)
		}
	}

	return open
}
