package timing

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Template is a named aggressiveness profile controlling the
// speed/reliability trade-off of a scan, selected as 0-5 and
// immutable once a run starts
type Template int

// Enum values for our timing templates, lowest to highest aggression
const (
	Paranoid Template = iota
	Sneaky
	Polite
	Normal
	Aggressive
	Insane
)

// String returns the profile name for a template
func (t Template) String() string {
	switch t {
	case Paranoid:
		return "Paranoid"
	case Sneaky:
		return "Sneaky"
	case Polite:
		return "Polite"
	case Normal:
		return "Normal"
	case Aggressive:
		return "Aggressive"
	case Insane:
		return "Insane"
	default:
		return "Unknown"
	}
}

// ParseTemplate validates a user-selected template value
func ParseTemplate(value int) (Template, error) {
	if value < int(Paranoid) || value > int(Insane) {
		return 0, fmt.Errorf("timing template must be 0-5, got %d", value)
	}

	return Template(value), nil
}

// Parameters are the concrete operational values derived once per run
// from a Template plus any measured RTT. Shared read-only across all
// scan tasks; requires no synchronization after derivation.
type Parameters struct {
	// ConcurrencyLimit caps simultaneous connection attempts
	ConcurrencyLimit int
	// ConnectTimeout bounds each TCP connection attempt
	ConnectTimeout time.Duration
	// ProbeTimeout bounds each fingerprint probe stage
	ProbeTimeout time.Duration
	// PacketRate throttles connection attempts for the stealth
	// profiles; 0 means unlimited
	PacketRate rate.Limit
}
