package scan

import (
	"errors"
	"net"
	"syscall"
)

// classify maps a dial error onto a port state. An active refusal is
// the only signal for Closed; timeouts, unreachable networks and
// descriptor exhaustion all classify Filtered so the scan degrades
// instead of crashing.
func classify(err error) State {
	if err == nil {
		return StateOpen
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return StateClosed
	}

	var netErr net.Error

	if errors.As(err, &netErr) && netErr.Timeout() {
		return StateFiltered
	}

	return StateFiltered
}
