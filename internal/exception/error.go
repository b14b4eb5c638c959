package exception

import "errors"

// ErrUnresolvableTarget fatal error for a target host that cannot be
// resolved to a connectable address. This is the only error that aborts
// a run before scanning begins.
var ErrUnresolvableTarget = errors.New("unable to resolve target")

// ErrNoRTTSample calibration error for when no latency probe succeeds.
// Callers recover by falling back to a template's static defaults.
var ErrNoRTTSample = errors.New("no rtt samples collected")

// ErrInvalidPortSpec custom error for malformed port specifications
var ErrInvalidPortSpec = errors.New("invalid port specification")
