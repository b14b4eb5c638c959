package fingerprint

import (
	"context"

	"github.com/nibbabob/portdog/internal/timing"
)

//go:generate mockgen -destination=../mock/fingerprint/mock_fingerprint.go -package=mock_fingerprint . Identifier

// Identification is the result of fingerprinting one open port.
// Service is "unknown" when nothing identified the listener; Banner is
// "unresponsive" when every probe stage elicited nothing.
type Identification struct {
	Service string
	Version string
	Banner  string
}

// Identifier interface for turning an open port into a service
// identification. raw optionally carries bytes the scan engine already
// captured from the service's unprompted greeting.
type Identifier interface {
	Identify(
		ctx context.Context,
		target string,
		port uint16,
		raw []byte,
		params timing.Parameters,
	) Identification
}
