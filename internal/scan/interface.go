package scan

import (
	"context"

	"github.com/nibbabob/portdog/internal/portspec"
	"github.com/nibbabob/portdog/internal/timing"
)

//go:generate mockgen -destination=../mock/scan/mock_scan.go -package=mock_scan . Scanner

// Scanner interface for enumerating port states on a target
type Scanner interface {
	Scan(
		ctx context.Context,
		target string,
		ports *portspec.PortSpec,
		params timing.Parameters,
	) ([]PortOutcome, error)
}
