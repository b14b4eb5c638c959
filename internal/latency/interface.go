package latency

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../mock/latency/mock_latency.go -package=mock_latency . Prober

// Prober interface for estimating round-trip time to a target
type Prober interface {
	Measure(ctx context.Context, target string) (time.Duration, error)
}
