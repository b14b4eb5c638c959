package latency

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/nibbabob/portdog/internal/exception"
	"github.com/nibbabob/portdog/internal/logger"
)

// DefaultSamplePorts commonly-open ports used for calibration probes
var DefaultSamplePorts = []uint16{80, 443, 22, 53, 3389, 8080, 1337, 31337}

// sampleTimeout fixed per-probe timeout; calibration must stay bounded
// regardless of how slow the target is
const sampleTimeout = 2 * time.Second

// TCPProber estimates RTT by timing full TCP connection attempts
// against a small fixed set of sample ports
type TCPProber struct {
	// SamplePorts can be overridden before the first Measure call
	SamplePorts []uint16
	// Timeout applied to each individual sample connection
	Timeout time.Duration

	log logger.Logger
}

// NewTCPProber returns a TCPProber using the default calibration set
func NewTCPProber() *TCPProber {
	return &TCPProber{
		SamplePorts: DefaultSamplePorts,
		Timeout:     sampleTimeout,
		log:         logger.New(),
	}
}

// Measure dials every sample port concurrently and returns the average
// RTT of the successful attempts. It returns exception.ErrNoRTTSample
// when every sample fails or times out, which callers must treat as
// distinct from a zero-latency measurement. No retries are attempted.
func (p *TCPProber) Measure(ctx context.Context, target string) (time.Duration, error) {
	dialer := net.Dialer{Timeout: p.Timeout}

	var mux sync.Mutex
	var wg sync.WaitGroup

	rtts := []time.Duration{}

	for _, port := range p.SamplePorts {
		wg.Add(1)

		go func(port uint16) {
			defer wg.Done()

			addr := net.JoinHostPort(target, strconv.Itoa(int(port)))
			start := time.Now()

			conn, err := dialer.DialContext(ctx, "tcp", addr)

			if err != nil {
				return
			}

			elapsed := time.Since(start)
			conn.Close()

			mux.Lock()
			rtts = append(rtts, elapsed)
			mux.Unlock()
		}(port)
	}

	wg.Wait()

	if len(rtts) == 0 {
		return 0, exception.ErrNoRTTSample
	}

	var total time.Duration

	for _, rtt := range rtts {
		total += rtt
	}

	avg := total / time.Duration(len(rtts))

	p.log.Debug().
		Int("samples", len(rtts)).
		Dur("avgRTT", avg).
		Msg("latency calibration complete")

	return avg, nil
}
