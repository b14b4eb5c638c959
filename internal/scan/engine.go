package scan

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/nibbabob/portdog/internal/event"
	"github.com/nibbabob/portdog/internal/logger"
	"github.com/nibbabob/portdog/internal/portspec"
	"github.com/nibbabob/portdog/internal/timing"
)

// passiveReadWindow bounds the opportunistic banner read performed on
// open connections; services that greet (ssh, ftp, smtp) do so well
// within this window
const passiveReadWindow = 300 * time.Millisecond

// passiveReadBufferSize matches the fingerprint engine's read size
const passiveReadBufferSize = 2048

// Engine implements Scanner with a semaphore-bounded pool of
// connection attempts. In-flight attempts never exceed the derived
// concurrency limit regardless of port-set size.
type Engine struct {
	events event.Manager
	log    logger.Logger
}

// NewEngine returns a scan engine publishing progress to events
func NewEngine(events event.Manager) *Engine {
	return &Engine{
		events: events,
		log:    logger.New(),
	}
}

// Scan attempts one TCP connection per port in the set and classifies
// each outcome. Outcomes complete in arbitrary order; the returned
// slice is always in the set's canonical order. Cancelling ctx stops
// new attempts, drains in-flight ones, and returns the partial results
// along with the context error.
func (e *Engine) Scan(
	ctx context.Context,
	target string,
	ports *portspec.PortSpec,
	params timing.Parameters,
) ([]PortOutcome, error) {
	total := ports.Len()
	start := time.Now()

	e.log.Info().
		Str("target", target).
		Int("ports", total).
		Int("concurrency", params.ConcurrencyLimit).
		Msg("starting scan")

	var limiter *rate.Limiter

	if params.PacketRate > 0 {
		limiter = rate.NewLimiter(params.PacketRate, 1)
	}

	sem := semaphore.NewWeighted(int64(params.ConcurrencyLimit))

	var wg sync.WaitGroup
	var mux sync.Mutex

	outcomes := map[uint16]PortOutcome{}
	completed := 0

	for _, port := range ports.Ports() {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			// run was cancelled; stop issuing new attempts
			break
		}

		wg.Add(1)

		go func(port uint16) {
			defer wg.Done()
			defer sem.Release(1)

			outcome, ok := e.scanPort(ctx, target, port, params)

			if !ok {
				return
			}

			mux.Lock()
			outcomes[port] = outcome
			completed++

			// emitting under the lock keeps Completed monotonic from
			// the listener's point of view; Send never blocks
			e.events.Send(event.Event{
				Type: event.ProgressEventType,
				Payload: ProgressEvent{
					Completed: completed,
					Total:     total,
					Elapsed:   time.Since(start),
				},
			})
			mux.Unlock()
		}(port)
	}

	wg.Wait()

	mux.Lock()
	final := ProgressEvent{
		Completed: completed,
		Total:     total,
		Elapsed:   time.Since(start),
	}
	mux.Unlock()

	// the terminal progress event is never dropped
	e.events.SendSync(event.Event{
		Type:    event.ProgressEventType,
		Payload: final,
	})

	results := make([]PortOutcome, 0, len(outcomes))

	for _, port := range ports.Ports() {
		if outcome, ok := outcomes[port]; ok {
			results = append(results, outcome)
		}
	}

	e.log.Info().
		Int("completed", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("scan finished")

	if err := ctx.Err(); err != nil {
		return results, err
	}

	return results, nil
}

// scanPort performs the single authoritative connection attempt for a
// port. It reports ok=false only when the run itself was cancelled
// mid-attempt, in which case no outcome exists for the port.
func (e *Engine) scanPort(
	ctx context.Context,
	target string,
	port uint16,
	params timing.Parameters,
) (PortOutcome, bool) {
	addr := net.JoinHostPort(target, strconv.Itoa(int(port)))

	dialer := net.Dialer{Timeout: params.ConnectTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)

	if err != nil {
		if ctx.Err() != nil {
			return PortOutcome{}, false
		}

		return PortOutcome{Port: port, State: classify(err)}, true
	}

	defer conn.Close()

	return PortOutcome{
		Port:  port,
		State: StateOpen,
		Raw:   passiveRead(conn),
	}, true
}

// passiveRead grabs whatever the service volunteers right after
// connect so greeting protocols can be fingerprinted without a second
// connection. Silence is normal and returns nil.
func passiveRead(conn net.Conn) []byte {
	if err := conn.SetReadDeadline(time.Now().Add(passiveReadWindow)); err != nil {
		return nil
	}

	buffer := make([]byte, passiveReadBufferSize)

	n, err := conn.Read(buffer)

	if err != nil || n == 0 {
		return nil
	}

	return buffer[:n]
}
