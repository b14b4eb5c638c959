package core

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nibbabob/portdog/internal/config"
	"github.com/nibbabob/portdog/internal/event"
	"github.com/nibbabob/portdog/internal/fingerprint"
	"github.com/nibbabob/portdog/internal/latency"
	"github.com/nibbabob/portdog/internal/logger"
	"github.com/nibbabob/portdog/internal/portspec"
	"github.com/nibbabob/portdog/internal/report"
	"github.com/nibbabob/portdog/internal/scan"
	"github.com/nibbabob/portdog/internal/target"
	"github.com/nibbabob/portdog/internal/timing"
)

// Core represents one scan run: calibration, port enumeration and
// fingerprinting wired together behind a single cancelable context
type Core struct {
	ctx        context.Context
	cancel     context.CancelFunc
	conf       config.Config
	prober     latency.Prober
	scanner    scan.Scanner
	identifier fingerprint.Identifier
	events     event.Manager
	log        logger.Logger
}

// New returns a new core module for the given configuration and
// collaborators
func New(
	conf config.Config,
	prober latency.Prober,
	scanner scan.Scanner,
	identifier fingerprint.Identifier,
	events event.Manager,
) *Core {
	ctx, cancel := context.WithCancel(context.Background())

	return &Core{
		ctx:        ctx,
		cancel:     cancel,
		conf:       conf,
		prober:     prober,
		scanner:    scanner,
		identifier: identifier,
		events:     events,
		log:        logger.New(),
	}
}

// Events exposes the run's event manager so presentation layers can
// register progress listeners
func (c *Core) Events() event.Manager {
	return c.events
}

// Stop cancels the run; in-flight work drains and Run returns a
// partial report
func (c *Core) Stop() {
	c.cancel()
}

// Run executes the full pipeline against one target: resolve,
// calibrate, derive timing, scan, fingerprint the open subset, and
// assemble the final report. Target resolution is the only fatal
// error; a cancelled run returns the partial report along with the
// context's error.
func (c *Core) Run(
	host string,
	ports *portspec.PortSpec,
	template timing.Template,
) (*report.Report, error) {
	start := time.Now()

	resolved, err := target.Resolve(c.ctx, host)

	if err != nil {
		c.events.ReportFatalError(err)
		return nil, err
	}

	params := c.deriveParams(resolved, template)

	outcomes, scanErr := c.scanner.Scan(c.ctx, resolved, ports, params)

	identifications := map[uint16]fingerprint.Identification{}

	if scanErr == nil {
		identifications = c.fingerprintOpen(resolved, outcomes, params)
	}

	records := make([]report.Record, 0, len(outcomes))

	for _, outcome := range outcomes {
		record := report.Record{
			Port:  outcome.Port,
			State: string(outcome.State),
		}

		if ident, ok := identifications[outcome.Port]; ok {
			record.Service = ident.Service
			record.Version = ident.Version
			record.Banner = ident.Banner
		}

		records = append(records, record)
	}

	return &report.Report{
		Target:  resolved,
		Elapsed: time.Since(start),
		Records: records,
	}, scanErr
}

// deriveParams calibrates against the target when the template calls
// for it. Calibration failure is recovered locally by falling back to
// the template's static defaults; it never fails the run.
func (c *Core) deriveParams(resolved string, template timing.Template) timing.Parameters {
	measured := false

	var rtt time.Duration

	if template == timing.Aggressive {
		c.log.Info().Str("target", resolved).Msg("probing target latency")

		value, err := c.prober.Measure(c.ctx, resolved)

		if err != nil {
			c.events.ReportError(err)

			c.log.Warn().
				Err(err).
				Msg("latency calibration failed, using static defaults")
		} else {
			rtt = value
			measured = true
		}
	}

	return timing.Derive(template, rtt, measured)
}

// fingerprintOpen identifies each open port under the same concurrency
// budget the scan ran with
func (c *Core) fingerprintOpen(
	resolved string,
	outcomes []scan.PortOutcome,
	params timing.Parameters,
) map[uint16]fingerprint.Identification {
	identifications := map[uint16]fingerprint.Identification{}

	sem := semaphore.NewWeighted(int64(params.ConcurrencyLimit))

	var wg sync.WaitGroup
	var mux sync.Mutex

	for _, outcome := range outcomes {
		if outcome.State != scan.StateOpen {
			continue
		}

		if err := sem.Acquire(c.ctx, 1); err != nil {
			break
		}

		wg.Add(1)

		go func(outcome scan.PortOutcome) {
			defer wg.Done()
			defer sem.Release(1)

			ident := c.identifier.Identify(
				c.ctx,
				resolved,
				outcome.Port,
				outcome.Raw,
				params,
			)

			mux.Lock()
			identifications[outcome.Port] = ident
			mux.Unlock()
		}(outcome)
	}

	wg.Wait()

	return identifications
}
