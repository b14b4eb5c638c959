package timing

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/nibbabob/portdog/internal/logger"
)

// Static profile values. Aggressive is the auto-calibrating profile:
// its static entry is the conservative fallback used when latency
// calibration fails entirely.
var staticProfiles = map[Template]Parameters{
	Paranoid:   {ConcurrencyLimit: 5, ConnectTimeout: 15 * time.Second, PacketRate: rate.Limit(1)},
	Sneaky:     {ConcurrencyLimit: 100, ConnectTimeout: 5 * time.Second, PacketRate: rate.Limit(10)},
	Polite:     {ConcurrencyLimit: 400, ConnectTimeout: 1200 * time.Millisecond},
	Normal:     {ConcurrencyLimit: 1000, ConnectTimeout: 800 * time.Millisecond},
	Aggressive: {ConcurrencyLimit: 500, ConnectTimeout: 3 * time.Second},
	Insane:     {ConcurrencyLimit: 5000, ConnectTimeout: 300 * time.Millisecond},
}

// Bounds for the Aggressive auto-curve. The timeout ceiling equals the
// Normal profile's connect timeout so a higher template can never end
// up slower than a lower one, whatever the measured RTT.
const (
	autoTimeoutFloor = 500 * time.Millisecond

	rttFastThreshold   = 100 * time.Millisecond
	rttMediumThreshold = 250 * time.Millisecond

	concurrencyFast   = 2500
	concurrencyMedium = 1800
	concurrencySlow   = 1000

	// fdHeadroom file descriptors left free for everything that is
	// not a scan socket (stdio, log file, config file)
	fdHeadroom = 50
)

// Derive maps a timing template plus measured RTT onto concrete scan
// parameters. measured reports whether rtt holds a real calibration
// value; when false the template's static defaults are used, so a
// fully unreachable target never fails derivation. The result is
// capped below the platform's file descriptor limit.
func Derive(template Template, rtt time.Duration, measured bool) Parameters {
	log := logger.New()

	params, ok := staticProfiles[template]

	if !ok {
		params = staticProfiles[Normal]
	}

	if template == Aggressive && measured {
		params = deriveFromRTT(rtt)
	}

	params.ProbeTimeout = probeTimeoutFor(params.ConnectTimeout)

	if capped, limit := capConcurrency(params.ConcurrencyLimit); capped < params.ConcurrencyLimit {
		log.Warn().
			Int("requested", params.ConcurrencyLimit).
			Int("capped", capped).
			Uint64("fdLimit", limit).
			Msg("capping concurrency to respect file descriptor limit")

		params.ConcurrencyLimit = capped
	}

	log.Debug().
		Str("template", template.String()).
		Int("concurrency", params.ConcurrencyLimit).
		Dur("connectTimeout", params.ConnectTimeout).
		Dur("probeTimeout", params.ProbeTimeout).
		Msg("derived timing parameters")

	return params
}

// deriveFromRTT implements the auto-curve: connect timeout is a
// multiple of the measured RTT plus margin, clamped to a usable floor
// and to the Normal profile's timeout as ceiling; concurrency steps
// down as the link gets slower.
func deriveFromRTT(rtt time.Duration) Parameters {
	timeout := rtt*5 + 400*time.Millisecond

	ceiling := staticProfiles[Normal].ConnectTimeout

	if timeout < autoTimeoutFloor {
		timeout = autoTimeoutFloor
	}

	if timeout > ceiling {
		timeout = ceiling
	}

	concurrency := concurrencySlow

	switch {
	case rtt < rttFastThreshold:
		concurrency = concurrencyFast
	case rtt < rttMediumThreshold:
		concurrency = concurrencyMedium
	}

	return Parameters{
		ConcurrencyLimit: concurrency,
		ConnectTimeout:   timeout,
	}
}

// probeTimeoutFor scales the fingerprint stage timeout off the connect
// timeout, bounded to keep probing useful on fast profiles and bounded
// above so a generous connect timeout never stalls fingerprinting.
func probeTimeoutFor(connectTimeout time.Duration) time.Duration {
	probe := connectTimeout * 4

	if probe < time.Second {
		probe = time.Second
	}

	if probe > 4*time.Second {
		probe = 4 * time.Second
	}

	return probe
}
