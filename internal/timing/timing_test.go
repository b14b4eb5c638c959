package timing_test

import (
	"testing"
	"time"

	"github.com/nibbabob/portdog/internal/timing"
	"github.com/stretchr/testify/assert"
)

func TestParseTemplate(t *testing.T) {
	t.Run("accepts 0 through 5", func(st *testing.T) {
		for v := 0; v <= 5; v++ {
			tpl, err := timing.ParseTemplate(v)

			assert.NoError(st, err)
			assert.Equal(st, timing.Template(v), tpl)
		}
	})

	t.Run("rejects out of range values", func(st *testing.T) {
		for _, v := range []int{-1, 6, 100} {
			_, err := timing.ParseTemplate(v)
			assert.Error(st, err)
		}
	})
}

func TestDerive(t *testing.T) {
	t.Run("returns static profiles for fixed templates", func(st *testing.T) {
		params := timing.Derive(timing.Normal, 0, false)

		assert.Equal(st, 800*time.Millisecond, params.ConnectTimeout)
		assert.Greater(st, params.ConcurrencyLimit, 0)

		insane := timing.Derive(timing.Insane, 0, false)

		assert.Equal(st, 300*time.Millisecond, insane.ConnectTimeout)
	})

	t.Run("always produces usable probe timeout", func(st *testing.T) {
		for v := 0; v <= 5; v++ {
			params := timing.Derive(timing.Template(v), 50*time.Millisecond, true)

			assert.GreaterOrEqual(st, params.ProbeTimeout, time.Second)
			assert.LessOrEqual(st, params.ProbeTimeout, 4*time.Second)
		}
	})

	t.Run("auto mode scales concurrency with measured rtt", func(st *testing.T) {
		fast := timing.Derive(timing.Aggressive, 20*time.Millisecond, true)
		medium := timing.Derive(timing.Aggressive, 150*time.Millisecond, true)
		slow := timing.Derive(timing.Aggressive, 400*time.Millisecond, true)

		assert.GreaterOrEqual(st, fast.ConcurrencyLimit, medium.ConcurrencyLimit)
		assert.GreaterOrEqual(st, medium.ConcurrencyLimit, slow.ConcurrencyLimit)
	})

	t.Run("auto mode clamps connect timeout to floor and ceiling", func(st *testing.T) {
		// 1ms rtt would derive 405ms; the floor lifts it to 500ms
		fast := timing.Derive(timing.Aggressive, time.Millisecond, true)
		assert.Equal(st, 500*time.Millisecond, fast.ConnectTimeout)

		// 2s rtt would derive >10s; the ceiling caps it at the
		// Normal profile's timeout
		slow := timing.Derive(timing.Aggressive, 2*time.Second, true)
		normal := timing.Derive(timing.Normal, 2*time.Second, true)
		assert.LessOrEqual(st, slow.ConnectTimeout, normal.ConnectTimeout)
	})

	t.Run("falls back to static defaults without a measurement", func(st *testing.T) {
		params := timing.Derive(timing.Aggressive, 0, false)

		assert.Equal(st, 3*time.Second, params.ConnectTimeout)
		assert.Greater(st, params.ConcurrencyLimit, 0)
	})

	t.Run("higher templates never scan slower or narrower", func(st *testing.T) {
		rtt := 50 * time.Millisecond

		prev := timing.Derive(timing.Paranoid, rtt, true)

		for v := 1; v <= 5; v++ {
			next := timing.Derive(timing.Template(v), rtt, true)

			assert.GreaterOrEqual(
				st,
				next.ConcurrencyLimit,
				prev.ConcurrencyLimit,
				"template %d concurrency", v,
			)
			assert.LessOrEqual(
				st,
				next.ConnectTimeout,
				prev.ConnectTimeout,
				"template %d timeout", v,
			)

			prev = next
		}
	})

	t.Run("stealth profiles carry a packet rate limit", func(st *testing.T) {
		paranoid := timing.Derive(timing.Paranoid, 0, false)
		normal := timing.Derive(timing.Normal, 0, false)

		assert.Greater(st, float64(paranoid.PacketRate), 0.0)
		assert.Equal(st, float64(0), float64(normal.PacketRate))
	})
}
