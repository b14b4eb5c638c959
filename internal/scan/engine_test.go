package scan_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/nibbabob/portdog/internal/event"
	"github.com/nibbabob/portdog/internal/portspec"
	"github.com/nibbabob/portdog/internal/scan"
	"github.com/nibbabob/portdog/internal/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() timing.Parameters {
	return timing.Parameters{
		ConcurrencyLimit: 50,
		ConnectTimeout:   500 * time.Millisecond,
		ProbeTimeout:     time.Second,
	}
}

// openListener returns a listening socket and its port
func openListener(t *testing.T) (net.Listener, uint16) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { listener.Close() })

	return listener, uint16(listener.Addr().(*net.TCPAddr).Port)
}

// closedPort grabs an ephemeral port and releases it so connecting is
// actively refused
func closedPort(t *testing.T) uint16 {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := uint16(listener.Addr().(*net.TCPAddr).Port)
	listener.Close()

	return port
}

func TestEngineScan(t *testing.T) {
	t.Run("classifies open and closed ports", func(st *testing.T) {
		_, open := openListener(st)
		closed := closedPort(st)

		ports, err := portspec.Parse(fmt.Sprintf("%d,%d", open, closed))
		require.NoError(st, err)

		engine := scan.NewEngine(event.NewEventManager())

		outcomes, err := engine.Scan(context.Background(), "127.0.0.1", ports, testParams())

		assert.NoError(st, err)
		require.Len(st, outcomes, 2)

		byPort := map[uint16]scan.PortOutcome{}
		for _, o := range outcomes {
			byPort[o.Port] = o
		}

		assert.Equal(st, scan.StateOpen, byPort[open].State)
		assert.Equal(st, scan.StateClosed, byPort[closed].State)
	})

	t.Run("classifies unreachable targets as filtered", func(st *testing.T) {
		ports, err := portspec.Parse("80,443")
		require.NoError(st, err)

		engine := scan.NewEngine(event.NewEventManager())

		// RFC 5737 TEST-NET-1 address: connection attempts go nowhere
		params := testParams()
		params.ConnectTimeout = 250 * time.Millisecond

		outcomes, err := engine.Scan(context.Background(), "192.0.2.1", ports, params)

		assert.NoError(st, err)
		require.Len(st, outcomes, 2)

		for _, o := range outcomes {
			assert.Equal(st, scan.StateFiltered, o.State)
		}
	})

	t.Run("captures passive banners on open ports", func(st *testing.T) {
		listener, open := openListener(st)

		go func() {
			for {
				conn, err := listener.Accept()
				if err != nil {
					return
				}
				fmt.Fprint(conn, "SSH-2.0-OpenSSH_6.6.1\r\n")
				conn.Close()
			}
		}()

		ports, err := portspec.Parse(fmt.Sprintf("%d", open))
		require.NoError(st, err)

		engine := scan.NewEngine(event.NewEventManager())

		outcomes, err := engine.Scan(context.Background(), "127.0.0.1", ports, testParams())

		assert.NoError(st, err)
		require.Len(st, outcomes, 1)
		assert.Equal(st, scan.StateOpen, outcomes[0].State)
		assert.Contains(st, string(outcomes[0].Raw), "SSH-2.0-OpenSSH_6.6.1")
	})

	t.Run("returns outcomes in canonical port order", func(st *testing.T) {
		_, open := openListener(st)

		// mix an open port into closed ones so completion order and
		// canonical order diverge
		spec := fmt.Sprintf("%d,%d,%d", closedPort(st), open, closedPort(st))

		ports, err := portspec.Parse(spec)
		require.NoError(st, err)

		engine := scan.NewEngine(event.NewEventManager())

		outcomes, err := engine.Scan(context.Background(), "127.0.0.1", ports, testParams())

		assert.NoError(st, err)
		require.Len(st, outcomes, ports.Len())

		for i, o := range outcomes {
			assert.Equal(st, ports.Ports()[i], o.Port)
		}
	})

	t.Run("never reports ports outside the set", func(st *testing.T) {
		ports, err := portspec.Parse("22,80")
		require.NoError(st, err)

		engine := scan.NewEngine(event.NewEventManager())

		outcomes, err := engine.Scan(context.Background(), "127.0.0.1", ports, testParams())

		assert.NoError(st, err)

		for _, o := range outcomes {
			assert.True(st, ports.Contains(o.Port))
		}
	})

	t.Run("emits a terminal progress event", func(st *testing.T) {
		events := event.NewEventManager()

		listener := make(chan event.Event, 64)
		events.RegisterListener(event.ProgressEventType, listener)

		ports, err := portspec.Parse(fmt.Sprintf("%d,%d", closedPort(st), closedPort(st)))
		require.NoError(st, err)

		engine := scan.NewEngine(events)

		outcomes, err := engine.Scan(context.Background(), "127.0.0.1", ports, testParams())
		assert.NoError(st, err)

		var last scan.ProgressEvent
		prev := -1

	drain:
		for {
			select {
			case evt := <-listener:
				progress := evt.Payload.(scan.ProgressEvent)

				// completed counts must be monotonically increasing
				assert.GreaterOrEqual(st, progress.Completed, prev)
				prev = progress.Completed
				last = progress
			default:
				break drain
			}
		}

		assert.Equal(st, len(outcomes), last.Completed)
		assert.Equal(st, ports.Len(), last.Total)
	})

	t.Run("cancellation returns a partial result", func(st *testing.T) {
		ports, err := portspec.Parse("1-200")
		require.NoError(st, err)

		// pacing keeps the run going long enough for cancellation to
		// land mid-scan
		params := testParams()
		params.PacketRate = 50

		ctx, cancel := context.WithCancel(context.Background())

		engine := scan.NewEngine(event.NewEventManager())

		done := make(chan struct{})

		var outcomes []scan.PortOutcome
		var scanErr error

		go func() {
			outcomes, scanErr = engine.Scan(ctx, "127.0.0.1", ports, params)
			close(done)
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			st.Fatal("scan did not terminate after cancellation")
		}

		assert.ErrorIs(st, scanErr, context.Canceled)
		assert.Less(st, len(outcomes), ports.Len())
	})
}
