package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/nibbabob/portdog/internal/event"
	"github.com/nibbabob/portdog/internal/scan"
)

// Progress renders scan progress on stderr, fed by the run's event
// manager. The listener channel is buffered and the engine never
// blocks on it; dropped intermediate ticks are fine since the terminal
// event always arrives.
type Progress struct {
	bar        *progressbar.ProgressBar
	events     event.Manager
	listener   chan event.Event
	listenerID int
	done       chan struct{}
}

// NewProgress registers a progress listener and starts rendering
func NewProgress(events event.Manager, total int) *Progress {
	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(65*time.Millisecond),
	)

	p := &Progress{
		bar:      bar,
		events:   events,
		listener: make(chan event.Event, 64),
		done:     make(chan struct{}),
	}

	p.listenerID = events.RegisterListener(event.ProgressEventType, p.listener)

	go p.watch()

	return p
}

// Stop finishes rendering. Must be called after the run completes so
// no further events race the listener teardown.
func (p *Progress) Stop() {
	p.events.RemoveListener(p.listenerID)
	close(p.listener)

	<-p.done

	_ = p.bar.Finish()
	fmt.Fprintln(os.Stderr)
}

func (p *Progress) watch() {
	defer close(p.done)

	for evt := range p.listener {
		progress, ok := evt.Payload.(scan.ProgressEvent)

		if !ok {
			continue
		}

		_ = p.bar.Set(progress.Completed)
	}
}
