package core

import (
	"github.com/nibbabob/portdog/internal/config"
	"github.com/nibbabob/portdog/internal/event"
	"github.com/nibbabob/portdog/internal/fingerprint"
	"github.com/nibbabob/portdog/internal/latency"
	"github.com/nibbabob/portdog/internal/scan"
	"github.com/nibbabob/portdog/internal/signature"
)

// CreateRunCore creates and returns a new instance of *core.Core wired
// with the real network collaborators
func CreateRunCore(conf config.Config) *Core {
	events := event.NewEventManager()

	prober := latency.NewTCPProber()
	engine := scan.NewEngine(events)
	identifier := fingerprint.NewEngine(signature.NewMatcher())

	return New(conf, prober, engine, identifier, events)
}
