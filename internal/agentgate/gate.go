// Package agentgate tells whether the local Agent is reachable and keeps
// the primary action enabled only while it is.
package agentgate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"terraform-provider-cloudram/internal/constants"
	"terraform-provider-cloudram/internal/helpers"
	"terraform-provider-cloudram/internal/progress"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

const (
	OnlineMessage  = "Local Agent is running. Run allocate to continue."
	OfflineMessage = "Local Agent is NOT running. Install and run the Agent, then retry."
)

// GateState is recomputed on every probe and never persisted.
type GateState struct {
	Online  bool
	Message string
}

type Options struct {
	AgentUrl             string
	ProbeTimeout         time.Duration
	WatchInterval        time.Duration
	DisableTlsValidation bool
}

func DefaultOptions() Options {
	return Options{
		AgentUrl:      constants.DefaultAgentUrl,
		ProbeTimeout:  constants.DEFAULT_AGENT_PROBE_TIMEOUT,
		WatchInterval: constants.DEFAULT_AGENT_WATCH_INTERVAL,
	}
}

type Gate struct {
	healthUrl string
	options   Options
	clock     helpers.Clock
	reporter  progress.Reporter

	mu       sync.Mutex
	state    GateState
	watching chan struct{}
}

func New(options Options, reporter progress.Reporter, clock helpers.Clock) *Gate {
	if options.ProbeTimeout <= 0 {
		options.ProbeTimeout = constants.DEFAULT_AGENT_PROBE_TIMEOUT
	}
	if options.WatchInterval <= 0 {
		options.WatchInterval = constants.DEFAULT_AGENT_WATCH_INTERVAL
	}
	if reporter == nil {
		reporter = progress.Discard
	}
	if clock == nil {
		clock = helpers.RealClock{}
	}

	return &Gate{
		healthUrl: helpers.JoinUrl(helpers.GetHostUrl(options.AgentUrl), constants.AgentHealthPath),
		options:   options,
		clock:     clock,
		reporter:  reporter,
		state:     GateState{Online: false, Message: OfflineMessage},
	}
}

func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Probe performs one liveness check. Any failure, including a timeout or a
// non-2xx answer, reads as offline; Probe itself never fails.
func (g *Gate) Probe(ctx context.Context) bool {
	client := helpers.NewHttpCaller(ctx, g.options.DisableTlsValidation)
	_, err := client.GetDataFromClient(g.healthUrl, nil, g.options.ProbeTimeout, nil)
	online := err == nil
	if err != nil {
		tflog.Debug(ctx, fmt.Sprintf("agent probe on %s failed: %v", g.healthUrl, err))
	}

	state := GateState{Online: online, Message: OfflineMessage}
	if online {
		state.Message = OnlineMessage
	}

	g.mu.Lock()
	g.state = state
	g.mu.Unlock()

	tone := progress.ToneError
	if online {
		tone = progress.ToneSuccess
	}
	g.reporter.Report(progress.Event{Kind: progress.EventGate, Tone: tone, Message: state.Message, Enabled: online})
	progress.Enable(g.reporter, progress.AffordancePrimary, online)

	return online
}

// Watch starts a loop that probes every WatchInterval and stops by itself
// the first time the Agent answers. Calling Watch while a loop is running
// returns that loop's done channel instead of starting another one. The
// loop also ends when ctx is done.
func (g *Gate) Watch(ctx context.Context) <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.watching != nil {
		return g.watching
	}

	done := make(chan struct{})
	g.watching = done
	go g.watch(ctx, done)

	return done
}

// Watching reports whether a watch loop is active.
func (g *Gate) Watching() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.watching != nil
}

func (g *Gate) watch(ctx context.Context, done chan struct{}) {
	defer func() {
		g.mu.Lock()
		g.watching = nil
		g.mu.Unlock()
		close(done)
	}()

	tflog.Debug(ctx, "agent watch loop started")
	for {
		if err := g.clock.Sleep(ctx, g.options.WatchInterval); err != nil {
			tflog.Debug(ctx, "agent watch loop cancelled")
			return
		}
		if g.Probe(ctx) {
			tflog.Info(ctx, "agent is reachable, watch loop stopped")
			return
		}
	}
}
