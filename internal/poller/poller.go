// Package poller waits for the user's VM to become usable.
package poller

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/constants"
	"terraform-provider-cloudram/internal/helpers"
	"terraform-provider-cloudram/internal/localstore"
	"terraform-provider-cloudram/internal/progress"
	"terraform-provider-cloudram/internal/session"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/pkg/errors"
)

var (
	ErrResourceVanished = errors.New("No VM found while waiting. Please run allocate again.")
	ErrCeilingExceeded  = errors.New("VM is taking longer than expected. Please wait and try again.")
	ErrPollInProgress   = errors.New("already waiting for the VM")
)

const DefaultStatusPrefix = "Allocating:"

type StatusSource interface {
	GetStatus(ctx context.Context, token string, timeout time.Duration) (*apimodels.ResourceStatus, error)
}

type HintRecorder interface {
	SaveHint(hint localstore.Hint) error
	ClearHint() error
}

type Options struct {
	Ceiling        time.Duration
	Interval       time.Duration
	RequestTimeout time.Duration
	StatusPrefix   string
}

func DefaultOptions() Options {
	return Options{
		Ceiling:        constants.DEFAULT_POLL_CEILING,
		Interval:       constants.DEFAULT_POLL_INTERVAL,
		RequestTimeout: constants.DEFAULT_POLL_REQUEST_TIMEOUT,
		StatusPrefix:   DefaultStatusPrefix,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.Ceiling <= 0 {
		o.Ceiling = defaults.Ceiling
	}
	if o.Interval <= 0 {
		o.Interval = defaults.Interval
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaults.RequestTimeout
	}
	if o.StatusPrefix == "" {
		o.StatusPrefix = defaults.StatusPrefix
	}
	return o
}

type Poller struct {
	source   StatusSource
	hints    HintRecorder
	reporter progress.Reporter
	clock    helpers.Clock
	active   atomic.Bool
}

func New(source StatusSource, hints HintRecorder, reporter progress.Reporter, clock helpers.Clock) *Poller {
	if reporter == nil {
		reporter = progress.Discard
	}
	if clock == nil {
		clock = helpers.RealClock{}
	}
	return &Poller{
		source:   source,
		hints:    hints,
		reporter: reporter,
		clock:    clock,
	}
}

// Poll queries the VM status until it is running with an address, the VM
// disappears, or the ceiling elapses. A timed out status call only counts
// as another attempt; every other error ends the wait. Only one Poll runs
// at a time per Poller.
func (p *Poller) Poll(ctx context.Context, cred *session.Credential, options Options) (*apimodels.ResourceStatus, error) {
	if !p.active.CompareAndSwap(false, true) {
		return nil, ErrPollInProgress
	}
	defer p.active.Store(false)

	options = options.withDefaults()
	deadline := p.clock.Now().Add(options.Ceiling)
	attempt := 0

	for p.clock.Now().Before(deadline) {
		attempt++

		var status *apimodels.ResourceStatus
		err := cred.Do(ctx, func(token string) error {
			var callErr error
			status, callErr = p.source.GetStatus(ctx, token, options.RequestTimeout)
			return callErr
		})

		if err != nil {
			if !helpers.IsTimeout(err) {
				return nil, err
			}
			tflog.Warn(ctx, fmt.Sprintf("status call timed out on attempt %d, still waiting", attempt))
			p.progress(attempt, progress.ToneWarning, fmt.Sprintf("%s Network slow / backend cold start. Retrying... (attempt %d)", options.StatusPrefix, attempt))
		} else {
			p.remember(ctx, status)
			p.progress(attempt, progress.ToneInfo, fmt.Sprintf("%s Waiting... state=%s (attempt %d)", options.StatusPrefix, status.DisplayState(), attempt))

			if !status.Exists {
				return nil, ErrResourceVanished
			}
			if status.IsUsable() {
				tflog.Info(ctx, fmt.Sprintf("vm %s is running at %s after %d attempts", status.ID, status.Address, attempt))
				return status, nil
			}
		}

		if err := p.clock.Sleep(ctx, options.Interval); err != nil {
			return nil, errors.Wrap(err, "stopped waiting for the VM")
		}
	}

	return nil, ErrCeilingExceeded
}

// Active reports whether a Poll loop is running.
func (p *Poller) Active() bool {
	return p.active.Load()
}

func (p *Poller) progress(attempt int, tone progress.Tone, message string) {
	p.reporter.Report(progress.Event{
		Kind:    progress.EventProgress,
		Tone:    tone,
		Message: message,
		Attempt: attempt,
	})
}

// remember replaces the cached hint with what the server just said. A VM
// that no longer exists clears it.
func (p *Poller) remember(ctx context.Context, status *apimodels.ResourceStatus) {
	if p.hints == nil {
		return
	}

	var err error
	if status.Exists {
		err = p.hints.SaveHint(localstore.Hint{VmId: status.ID, VmIp: status.Address})
	} else {
		err = p.hints.ClearHint()
	}
	if err != nil {
		tflog.Warn(ctx, "could not update the cached vm hint: "+err.Error())
	}
}
