// Package orchestrator drives one allocation run: Agent check, credential,
// status lookup, and then exactly one of redirect, resolve, wait or create.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"terraform-provider-cloudram/internal/agentgate"
	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/constants"
	"terraform-provider-cloudram/internal/helpers"
	"terraform-provider-cloudram/internal/localstore"
	"terraform-provider-cloudram/internal/poller"
	"terraform-provider-cloudram/internal/progress"
	"terraform-provider-cloudram/internal/resolver"
	"terraform-provider-cloudram/internal/session"
	"terraform-provider-cloudram/internal/telemetry"

	"github.com/google/uuid"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/pkg/errors"
)

const (
	MsgStarting        = "Click received. Starting allocation flow..."
	MsgCheckingAgent   = "Checking Local Agent health..."
	MsgGettingToken    = "Getting auth token..."
	MsgCheckingVm      = "Checking existing VM (/my_vm)..."
	MsgNoVm            = "No VM found. Requesting allocation..."
	MsgAllocating      = "Allocation requested. Polling until RUNNING + IP..."
	MsgReady           = "VM is ready. Opening dashboard..."
	MsgSignIn          = "No auth token found. Please sign in again."
	MsgAllocateTimeout = "Allocation request is taking a while, the backend may be starting up. Waiting for the VM..."
)

type ControlPlane interface {
	GetStatus(ctx context.Context, token string, timeout time.Duration) (*apimodels.ResourceStatus, error)
	Allocate(ctx context.Context, token string, size int, timeout time.Duration) (*apimodels.ResourceStatus, error)
}

type Gate interface {
	Probe(ctx context.Context) bool
	Watch(ctx context.Context) <-chan struct{}
}

type StoppedResolver interface {
	Offer(status *apimodels.ResourceStatus) []resolver.Choice
}

type HintRecorder interface {
	SaveHint(hint localstore.Hint) error
}

// Collaborators are the components a run is composed of.
type Collaborators struct {
	Gate     Gate
	Control  ControlPlane
	Tokens   session.TokenProvider
	Waiter   resolver.Waiter
	Resolver StoppedResolver
	Hints    HintRecorder
	Events   *progress.Broadcaster
	Tracker  telemetry.Tracker
}

type Options struct {
	StatusTimeout time.Duration
	ActionTimeout time.Duration
	StatusUrl     string
	SignInUrl     string
	Poll          poller.Options
	// TelemetryUserId is hashed before it is sent.
	TelemetryUserId string
}

func DefaultOptions() Options {
	return Options{
		StatusTimeout: constants.DEFAULT_STATUS_TIMEOUT,
		ActionTimeout: constants.DEFAULT_ACTION_TIMEOUT,
		StatusUrl:     constants.DefaultStatusUrl,
		SignInUrl:     constants.DefaultSignInUrl,
		Poll:          poller.DefaultOptions(),
	}
}

type RunRequest struct {
	Size int
	// PollCeiling overrides the configured wait for a new VM when set.
	PollCeiling time.Duration
}

type Orchestrator struct {
	deps    Collaborators
	options Options
	lock    exclusivityLock
}

func New(deps Collaborators, options Options) *Orchestrator {
	defaults := DefaultOptions()
	if options.StatusTimeout <= 0 {
		options.StatusTimeout = defaults.StatusTimeout
	}
	if options.ActionTimeout <= 0 {
		options.ActionTimeout = defaults.ActionTimeout
	}
	if options.StatusUrl == "" {
		options.StatusUrl = defaults.StatusUrl
	}
	if options.SignInUrl == "" {
		options.SignInUrl = defaults.SignInUrl
	}
	if deps.Events == nil {
		deps.Events = progress.NewBroadcaster()
	}
	if deps.Tracker == nil {
		deps.Tracker = telemetry.Noop
	}

	return &Orchestrator{deps: deps, options: options}
}

// Subscribe registers a listener for every event of every run. Front-ends
// subscribe once and render what they receive.
func (o *Orchestrator) Subscribe(fn progress.ReporterFunc) func() {
	return o.deps.Events.Subscribe(fn)
}

// Busy reports whether a run is in progress.
func (o *Orchestrator) Busy() bool {
	return o.lock.isHeld()
}

// Run performs one allocation run. If another run is in progress it
// returns an OutcomeSkipped without doing anything. The returned error is
// set only for OutcomeFailed and carries the message shown to the user.
func (o *Orchestrator) Run(ctx context.Context, request RunRequest) (*Outcome, error) {
	if !o.lock.tryAcquire() {
		tflog.Debug(ctx, "allocation run already in progress, ignoring request")
		return &Outcome{Kind: OutcomeSkipped}, nil
	}

	r := &run{
		Orchestrator: o,
		id:           uuid.NewString(),
		size:         request.Size,
		poll:         o.options.Poll,
	}
	if request.PollCeiling > 0 {
		r.poll.Ceiling = request.PollCeiling
	}
	if r.size <= 0 {
		r.size = constants.DefaultVmSize
	}
	ctx = tflog.SetField(ctx, "run_id", r.id)

	defer func() {
		o.lock.release()
		// ctx may already be done here
		o.deps.Gate.Probe(context.WithoutCancel(ctx))
	}()

	telemetry.Track(o.deps.Tracker, o.options.TelemetryUserId, telemetry.EventAllocate, telemetry.ModeStart, map[string]interface{}{"size": r.size})
	progress.Enable(o.deps.Events, progress.AffordancePrimary, false)

	outcome := r.execute(ctx)
	outcome.RunID = r.id

	mode := telemetry.ModeSuccess
	switch outcome.Kind {
	case OutcomeFailed:
		mode = telemetry.ModeFailure
	case OutcomeAgentOffline, OutcomeSignIn, OutcomePending, OutcomeResolve:
		mode = telemetry.ModeSkipped
	}
	telemetry.Track(o.deps.Tracker, o.options.TelemetryUserId, telemetry.EventAllocate, mode, map[string]interface{}{"outcome": string(outcome.Kind)})

	if outcome.Kind == OutcomeFailed {
		return outcome, outcome.Err
	}
	return outcome, nil
}

type run struct {
	*Orchestrator
	id   string
	size int
	poll poller.Options
}

func (r *run) step(tone progress.Tone, message string) {
	r.deps.Events.Report(progress.Event{Kind: progress.EventStep, Tone: tone, Message: message, RunID: r.id})
}

func (r *run) fail(ctx context.Context, err error) *Outcome {
	tflog.Error(ctx, "allocation run failed: "+err.Error())
	r.step(progress.ToneError, err.Error())
	return &Outcome{Kind: OutcomeFailed, Message: err.Error(), Err: err}
}

func (r *run) execute(ctx context.Context) *Outcome {
	r.step(progress.ToneInfo, MsgStarting)

	r.step(progress.ToneInfo, MsgCheckingAgent)
	if !r.deps.Gate.Probe(ctx) {
		r.step(progress.ToneError, agentgate.OfflineMessage)
		r.deps.Gate.Watch(ctx)
		return &Outcome{Kind: OutcomeAgentOffline, Message: agentgate.OfflineMessage}
	}

	r.step(progress.ToneInfo, MsgGettingToken)
	cred, err := session.Acquire(ctx, r.deps.Tokens)
	if err != nil {
		if errors.Is(err, session.ErrNoCredential) {
			r.deps.Events.Report(progress.Event{Kind: progress.EventRedirect, Tone: progress.ToneWarning, Message: MsgSignIn, Target: r.options.SignInUrl, RunID: r.id})
			return &Outcome{Kind: OutcomeSignIn, Message: MsgSignIn, Target: r.options.SignInUrl}
		}
		return r.fail(ctx, err)
	}

	r.step(progress.ToneInfo, MsgCheckingVm)
	var status *apimodels.ResourceStatus
	err = cred.Do(ctx, func(token string) error {
		var callErr error
		status, callErr = r.deps.Control.GetStatus(ctx, token, r.options.StatusTimeout)
		return callErr
	})
	if err != nil {
		return r.fail(ctx, err)
	}
	r.remember(ctx, status)

	switch {
	case status.IsUsable():
		return r.redirect(status)
	case status.IsStopped():
		choices := r.deps.Resolver.Offer(status)
		return &Outcome{
			Kind:    OutcomeResolve,
			Message: fmt.Sprintf("VM %s is %s.", status.ID, status.DisplayState()),
			Status:  status,
			Choices: choices,
		}
	case status.Exists:
		message := fmt.Sprintf("Your VM is %s. Please wait a moment and try again.", status.DisplayState())
		r.step(progress.ToneWarning, message)
		return &Outcome{Kind: OutcomePending, Message: message, Status: status}
	}

	return r.allocate(ctx, cred)
}

// allocate requests a new VM and waits for it. A timed out allocate call is
// treated like one that was accepted, and the wait decides.
func (r *run) allocate(ctx context.Context, cred *session.Credential) *Outcome {
	r.step(progress.ToneInfo, MsgNoVm)

	var allocated *apimodels.ResourceStatus
	err := cred.Do(ctx, func(token string) error {
		var callErr error
		allocated, callErr = r.deps.Control.Allocate(ctx, token, r.size, r.options.ActionTimeout)
		return callErr
	})
	if err != nil {
		if !helpers.IsTimeout(err) {
			return r.fail(ctx, err)
		}
		tflog.Warn(ctx, "allocate request timed out, polling for the VM anyway")
		r.step(progress.ToneWarning, MsgAllocateTimeout)
	} else if allocated != nil && allocated.ID != "" {
		r.remember(ctx, allocated)
	}

	r.step(progress.ToneInfo, MsgAllocating)
	status, err := r.deps.Waiter.Poll(ctx, cred, r.poll)
	if err != nil {
		return r.fail(ctx, err)
	}

	return r.redirect(status)
}

func (r *run) redirect(status *apimodels.ResourceStatus) *Outcome {
	target := helpers.OperationalViewUrl(r.options.StatusUrl, status.ID, status.Address)
	r.deps.Events.Report(progress.Event{Kind: progress.EventRedirect, Tone: progress.ToneSuccess, Message: MsgReady, Target: target, RunID: r.id})
	return &Outcome{Kind: OutcomeRedirect, Message: MsgReady, Target: target, Status: status}
}

// remember overwrites the cached hint with a fresh server answer. An absent
// VM leaves an empty hint behind.
func (r *run) remember(ctx context.Context, status *apimodels.ResourceStatus) {
	if r.deps.Hints == nil || status == nil {
		return
	}
	if err := r.deps.Hints.SaveHint(localstore.Hint{VmId: status.ID, VmIp: status.Address}); err != nil {
		tflog.Warn(ctx, "could not update the cached vm hint: "+err.Error())
	}
}
