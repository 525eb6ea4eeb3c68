// Package resolver handles a VM that exists but is not running. It offers
// two continuations, resume or destroy and recreate, and runs the one the
// user picks.
package resolver

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/constants"
	"terraform-provider-cloudram/internal/helpers"
	"terraform-provider-cloudram/internal/poller"
	"terraform-provider-cloudram/internal/progress"
	"terraform-provider-cloudram/internal/session"
	"terraform-provider-cloudram/internal/telemetry"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/pkg/errors"
)

var ErrBusy = errors.New("this action is already running")

const (
	ResumeStatusPrefix = "Resuming:"
	DestroyWarning     = "Terminating the VM permanently deletes it and all of its data. This cannot be undone."
)

type Choice string

const (
	ChoiceResume   Choice = "resume"
	ChoiceRecreate Choice = "recreate"
)

// Choices is the full set of continuations for a stopped VM.
func Choices() []Choice {
	return []Choice{ChoiceResume, ChoiceRecreate}
}

type ControlPlane interface {
	Start(ctx context.Context, token string, vmId string, timeout time.Duration) (*apimodels.ResourceStatus, error)
	Terminate(ctx context.Context, token string, vmId string, timeout time.Duration) error
}

type Waiter interface {
	Poll(ctx context.Context, cred *session.Credential, options poller.Options) (*apimodels.ResourceStatus, error)
}

type HintStore interface {
	ClearHint() error
}

// Confirmer asks the user to accept an irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, warning string) (bool, error)
}

type ConfirmerFunc func(ctx context.Context, warning string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, warning string) (bool, error) {
	return f(ctx, warning)
}

// Confirmed answers every confirmation with answer.
func Confirmed(answer bool) Confirmer {
	return ConfirmerFunc(func(context.Context, string) (bool, error) {
		return answer, nil
	})
}

type Options struct {
	ActionTimeout    time.Duration
	TerminateTimeout time.Duration
	StatusUrl        string
	Poll             poller.Options
	// TelemetryUserId is hashed before it is sent.
	TelemetryUserId string
}

func DefaultOptions() Options {
	poll := poller.DefaultOptions()
	poll.StatusPrefix = ResumeStatusPrefix
	return Options{
		ActionTimeout:    constants.DEFAULT_ACTION_TIMEOUT,
		TerminateTimeout: constants.DEFAULT_TERMINATE_TIMEOUT,
		StatusUrl:        constants.DefaultStatusUrl,
		Poll:             poll,
	}
}

type Resolver struct {
	control  ControlPlane
	waiter   Waiter
	tokens   session.TokenProvider
	hints    HintStore
	reporter progress.Reporter
	tracker  telemetry.Tracker
	options  Options

	resuming    atomic.Bool
	terminating atomic.Bool
}

func New(control ControlPlane, waiter Waiter, tokens session.TokenProvider, hints HintStore, reporter progress.Reporter, tracker telemetry.Tracker, options Options) *Resolver {
	defaults := DefaultOptions()
	if options.ActionTimeout <= 0 {
		options.ActionTimeout = defaults.ActionTimeout
	}
	if options.TerminateTimeout <= 0 {
		options.TerminateTimeout = defaults.TerminateTimeout
	}
	if options.StatusUrl == "" {
		options.StatusUrl = defaults.StatusUrl
	}
	if options.Poll.StatusPrefix == "" {
		options.Poll.StatusPrefix = ResumeStatusPrefix
	}
	if reporter == nil {
		reporter = progress.Discard
	}
	if tracker == nil {
		tracker = telemetry.Noop
	}

	return &Resolver{
		control:  control,
		waiter:   waiter,
		tokens:   tokens,
		hints:    hints,
		reporter: reporter,
		tracker:  tracker,
		options:  options,
	}
}

// Offer presents the continuations for status and enables them.
func (r *Resolver) Offer(status *apimodels.ResourceStatus) []Choice {
	r.reporter.Report(progress.Event{
		Kind:    progress.EventChoices,
		Tone:    progress.ToneWarning,
		Message: fmt.Sprintf("You already have a VM (%s) in state %s. Resume it, or terminate it and create a new one.", status.ID, status.DisplayState()),
		Target:  status.ID,
	})
	progress.Enable(r.reporter, progress.AffordanceResolver, true)

	return Choices()
}

// Resume starts the stopped VM and waits until it is running. A timeout on
// the start call is expected from a backend that acts asynchronously, so
// the wait begins anyway.
func (r *Resolver) Resume(ctx context.Context, vmId string) (*apimodels.ResourceStatus, error) {
	if !r.resuming.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer r.resuming.Store(false)

	progress.Enable(r.reporter, progress.AffordanceResolver, false)
	telemetry.Track(r.tracker, r.options.TelemetryUserId, telemetry.EventResume, telemetry.ModeStart, nil)

	status, err := r.resume(ctx, vmId)
	if err != nil {
		progress.Step(r.reporter, progress.ToneError, err.Error())
		progress.Enable(r.reporter, progress.AffordanceResolver, true)
		telemetry.Track(r.tracker, r.options.TelemetryUserId, telemetry.EventResume, telemetry.ModeFailure, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	telemetry.Track(r.tracker, r.options.TelemetryUserId, telemetry.EventResume, telemetry.ModeSuccess, nil)
	progress.Redirect(r.reporter, "VM is ready. Opening dashboard...", helpers.OperationalViewUrl(r.options.StatusUrl, status.ID, status.Address))
	return status, nil
}

func (r *Resolver) resume(ctx context.Context, vmId string) (*apimodels.ResourceStatus, error) {
	if vmId == "" {
		return nil, errors.New("vm id cannot be empty")
	}

	progress.Step(r.reporter, progress.ToneInfo, "Getting auth token...")
	cred, err := session.Acquire(ctx, r.tokens)
	if err != nil {
		return nil, err
	}

	progress.Step(r.reporter, progress.ToneInfo, fmt.Sprintf("Starting VM %s...", vmId))
	err = cred.Do(ctx, func(token string) error {
		_, callErr := r.control.Start(ctx, token, vmId, r.options.ActionTimeout)
		return callErr
	})
	if err != nil {
		if !helpers.IsTimeout(err) {
			return nil, err
		}
		tflog.Warn(ctx, fmt.Sprintf("start request for %s timed out, waiting for the VM anyway", vmId))
	}

	progress.Step(r.reporter, progress.ToneInfo, "Start requested. Polling until RUNNING + IP...")
	return r.waiter.Poll(ctx, cred, r.options.Poll)
}

// DestroyAndRecreate terminates the VM once confirmer accepts the warning.
// It reports whether the VM was terminated; false with a nil error means
// the user declined. Afterwards no VM exists and the primary action can
// create a new one.
func (r *Resolver) DestroyAndRecreate(ctx context.Context, vmId string, confirmer Confirmer) (bool, error) {
	if !r.terminating.CompareAndSwap(false, true) {
		return false, ErrBusy
	}
	defer r.terminating.Store(false)

	if confirmer == nil {
		return false, nil
	}

	confirmed, err := confirmer.Confirm(ctx, DestroyWarning)
	if err != nil {
		return false, errors.Wrap(err, "error asking for confirmation")
	}
	if !confirmed {
		progress.Step(r.reporter, progress.ToneInfo, "Termination cancelled. Your VM was left as it is.")
		return false, nil
	}

	progress.Enable(r.reporter, progress.AffordanceResolver, false)
	telemetry.Track(r.tracker, r.options.TelemetryUserId, telemetry.EventTerminate, telemetry.ModeStart, nil)

	if err := r.terminate(ctx, vmId); err != nil {
		progress.Step(r.reporter, progress.ToneError, err.Error())
		progress.Enable(r.reporter, progress.AffordanceResolver, true)
		telemetry.Track(r.tracker, r.options.TelemetryUserId, telemetry.EventTerminate, telemetry.ModeFailure, map[string]interface{}{"error": err.Error()})
		return false, err
	}

	telemetry.Track(r.tracker, r.options.TelemetryUserId, telemetry.EventTerminate, telemetry.ModeSuccess, nil)
	progress.Step(r.reporter, progress.ToneSuccess, "VM terminated. Run allocate to create a new one.")
	progress.Enable(r.reporter, progress.AffordancePrimary, true)
	return true, nil
}

// Terminate destroys the VM without asking. Callers that already hold an
// explicit confirmation, such as a Terraform destroy, use it directly.
func (r *Resolver) Terminate(ctx context.Context, vmId string) error {
	if !r.terminating.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer r.terminating.Store(false)

	telemetry.Track(r.tracker, r.options.TelemetryUserId, telemetry.EventTerminate, telemetry.ModeStart, nil)
	if err := r.terminate(ctx, vmId); err != nil {
		telemetry.Track(r.tracker, r.options.TelemetryUserId, telemetry.EventTerminate, telemetry.ModeFailure, map[string]interface{}{"error": err.Error()})
		return err
	}

	telemetry.Track(r.tracker, r.options.TelemetryUserId, telemetry.EventTerminate, telemetry.ModeSuccess, nil)
	return nil
}

// terminate is not timeout tolerant: the VM only counts as gone once the
// control plane said so.
func (r *Resolver) terminate(ctx context.Context, vmId string) error {
	if vmId == "" {
		return errors.New("vm id cannot be empty")
	}

	progress.Step(r.reporter, progress.ToneInfo, "Getting auth token...")
	cred, err := session.Acquire(ctx, r.tokens)
	if err != nil {
		return err
	}

	progress.Step(r.reporter, progress.ToneInfo, fmt.Sprintf("Terminating VM %s...", vmId))
	err = cred.Do(ctx, func(token string) error {
		return r.control.Terminate(ctx, token, vmId, r.options.TerminateTimeout)
	})
	if err != nil {
		return err
	}

	if r.hints != nil {
		if err := r.hints.ClearHint(); err != nil {
			tflog.Warn(ctx, "could not clear the cached vm hint: "+err.Error())
		}
	}

	tflog.Info(ctx, fmt.Sprintf("vm %s terminated", vmId))
	return nil
}
