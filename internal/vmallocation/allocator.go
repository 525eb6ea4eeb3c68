package vmallocation

import (
	"context"
	"fmt"
	"time"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/orchestrator"
	"terraform-provider-cloudram/internal/progress"
	"terraform-provider-cloudram/internal/resolver"
	"terraform-provider-cloudram/internal/stack"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/pkg/errors"
)

// a recreate terminates the stopped VM and allocates again, once
const maxRuns = 2

var ErrAllocationInProgress = errors.New("another allocation is already running in this provider")

type allocationRequest struct {
	Size           int
	OnStopped      string
	ConfirmDestroy bool
	// Deadline bounds the wait for a new or resumed VM.
	Deadline time.Duration
}

// allocator turns one terraform apply into allocation runs and settles
// whatever the run could not decide on its own.
type allocator struct {
	stack *stack.Stack
}

func (a *allocator) ensure(ctx context.Context, request allocationRequest) (*apimodels.ResourceStatus, error) {
	unsubscribe := a.stack.Events.Subscribe(func(e progress.Event) {
		logEvent(ctx, e)
	})
	defer unsubscribe()

	for run := 0; run < maxRuns; run++ {
		outcome, err := a.stack.Orchestrator.Run(ctx, orchestrator.RunRequest{
			Size:        request.Size,
			PollCeiling: request.Deadline,
		})
		if err != nil {
			return nil, err
		}

		switch outcome.Kind {
		case orchestrator.OutcomeRedirect:
			return outcome.Status, nil
		case orchestrator.OutcomePending:
			return a.wait(ctx, request)
		case orchestrator.OutcomeResolve:
			status, err := a.resolve(ctx, request, outcome.Status)
			if err != nil || status != nil {
				return status, err
			}
		case orchestrator.OutcomeSkipped:
			return nil, ErrAllocationInProgress
		default:
			return nil, errors.New(outcome.Message)
		}
	}

	return nil, errors.New("the VM was recreated but did not become available, run apply again")
}

// wait follows a VM that is still coming up until it is usable.
func (a *allocator) wait(ctx context.Context, request allocationRequest) (*apimodels.ResourceStatus, error) {
	cred, err := a.stack.Credential(ctx)
	if err != nil {
		return nil, err
	}

	options := stack.PollOptions(a.stack.Config)
	if request.Deadline > 0 {
		options.Ceiling = request.Deadline
	}
	return a.stack.Poller.Poll(ctx, cred, options)
}

// resolve applies on_stopped. A nil status with a nil error means the VM
// was terminated and a new one should be allocated.
func (a *allocator) resolve(ctx context.Context, request allocationRequest, status *apimodels.ResourceStatus) (*apimodels.ResourceStatus, error) {
	switch request.OnStopped {
	case OnStoppedResume:
		return a.stack.Resolver.Resume(ctx, status.ID)
	case OnStoppedRecreate:
		if !request.ConfirmDestroy {
			return nil, errors.Errorf("VM %s is %s. Set confirm_destroy = true to let on_stopped = \"recreate\" terminate it.", status.ID, status.DisplayState())
		}
		terminated, err := a.stack.Resolver.DestroyAndRecreate(ctx, status.ID, resolver.Confirmed(true))
		if err != nil {
			return nil, err
		}
		if !terminated {
			return nil, errors.Errorf("VM %s was not terminated", status.ID)
		}
		return nil, nil
	default:
		return nil, errors.Errorf("VM %s is %s. Set on_stopped to %q or %q to continue.", status.ID, status.DisplayState(), OnStoppedResume, OnStoppedRecreate)
	}
}

func logEvent(ctx context.Context, e progress.Event) {
	switch e.Kind {
	case progress.EventStep, progress.EventProgress, progress.EventChoices:
	case progress.EventRedirect:
		tflog.Info(ctx, fmt.Sprintf("%s %s", e.Message, e.Target))
		return
	default:
		return
	}

	switch e.Tone {
	case progress.ToneError:
		tflog.Error(ctx, e.Message)
	case progress.ToneWarning:
		tflog.Warn(ctx, e.Message)
	default:
		tflog.Info(ctx, e.Message)
	}
}
