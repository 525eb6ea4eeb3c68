package cli

import (
	"context"
	"strings"

	"terraform-provider-cloudram/internal/orchestrator"
	"terraform-provider-cloudram/internal/progress"
	"terraform-provider-cloudram/internal/resolver"
	"terraform-provider-cloudram/internal/stack"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	onStoppedAsk      = "ask"
	onStoppedResume   = "resume"
	onStoppedRecreate = "recreate"
	onStoppedFail     = "fail"

	// A recreate or an Agent wait re-runs allocation; anything beyond that
	// is left to the user.
	maxAllocateRuns = 3
)

type allocateOptions struct {
	onStopped string
	yes       bool
	waitAgent bool
	open      bool
}

func (a *app) allocateCommand() *cobra.Command {
	opts := allocateOptions{}
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Open your VM, creating or resuming it when needed",
		Long: `Allocate checks that the local Agent is running, looks up your VM and then
either opens it, offers to resume or recreate it when it is stopped, or
requests a new one and waits until it is running with an address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.onStopped {
			case onStoppedAsk, onStoppedResume, onStoppedRecreate, onStoppedFail:
			default:
				return errors.Errorf("invalid --on-stopped %q, expected ask, resume, recreate or fail", opts.onStopped)
			}

			s := a.stack(cmd.Context())
			defer s.Close()

			r := newRenderer(a.out)
			unsubscribe := s.Events.Subscribe(r.Report)
			defer unsubscribe()

			if opts.open {
				stopOpening := s.Events.Subscribe(func(e progress.Event) {
					if e.Kind != progress.EventRedirect || e.Target == "" {
						return
					}
					if err := a.openUrl(e.Target); err != nil {
						r.note(err.Error())
					}
				})
				defer stopOpening()
			}

			return a.allocate(cmd.Context(), s, opts)
		},
	}

	cmd.Flags().Int("size", 0, "RAM size to request for a new VM (default from config, 1)")
	cmd.Flags().StringVar(&opts.onStopped, "on-stopped", onStoppedAsk, "what to do with a stopped VM: ask, resume, recreate or fail")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation before terminating a stopped VM")
	cmd.Flags().BoolVar(&opts.waitAgent, "wait-agent", false, "wait for the local Agent instead of failing when it is not running")
	cmd.Flags().BoolVar(&opts.open, "open", false, "open the dashboard or the sign-in page in the browser")

	return cmd
}

func (a *app) allocate(ctx context.Context, s *stack.Stack, opts allocateOptions) error {
	for runs := 0; runs < maxAllocateRuns; runs++ {
		outcome, err := s.Orchestrator.Run(ctx, orchestrator.RunRequest{Size: a.cfg.Size})
		if err != nil {
			return reported(err)
		}

		switch outcome.Kind {
		case orchestrator.OutcomeRedirect, orchestrator.OutcomePending, orchestrator.OutcomeSkipped:
			return nil

		case orchestrator.OutcomeSignIn:
			return reported(errors.New(outcome.Message))

		case orchestrator.OutcomeAgentOffline:
			if !opts.waitAgent {
				return reported(errors.New(outcome.Message))
			}
			newRenderer(a.out).note("Waiting for the local Agent... (Ctrl+C to stop)")
			<-s.Gate.Watch(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}

		case orchestrator.OutcomeResolve:
			again, err := a.resolve(ctx, s, outcome, opts)
			if err != nil || !again {
				return err
			}
		}
	}

	return nil
}

// resolve runs the continuation picked for a stopped VM. It reports whether
// allocation should run again, which is the case after a recreate.
func (a *app) resolve(ctx context.Context, s *stack.Stack, outcome *orchestrator.Outcome, opts allocateOptions) (bool, error) {
	choice := opts.onStopped
	if choice == onStoppedAsk {
		if !a.interactive() {
			return false, reported(errors.New("VM is stopped. Re-run with --on-stopped resume or --on-stopped recreate."))
		}

		picked, err := a.prompter().choose(
			"[r] resume  [t] terminate and create a new VM  [c] cancel: ",
			map[string]string{"r": onStoppedResume, "resume": onStoppedResume, "t": onStoppedRecreate, "terminate": onStoppedRecreate},
		)
		if err != nil {
			return false, err
		}
		if picked == "" {
			newRenderer(a.out).note("Nothing changed.")
			return false, nil
		}
		choice = picked
	}

	vmId := outcome.Status.ID
	switch choice {
	case onStoppedResume:
		_, err := s.Resolver.Resume(ctx, vmId)
		return false, reported(err)

	case onStoppedRecreate:
		var confirmer resolver.Confirmer = resolver.Confirmed(true)
		if !opts.yes {
			if !a.interactive() {
				return false, reported(errors.New("Terminating a VM needs confirmation. Re-run with --yes."))
			}
			confirmer = a.prompter()
		}

		terminated, err := s.Resolver.DestroyAndRecreate(ctx, vmId, confirmer)
		if err != nil {
			return false, reported(err)
		}
		return terminated, nil
	}

	return false, reported(errors.New(strings.TrimSpace(outcome.Message + " Re-run with --on-stopped resume or --on-stopped recreate.")))
}
