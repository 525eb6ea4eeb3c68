package cli

import (
	"terraform-provider-cloudram/internal/agentgate"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) agentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Check the local Agent",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Probe the local Agent once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.stack(cmd.Context())
			defer s.Close()

			online := s.Gate.Probe(cmd.Context())
			state := s.Gate.State()
			newRenderer(a.out).gate(online, state.Message)
			if !online {
				return reported(errors.New(state.Message))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "wait",
		Short: "Wait until the local Agent is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := a.stack(ctx)
			defer s.Close()
			r := newRenderer(a.out)

			if !s.Gate.Probe(ctx) {
				r.gate(false, agentgate.OfflineMessage)
				r.note("Waiting for the local Agent... (Ctrl+C to stop)")
				<-s.Gate.Watch(ctx)
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}

			r.gate(true, s.Gate.State().Message)
			return nil
		},
	})

	return cmd
}
