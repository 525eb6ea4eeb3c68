package cli

import (
	"fmt"

	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/orchestrator"
	"terraform-provider-cloudram/internal/progress"
	"terraform-provider-cloudram/internal/session"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type statusView struct {
	Exists   bool   `json:"exists"`
	State    string `json:"state"`
	VmId     string `json:"vm_id,omitempty"`
	Ip       string `json:"ip,omitempty"`
	ViewUrl  string `json:"view_url,omitempty"`
	CachedId string `json:"cached_vm_id,omitempty"`
	CachedIp string `json:"cached_ip,omitempty"`
}

func (a *app) statusCommand() *cobra.Command {
	asJson := false
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show your VM as the control plane sees it",
		Long: `Status prints the last known VM id and address from the local cache, which
may be stale, and then the fresh answer from the control plane. The fresh
answer replaces the cached one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := a.stack(ctx)
			defer s.Close()
			r := newRenderer(a.out)

			hint, err := s.Store.LoadHint()
			if err != nil {
				return err
			}
			if !asJson && !hint.IsEmpty() {
				r.note(fmt.Sprintf("Cached: id=%s ip=%s (may be stale)", hint.VmId, hint.VmIp))
			}

			status, err := s.Refresh(ctx)
			if err != nil {
				if errors.Is(err, session.ErrNoCredential) {
					r.Report(signInEvent(a.cfg.SignInUrl))
					return reported(err)
				}
				return err
			}

			view := statusView{
				Exists:   status.Exists,
				State:    string(status.State),
				VmId:     status.ID,
				Ip:       status.Address,
				CachedId: hint.VmId,
				CachedIp: hint.VmIp,
			}
			view.ViewUrl = s.ViewUrl(status)

			if asJson {
				data, err := json.MarshalIndent(view, "", "  ")
				if err != nil {
					return errors.Wrap(err, "error marshalling status")
				}
				fmt.Fprintln(a.out, string(data))
				return nil
			}

			printStatus(r, status, view.ViewUrl)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJson, "json", false, "print the status as JSON")
	return cmd
}

func printStatus(r *renderer, status *apimodels.ResourceStatus, viewUrl string) {
	switch {
	case !status.Exists:
		r.info.Fprintln(r.out, "No VM allocated. Run allocate to create one.")
	case status.IsUsable():
		r.success.Fprintf(r.out, "VM %s is running at %s\n", status.ID, status.Address)
		fmt.Fprintf(r.out, "  %s\n", viewUrl)
	case status.IsStopped():
		r.warning.Fprintf(r.out, "VM %s is %s. Run allocate to resume or recreate it.\n", status.ID, status.DisplayState())
	default:
		r.warning.Fprintf(r.out, "VM %s is %s. Please wait a moment.\n", status.ID, status.DisplayState())
	}
}

func signInEvent(signInUrl string) progress.Event {
	return progress.Event{Kind: progress.EventRedirect, Tone: progress.ToneWarning, Message: orchestrator.MsgSignIn, Target: signInUrl}
}
