package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"terraform-provider-cloudram/internal/helpers"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (a *app) loginCommand() *cobra.Command {
	skipVerify := false
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token for later commands",
		Long: `Login reads an access token issued by the sign-in page and stores it in the
local cache. The token is read from the terminal without echo, or from
standard input when it is not a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, err := a.readToken()
			if err != nil {
				return err
			}

			s := a.stack(ctx)
			defer s.Close()
			r := newRenderer(a.out)

			if !skipVerify {
				if _, err := s.Api.GetStatus(ctx, token, a.cfg.StatusTimeout); err != nil {
					if helpers.IsUnauthorized(err) {
						return errors.New("The control plane rejected this token. Please sign in again.")
					}
					return errors.Wrap(err, "could not verify the token")
				}
			}

			if err := s.Store.StoreToken(token); err != nil {
				return err
			}
			r.success.Fprintln(r.out, "Token stored.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "store the token without checking it against the control plane")
	return cmd
}

func (a *app) readToken() (string, error) {
	var raw []byte
	var err error

	if file, ok := a.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(a.errOut, "Access token: ")
		raw, err = term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(a.errOut)
	} else {
		raw, err = io.ReadAll(a.in)
	}
	if err != nil {
		return "", errors.Wrap(err, "error reading token")
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", errors.New("no token given")
	}
	return token, nil
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token and VM hint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.stack(cmd.Context())
			defer s.Close()

			if err := s.Store.ClearToken(); err != nil {
				return err
			}
			if err := s.Store.ClearHint(); err != nil {
				return err
			}
			newRenderer(a.out).note("Signed out locally.")
			return nil
		},
	}
}
