// Package cli provides the cloudram command line interface.
package cli

import (
	"context"
	"io"
	"os"

	"terraform-provider-cloudram/internal/config"
	"terraform-provider-cloudram/internal/localclient"
	"terraform-provider-cloudram/internal/stack"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state shared by all commands of one invocation.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configFile string
	logLevel   string
	cfg        *config.Config

	newStack    func(ctx context.Context, cfg *config.Config) *stack.Stack
	interactive func() bool
	openUrl     func(url string) error
	prompts     *prompter
}

// prompter is shared so buffered answers survive between questions.
func (a *app) prompter() *prompter {
	if a.prompts == nil {
		a.prompts = newPrompter(a.in, a.out)
	}
	return a.prompts
}

func newApp(in io.Reader, out io.Writer, errOut io.Writer) *app {
	a := &app{
		in:     in,
		out:    out,
		errOut: errOut,
		newStack: func(ctx context.Context, cfg *config.Config) *stack.Stack {
			return stack.New(ctx, cfg, stack.Options{})
		},
	}
	a.interactive = func() bool {
		return isTerminal(a.in)
	}
	a.openUrl = localclient.NewLocalClient().OpenUrl
	return a
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cloudram",
		Short: "cloudram - allocate and resume your cloud VM",
		Long: `cloudram allocates, resumes and terminates the single cloud VM that
belongs to you, once the local Agent is running.

Configuration is read from ~/.cloudram/config.yaml, CLOUDRAM_* environment
variables and the flags below, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(setupLogging(cmd.Context(), a.logLevel))

			if cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(viper.New(), a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ~/.cloudram/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", os.Getenv("CLOUDRAM_LOG"), "log level written to stderr: trace, debug, info, warn, error or off")
	flags.String("api-base-url", "", "control plane base url")
	flags.String("agent-url", "", "local Agent url")
	flags.String("status-url", "", "operational view url")
	flags.String("token-file", "", "file holding the access token, re-read on every use")
	flags.String("data-dir", "", "directory for the local cache")
	flags.Bool("disable-tls-validation", false, "skip TLS certificate validation")

	root.AddCommand(a.allocateCommand())
	root.AddCommand(a.statusCommand())
	root.AddCommand(a.agentCommand())
	root.AddCommand(a.loginCommand())
	root.AddCommand(a.logoutCommand())
	root.AddCommand(a.versionCommand())

	return root
}

// stack builds the components for one command from the loaded config.
func (a *app) stack(ctx context.Context) *stack.Stack {
	return a.newStack(ctx, a.cfg)
}

// reportedError is a failure that was already shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// IsReported tells whether err was already printed by the command.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// Execute runs the root command with the process streams.
func Execute(ctx context.Context) error {
	cmd := newApp(os.Stdin, os.Stdout, os.Stderr).rootCommand()
	return cmd.ExecuteContext(ctx)
}
