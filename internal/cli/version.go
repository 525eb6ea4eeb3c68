package cli

import (
	"fmt"

	"terraform-provider-cloudram/internal/version"

	"github.com/spf13/cobra"
)

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "cloudram %s\n", version.Version)
			fmt.Fprintf(a.out, "  Commit:     %s\n", version.Commit)
			fmt.Fprintf(a.out, "  Build Date: %s\n", version.BuildDate)
		},
	}
}
