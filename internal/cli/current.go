package cli

import (
	clierrors "github.com/ariel-frischer/versionlog/internal/errors"
	"github.com/ariel-frischer/versionlog/internal/output"
	"github.com/ariel-frischer/versionlog/internal/record"
	"github.com/spf13/cobra"
)

func newCurrentCmd(a *app) *cobra.Command {
	var (
		next  string
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Print the current application version",
		Long: `Print the current application version.

The version is the configured baseline with every record applied in creation
order: major resets minor and patch to zero, minor resets patch, patch
increments patch. Records from all branches count.

With --next, print the version a new record of that level would produce.`,
		Example: `  versionlog current
  versionlog current --plain
  versionlog current --next minor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.ledger()
			if err != nil {
				return err
			}

			if next != "" {
				level, err := record.ParseLevel(next)
				if err != nil {
					return clierrors.InvalidLevel(next)
				}
				version, err := l.NextVersion(level)
				if err != nil {
					return err
				}
				output.PrintVersion(cmd.OutOrStdout(), "Next "+string(level)+" version:", version, plain)
				return nil
			}

			version, err := l.CurrentVersion()
			if err != nil {
				return err
			}
			output.PrintVersion(cmd.OutOrStdout(), "Current version:", version, plain)
			return nil
		},
	}
	cmd.GroupID = GroupReporting
	cmd.Flags().StringVar(&next, "next", "", "Show the version a new record of this level would produce")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print only the version number")
	return cmd
}
