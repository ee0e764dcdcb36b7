package cli

import (
	"fmt"
	"time"

	"github.com/ariel-frischer/versionlog/internal/output"
	"github.com/ariel-frischer/versionlog/internal/watch"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the current version whenever records change",
		Long: `Watch the record directory and print the current version each time it changes.

Runs until interrupted. Useful next to a dev server or in a terminal pane while
rebasing branches that carry change records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.ledger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var spin *spinner.Spinner
			if !plain {
				spin = output.NewSpinner(out, " watching "+a.cfg.Root)
			}
			defer output.StopSpinner(spin)

			last := ""
			w := watch.New(a.cfg.Root, a.logger)
			return w.Run(cmd.Context(), func() error {
				version, err := l.CurrentVersion()
				if err != nil {
					return err
				}
				if version == last {
					return nil
				}
				last = version
				if plain {
					fmt.Fprintln(out, version)
					return nil
				}
				output.StopSpinner(spin)
				output.PrintVersion(out, time.Now().Format(time.TimeOnly)+" Current version:", version, false)
				output.StartSpinner(spin)
				return nil
			})
		},
	}
	cmd.GroupID = GroupReporting
	cmd.Flags().BoolVar(&plain, "plain", false, "Print only version numbers")
	return cmd
}
