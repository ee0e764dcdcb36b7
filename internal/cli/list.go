package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/ariel-frischer/versionlog/internal/output"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List change records, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.ledger()
			if err != nil {
				return err
			}
			entries, err := l.Records()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No records in %s. Create one with: versionlog log <level>\n", a.cfg.Root)
				return nil
			}

			rows := make([]output.Row, 0, len(entries))
			for _, e := range entries {
				rec := e.Record
				note := rec.Time().UTC().Format(time.DateTime)
				if rec.BranchID != "" {
					note += " " + shortBranch(rec.BranchID)
				}
				rows = append(rows, output.Row{
					Key:   strings.TrimSuffix(e.Filename, ".json"),
					Value: describeRecord(rec.Description),
					Note:  note,
				})
			}
			output.PrintRows(out, rows)
			return nil
		},
	}
	cmd.GroupID = GroupRecords
	return cmd
}

// shortBranch abbreviates commit hashes; branch names are kept.
func shortBranch(id string) string {
	if len(id) == 40 && strings.Trim(id, "0123456789abcdef") == "" {
		return id[:7]
	}
	return id
}

func describeRecord(description string) string {
	if strings.TrimSpace(description) == "" {
		return "(no description)"
	}
	return description
}
