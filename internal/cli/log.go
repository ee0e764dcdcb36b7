package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	clierrors "github.com/ariel-frischer/versionlog/internal/errors"
	"github.com/ariel-frischer/versionlog/internal/ledger"
	"github.com/ariel-frischer/versionlog/internal/output"
	"github.com/ariel-frischer/versionlog/internal/record"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLogCmd(a *app) *cobra.Command {
	var (
		description string
		author      string
		tags        string
		sets        []string
	)

	cmd := &cobra.Command{
		Use:   "log [level]",
		Short: "Record a new change (major, minor or patch)",
		Long: `Record a new change for the current git branch.

The level defaults to patch; unrecognized levels are treated as patch. The
record file is named after its creation time, a sequence within that second,
the level and the version it produces, e.g. 2024_05_01_093000_0001_minor_1.3.0.json.

With branch_policy enabled (the default), the branch must have at least one
commit and may only hold one record. Use 'versionlog log update' to refresh an
existing record instead.`,
		Example: `  versionlog log
  versionlog log minor --description "Add login page" --author alice
  versionlog log major -m "Drop v1 API" --tags breaking,api
  versionlog log patch --set ticket=REL-42 --set reviewed=true`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := record.Patch
			if len(args) == 1 {
				level = record.NormalizeLevel(args[0])
				if _, err := record.ParseLevel(args[0]); err != nil {
					a.logger.Warn("unknown level, using patch", zap.String("level", args[0]))
				}
			}

			overrides, err := parseSetFlags(sets)
			if err != nil {
				return err
			}

			l, err := a.ledger()
			if err != nil {
				return err
			}
			branchID, err := l.ResolveBranch()
			if err != nil {
				return err
			}
			version, err := l.NextVersion(level)
			if err != nil {
				return err
			}

			filename, err := l.Create(ledger.CreateRequest{
				BranchID:    branchID,
				Level:       level,
				Description: description,
				Author:      author,
				Tags:        tags,
				Overrides:   overrides,
			})
			if err != nil {
				return err
			}

			output.PrintSuccess(cmd.OutOrStdout(),
				fmt.Sprintf("Generated a new %s log: %s (version %s)", level, strings.TrimSuffix(filename, ".json"), version))
			return nil
		},
	}
	cmd.GroupID = GroupRecords
	cmd.Flags().StringVarP(&description, "description", "m", "", "Description of the change")
	cmd.Flags().StringVar(&author, "author", "", "Author to credit")
	cmd.Flags().StringVar(&tags, "tags", "", "Free-form tags")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Extra record field as key=value (JSON values allowed, repeatable)")

	cmd.AddCommand(newLogUpdateCmd(a))
	return cmd
}

func newLogUpdateCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh the timestamp of an existing record",
		Long: `Refresh the timestamp of an existing record, moving it to the end of the history.

Without --id, the record created for the current git branch is updated. Only
the timestamp changes; the file name and all other fields are kept.`,
		Example: `  versionlog log update
  versionlog log update --id 5f0c2a7e-8d7b-4f57-9a39-0d5c8f2f8a11`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.ledger()
			if err != nil {
				return err
			}

			var filename string
			if id != "" {
				filename, err = l.Update(id)
			} else {
				var branchID string
				branchID, err = l.ResolveBranch()
				if err != nil {
					return err
				}
				filename, err = l.UpdateBranch(branchID)
			}
			if err != nil {
				return err
			}

			output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Updated log: %s", strings.TrimSuffix(filename, ".json")))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Record id to update (default: the current branch's record)")
	return cmd
}

// parseSetFlags turns key=value pairs into template overrides. Values that
// parse as JSON keep their type; anything else is a string.
func parseSetFlags(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}

	overrides := make(map[string]any, len(sets))
	for _, kv := range sets {
		key, raw, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, clierrors.NewArgumentErrorWithUsage(
				fmt.Sprintf("invalid --set value %q", kv),
				"versionlog log [level] --set key=value",
			)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		overrides[key] = value
	}
	return overrides, nil
}
