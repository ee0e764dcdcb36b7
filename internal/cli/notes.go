package cli

import (
	"encoding/json"
	"fmt"

	clierrors "github.com/ariel-frischer/versionlog/internal/errors"
	"github.com/ariel-frischer/versionlog/internal/notes"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats for the notes command.
const (
	FormatTerminal = "terminal"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
	FormatJSON     = "json"
)

func newNotesCmd(a *app) *cobra.Command {
	var (
		format string
		plain  bool
		limit  int
		title  string
	)

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Show release notes grouped by major, minor and patch",
		Long: `Show release notes built from the change records.

Every record is listed under the version it produced. The yaml and json
formats emit the raw tree: majors hold minors under "notes", minors hold
patches under "notes", and each patch is the full record.`,
		Example: `  versionlog notes
  versionlog notes --plain --limit 10
  versionlog notes --format markdown --title "MyApp Releases" > RELEASES.md
  versionlog notes --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.ledger()
			if err != nil {
				return err
			}
			tree, err := l.PatchNotesTree()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case FormatTerminal:
				return notes.FormatTerminal(tree, out, notes.FormatOptions{Plain: plain, Limit: limit})
			case FormatMarkdown:
				return notes.RenderMarkdown(tree, title, out)
			case FormatYAML:
				exported, err := notes.Export(tree)
				if err != nil {
					return err
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(exported); err != nil {
					return fmt.Errorf("encoding yaml: %w", err)
				}
				return enc.Close()
			case FormatJSON:
				exported, err := notes.Export(tree)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(exported)
			default:
				return clierrors.InvalidFormat(format, FormatTerminal, FormatMarkdown, FormatYAML, FormatJSON)
			}
		},
	}
	cmd.GroupID = GroupReporting
	cmd.Flags().StringVarP(&format, "format", "f", FormatTerminal, "Output format: terminal | markdown | yaml | json")
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain terminal output (no colors/icons)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum releases to show in terminal format (0 = all)")
	cmd.Flags().StringVar(&title, "title", "", "Document title for markdown format")
	return cmd
}
