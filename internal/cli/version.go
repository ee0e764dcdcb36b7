package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ariel-frischer/versionlog/internal/build"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var plain, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display versionlog build information",
		Long:  "Display version, commit, build date, and Go version information for versionlog",
		Example: `  # Show version info
  versionlog version

  # Plain output (for scripts)
  versionlog version --plain`,
		Args: cobra.NoArgs,
		// Build info needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := build.Current()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			if plain {
				fmt.Fprintf(out, "versionlog %s\n", info.Version)
				fmt.Fprintf(out, "commit: %s\n", info.Commit)
				fmt.Fprintf(out, "built: %s\n", info.BuildDate)
				fmt.Fprintf(out, "go: %s\n", info.GoVersion)
				fmt.Fprintf(out, "platform: %s\n", info.Platform)
				return nil
			}

			bold := color.New(color.Bold).SprintFunc()
			dim := color.New(color.Faint).SprintFunc()
			fmt.Fprintf(out, "%s %s\n", bold("versionlog"), info.Version)
			fmt.Fprintf(out, "  %s %s\n", dim("commit:  "), info.Commit)
			fmt.Fprintf(out, "  %s %s\n", dim("built:   "), info.BuildDate)
			fmt.Fprintf(out, "  %s %s\n", dim("go:      "), info.GoVersion)
			fmt.Fprintf(out, "  %s %s\n", dim("platform:"), info.Platform)
			fmt.Fprintf(out, "  %s %s\n", dim("source:  "), build.SourceURL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain output without formatting")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
