package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ariel-frischer/versionlog/internal/config"
	clierrors "github.com/ariel-frischer/versionlog/internal/errors"
	"github.com/ariel-frischer/versionlog/internal/output"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change versionlog configuration",
		Long: `Show and change versionlog configuration.

Configuration is layered: defaults, then ~/.config/versionlog/config.yml, then
.versionlog/config.yml, then VERSIONLOG_* environment variables.`,
	}
	cmd.GroupID = GroupConfiguration
	cmd.AddCommand(newConfigShowCmd(a), newConfigKeysCmd(), newConfigSetCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			values := map[string]any{
				"root":          a.cfg.Root,
				"baseline":      a.cfg.BaselineTriple().String(),
				"branch_policy": a.cfg.BranchPolicy,
				"branch_mode":   a.cfg.BranchMode,
				"template_path": a.cfg.TemplatePath,
				"debug":         a.cfg.Debug,
			}

			if asJSON {
				template, err := a.cfg.LoadTemplate()
				if err != nil {
					return err
				}
				values["template"] = template
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(values)
			}

			sources, err := config.Sources(config.LoadOptions{ProjectConfigPath: a.configPath})
			if err != nil {
				return clierrors.ConfigLoad(err)
			}
			if a.rootDir != "" {
				sources["root"] = "flag"
			}

			output.PrintSectionHeader(out, "Configuration Sources")
			rows := make([]output.Row, 0, len(values))
			for _, key := range config.SortedKeys() {
				rows = append(rows, output.Row{
					Key:   key,
					Value: fmt.Sprint(values[key]),
					Note:  "(" + string(sources[key]) + ")",
				})
			}
			output.PrintRows(out, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format, including the resolved template")
	return cmd
}

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List configuration keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]output.Row, 0, len(config.KnownKeys))
			for _, key := range config.SortedKeys() {
				schema := config.KnownKeys[key]
				value := schema.Type.String()
				if len(schema.AllowedValues) > 0 {
					value = fmt.Sprintf("%v", schema.AllowedValues)
				}
				rows = append(rows, output.Row{
					Key:   key,
					Value: value,
					Note:  fmt.Sprintf("%s (default: %v)", schema.Description, schema.Default),
				})
			}
			output.PrintRows(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	var user bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value in the project (or user) config",
		Example: `  versionlog config set baseline 2.0.0
  versionlog config set branch_policy false
  versionlog config set --user branch_mode name`,
		Args: cobra.ExactArgs(2),
		// Runs without loading config so a broken file can be repaired.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.projectConfigPath()
			if user {
				var err error
				path, err = config.UserConfigPath()
				if err != nil {
					return clierrors.ConfigLoad(err)
				}
			}

			parsed, err := config.SetValue(path, args[0], args[1])
			if err != nil {
				return clierrors.NewArgumentError(err.Error(), "List valid keys with: versionlog config keys")
			}
			output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Set %s = %v in %s", args[0], parsed.Parsed, path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "Write to the user config instead of the project config")
	return cmd
}
