package cli

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/versionlog/internal/config"
	"github.com/ariel-frischer/versionlog/internal/output"
	"github.com/spf13/cobra"
)

//go:embed stubs/template.json
var stubTemplate []byte

func newInitCmd(a *app) *cobra.Command {
	var writeConfig, force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the record directory and publish the record template",
		Long: `Create the record directory and publish the record template.

This command:
  1. Creates the record directory (default ./version)
  2. Publishes stubs/template.json inside it, unless one already exists
  3. With --write-config, writes a commented .versionlog/config.yml

Fields added to the template are copied into every new record. The reserved
fields (id, type, branch_id, description, author, tags, timestamp) are always
filled in by versionlog.`,
		Example: `  versionlog init
  versionlog init --write-config
  versionlog init --root ./releases`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.ledger()
			if err != nil {
				return err
			}
			if err := l.Init(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			output.PrintSuccess(out, fmt.Sprintf("Record directory: %s", a.cfg.Root))

			written, err := writeIfMissing(a.cfg.TemplatePath, stubTemplate, false)
			if err != nil {
				return fmt.Errorf("publishing template: %w", err)
			}
			if written {
				output.PrintSuccess(out, fmt.Sprintf("Template: %s", a.cfg.TemplatePath))
			} else {
				output.PrintSkipped(out, fmt.Sprintf("Template exists: %s", a.cfg.TemplatePath))
			}

			if !writeConfig {
				return nil
			}
			path := a.projectConfigPath()
			written, err = writeIfMissing(path, []byte(config.GetDefaultConfigTemplate()), force)
			if err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			if written {
				output.PrintSuccess(out, fmt.Sprintf("Config: %s", path))
			} else {
				output.PrintSkipped(out, fmt.Sprintf("Config exists: %s (use --force to overwrite)", path))
			}
			return nil
		},
	}
	cmd.GroupID = GroupConfiguration
	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "Also write a commented project config")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing project config")
	return cmd
}

// writeIfMissing writes data to path unless the file exists and force is
// false. It reports whether the file was written.
func writeIfMissing(path string, data []byte, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
