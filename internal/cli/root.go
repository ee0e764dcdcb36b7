// Package cli implements the versionlog command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ariel-frischer/versionlog/internal/config"
	clierrors "github.com/ariel-frischer/versionlog/internal/errors"
	"github.com/ariel-frischer/versionlog/internal/ledger"
	"github.com/ariel-frischer/versionlog/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Command group IDs
const (
	GroupRecords       = "records"
	GroupReporting     = "reporting"
	GroupConfiguration = "configuration"
)

// app holds state shared by all commands of one invocation.
type app struct {
	configPath string
	rootDir    string
	debug      bool

	cfg    *config.Configuration
	logger *zap.Logger
}

var rootCmd = newRootCmd()

// clock stamps new and updated records.
var clock = time.Now

// newRootCmd builds the full command tree. Tests build a fresh tree per
// run so flag values never leak between executions.
func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "versionlog",
		Short: "Track release versions through per-branch change records",
		Long: `versionlog derives your application's version from a directory of change records.

Each change is recorded as a JSON file tagged major, minor or patch. The current
version is the baseline with every record folded on top in creation order, and
the same fold groups the records into release notes.

Source: https://github.com/ariel-frischer/versionlog`,
		Example: `  versionlog init
  versionlog log minor --description "Add login page" --author alice
  versionlog current
  versionlog current --next major
  versionlog notes --format markdown
  versionlog log update`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Project config file (default: .versionlog/config.yml)")
	cmd.PersistentFlags().StringVar(&a.rootDir, "root", "", "Record directory (overrides config root)")
	cmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable debug logging")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), c.UseLine())
	})

	cmd.AddGroup(
		&cobra.Group{ID: GroupRecords, Title: "Change Records:"},
		&cobra.Group{ID: GroupReporting, Title: "Versions and Notes:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)

	cmd.AddCommand(
		newInitCmd(a),
		newLogCmd(a),
		newListCmd(a),
		newCurrentCmd(a),
		newNotesCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// load reads configuration and sets up logging.
func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return clierrors.ConfigLoad(err)
	}
	if a.rootDir != "" {
		cfg.Root = a.rootDir
		cfg.TemplatePath = config.DefaultTemplatePath(a.rootDir)
	}
	a.cfg = cfg
	a.logger = logging.New(a.debug || cfg.Debug, os.Stderr)
	a.logger.Debug("configuration loaded",
		zap.String("root", cfg.Root),
		zap.String("baseline", cfg.BaselineTriple().String()),
		zap.Bool("branch_policy", cfg.BranchPolicy),
		zap.String("branch_mode", cfg.BranchMode))
	return nil
}

// projectConfigPath returns the project config file in effect.
func (a *app) projectConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ProjectConfigPath()
}

// ledger builds the engine from the loaded configuration. The git
// repository is discovered from the record directory upwards.
func (a *app) ledger() (*ledger.Ledger, error) {
	lc, err := a.cfg.ToLedger()
	if err != nil {
		return nil, clierrors.ConfigLoad(err)
	}

	repoDir, err := filepath.Abs(filepath.Dir(filepath.Clean(lc.Root)))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", lc.Root, err)
	}
	resolver, err := a.cfg.Resolver(repoDir, a.logger)
	if err != nil {
		return nil, clierrors.ConfigLoad(err)
	}

	return ledger.New(lc, resolver, ledger.WithLogger(a.logger), ledger.WithClock(clock)), nil
}

// Execute runs the root command and prints any error. Use ExitCode to
// turn the returned error into a process exit status.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, rootCmd)
}

func execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	clierrors.FprintError(cmd.ErrOrStderr(), clierrors.FromEngineError(err))
	return err
}
