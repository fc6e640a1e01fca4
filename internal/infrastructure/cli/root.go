package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskboard/internal/infrastructure/wiring"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath string
	rootDir    string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "taskboard",
	Version: Version,
	Short:   "A to-do list seeded from a template with premium amounts",
	Long: `Taskboard keeps a to-do list that is seeded from a template document.
Template tasks may contain {{amount}} or {{amount*N}} placeholders which are
filled in with the current premium amount. The list can be used from the
command line, a terminal UI, a browser, or an MCP client.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := RootCmd.ExecuteContext(ctx)
	return Report(RootCmd.ErrOrStderr(), err)
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: taskboard.yaml in the workspace root)")
	RootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "Workspace root holding .taskboard/ (default: current directory)")
}

// loadApp wires the services for the selected workspace, logging to stderr.
func loadApp(cmd *cobra.Command) (*wiring.App, error) {
	return loadAppWithLogs(cmd, cmd.ErrOrStderr())
}

func loadAppWithLogs(cmd *cobra.Command, logs io.Writer) (*wiring.App, error) {
	cfg, err := config.Load(configPath, rootDir)
	if err != nil {
		return nil, NewCLIError("invalid configuration", "Check taskboard.yaml and TASKBOARD_* environment variables", err)
	}
	app, err := wiring.Build(cmd.Context(), cfg, logs)
	if err != nil {
		return nil, NewCLIError("failed to start taskboard", "Check the storage and template settings", err)
	}
	return app, nil
}
