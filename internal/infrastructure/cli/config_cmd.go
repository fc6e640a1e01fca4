package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskboard/internal/infrastructure/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the taskboard configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, rootDir)
		if err != nil {
			return NewCLIError("invalid configuration", "Check taskboard.yaml and TASKBOARD_* environment variables", err)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, _ = cmd.OutOrStdout().Write(data)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a taskboard.yaml with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := rootDir
		if root == "" {
			root = "."
		}
		path := filepath.Join(root, "taskboard.yaml")
		if _, err := os.Stat(path); err == nil {
			return NewCLIError("config already exists: "+path, "Edit the existing file or remove it first", nil)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		cfg := config.Default()
		cfg.Storage.Root = "."
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	RootCmd.AddCommand(configCmd)
}
