package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent changes to the task list",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		if app.EventLog == nil {
			return NewCLIError("no history for this backend", "History is kept for file, sqlite and postgres storage", nil)
		}
		recent, err := app.EventLog.Recent(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			data, err := json.MarshalIndent(recent, "", "  ")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, string(data))
			return nil
		}
		if len(recent) == 0 {
			_, _ = fmt.Fprintln(out, "No history yet.")
			return nil
		}
		for _, e := range recent {
			line := fmt.Sprintf("%s  %-16s", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Type)
			if e.Text != "" {
				line += "  " + e.Text
			}
			if len(e.Metadata) > 0 {
				var parts []string
				for _, k := range sortedKeys(e.Metadata) {
					parts = append(parts, k+"="+e.Metadata[k])
				}
				line += "  (" + strings.Join(parts, " ") + ")"
			}
			_, _ = fmt.Fprintln(out, strings.TrimRight(line, " "))
		}
		return nil
	},
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	RootCmd.AddCommand(historyCmd)
}
