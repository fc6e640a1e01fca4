package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var amountCmd = &cobra.Command{
	Use:   "amount [value]",
	Short: "Show or set the premium amount used in template tasks",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		ctx := cmd.Context()
		app.List.Load(ctx)
		if len(args) == 0 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\n", app.List.Amount())
			return nil
		}

		amount, err := app.List.SetAmount(ctx, args[0])
		if err != nil {
			return MapError(fmt.Errorf("failed to set amount: %w", err))
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Premium amount set to %d.\n", amount)
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Fetch the template again and reconcile the list",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		rows, err := app.List.Reconcile(cmd.Context())
		if err != nil {
			return MapError(fmt.Errorf("failed to reload from %s: %w", app.Source.Describe(), err))
		}
		return printList(cmd.OutOrStdout(), rows, app.List.Amount(), false)
	},
}

func init() {
	RootCmd.AddCommand(amountCmd)
	RootCmd.AddCommand(reloadCmd)
}
