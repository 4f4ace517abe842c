package cli

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List download tasks in purge order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		if _, err := a.session.Authenticate(ctx); err != nil {
			return err
		}
		defer a.session.Disconnect(ctx)

		tasks, err := a.repo.TasksSorted(ctx)
		if err != nil {
			return err
		}

		if jsonOut != "" {
			return writeJSON(jsonOut, tasks)
		}
		printTaskTable(tasks)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
