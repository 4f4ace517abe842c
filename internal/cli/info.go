package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synoprune/synoprune/internal/synology"
)

var infoCmd = &cobra.Command{
	Use:   "info <title>",
	Short: "Show full detail for the task matching a title",
	Args:  cobra.ExactArgs(1),
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

		tasks, err := a.repo.Tasks(ctx)
		if err != nil {
			return err
		}

		var match *synology.Task
		for i := range tasks {
			if tasks[i].Title == args[0] {
				match = &tasks[i]
				break
			}
		}
		if match == nil {
			return fmt.Errorf("no task titled %q", args[0])
		}

		if jsonOut != "" {
			return writeJSON(jsonOut, match)
		}
		printTaskDetail(*match)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
