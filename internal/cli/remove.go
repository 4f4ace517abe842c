package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <titles>",
	Short: "Delete the named tasks remotely (comma-separated titles)",
	Long: `Deletes every task whose title appears in the comma-separated list.
Titles are not unique, so a title matching several tasks removes all of
them. Downloaded files are left in place; use purge to reclaim storage.`,
	Args: cobra.ExactArgs(1),
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

		wanted := make(map[string]bool)
		for _, title := range strings.Split(args[0], ",") {
			wanted[strings.TrimSpace(title)] = true
		}

		var ids []string
		for _, t := range tasks {
			if wanted[t.Title] {
				ids = append(ids, t.ID)
			}
		}
		if len(ids) == 0 {
			return fmt.Errorf("no tasks match the given titles")
		}

		results, err := a.repo.DeleteTasks(ctx, ids, true)
		if err != nil {
			return err
		}

		if jsonOut != "" {
			return writeJSON(jsonOut, results)
		}
		for _, r := range results {
			if r.OK() {
				fmt.Printf("deleted %s\n", r.ID)
			} else {
				fmt.Printf("failed %s (code %d)\n", r.ID, r.Error)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
