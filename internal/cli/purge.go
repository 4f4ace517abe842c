package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var purgeDryRun bool

var purgeCmd = &cobra.Command{
	Use:   "purge <size-in-GB>",
	Short: "Remove the least-valuable tasks until the retained size fits the budget",
	Long: `Selects tasks ascending by uploaded bytes (ties broken by oldest
completion) and removes them, remotely and then from the filesystem
root, until the accumulated size passes the budget. The budget uses
decimal gigabytes (1 GB = 1,000,000,000 bytes).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		budgetGB, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid size %q: expected gigabytes as a number", args[0])
		}

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

		result, err := a.orch.Purge(ctx, tasks, budgetGB, purgeDryRun)
		if err != nil {
			return err
		}

		if jsonOut != "" {
			return writeJSON(jsonOut, result)
		}

		fmt.Println(result.Message)
		for _, t := range result.Tasks {
			fmt.Printf("  %s  %s  %s\n", t.ID, humanize.Bytes(uint64(t.Size)), t.Title)
		}
		for _, l := range result.Local {
			if l.Err != nil {
				fmt.Printf("  ! %s: %v\n", l.Path, l.Err)
			}
		}
		return nil
	},
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeDryRun, "dry-run", false,
		"report what would be purged without deleting anything")
	rootCmd.AddCommand(purgeCmd)
}
