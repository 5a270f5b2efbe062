package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/config"
	"github.com/rezkam/taskflow/internal/domain"
	"github.com/rezkam/taskflow/internal/infrastructure/clock"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect tasks",
	}
	cmd.AddCommand(tasksBoardCmd())
	return cmd
}

func tasksBoardCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print every task with its display status",
		Long: `Print the task board as the server would classify it.

Without --at the network clock is used. --at takes an RFC 3339 instant
and evaluates overdue and completion status at that moment instead.

Examples:
  taskflowctl tasks board
  taskflowctl tasks board --at 2024-01-10T09:00:00+08:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(cfg *config.CLIConfig, s adminStore) error {
				loc := cfg.Clock.Location()

				var clk task.Clock
				if at != "" {
					ref, err := time.Parse(time.RFC3339, at)
					if err != nil {
						return fmt.Errorf("invalid --at %q: %w", at, err)
					}
					clk = clock.Fixed(ref)
				} else {
					var err error
					clk, err = clock.NewNetwork(clock.NetworkConfig{
						URL:      cfg.Clock.TimeURL,
						Timeout:  cfg.Clock.Timeout,
						CacheTTL: cfg.Clock.CacheTTL,
					})
					if err != nil {
						return err
					}
				}

				board, err := task.NewService(s, clk, task.Config{Location: loc}).Board(cmd.Context(), nil, domain.BoardFilterAll)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "reference: %s (today %s)\n",
					board.ReferenceTime.In(loc).Format(time.RFC3339),
					domain.DateOf(board.ReferenceTime, loc))

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDUE\tSTATUS\tDISPLAY\tTITLE")
				for _, v := range board.Tasks {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Task.ID, v.Task.DueDate, v.Task.Status, describe(v.Display), v.Task.Title)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate the board at this RFC 3339 instant")
	return cmd
}

func describe(d domain.DisplayStatus) string {
	switch d.Kind {
	case domain.DisplayOverdue:
		return fmt.Sprintf("%s (%dd)", d.Kind, d.OverdueDays)
	case domain.DisplayInProgress:
		return fmt.Sprintf("%s (%d%%)", d.Kind, d.Progress)
	default:
		return string(d.Kind)
	}
}
