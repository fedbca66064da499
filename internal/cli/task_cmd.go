package cli

import (
	"fmt"

	"github.com/alexanderramin/tollgate/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Approver task lists and SLA sweeps",
	}

	cmd.AddCommand(
		newTaskListCmd(app),
		newTaskSweepCmd(app),
	)

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list USER",
		Short: "List a user's open approval tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.Tasks.ListForUser(cmd.Context(), args[0], all)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskList(args[0], tasks, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include completed and superseded tasks")

	return cmd
}

func newTaskSweepCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark pending tasks past their due date as overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.SLA.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSweep(result))
			return nil
		},
	}
}
