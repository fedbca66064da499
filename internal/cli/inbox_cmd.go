package cli

import (
	"fmt"

	"github.com/alexanderramin/tollgate/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newInboxCmd(app *App) *cobra.Command {
	var unread, broadcast bool

	cmd := &cobra.Command{
		Use:   "inbox [USER]",
		Short: "Show stored notifications",
		Long: `Show the notifications the inbox sink stored for USER.
--broadcast lists alerts addressed to no user, such as operator alerts for
stages nobody can approve.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var user string
			switch {
			case broadcast:
				if len(args) > 0 {
					return fmt.Errorf("--broadcast takes no USER")
				}
			case len(args) == 1:
				user = args[0]
			default:
				return fmt.Errorf("USER is required unless --broadcast is set")
			}

			notes, err := app.Inbox.List(cmd.Context(), user, unread)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatInbox(user, notes, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unread, "unread", false, "Only unread notifications")
	cmd.Flags().BoolVar(&broadcast, "broadcast", false, "Show notifications addressed to no user")

	cmd.AddCommand(&cobra.Command{
		Use:   "read ID",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Inbox.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s read\n", args[0])
			return nil
		},
	})

	return cmd
}
