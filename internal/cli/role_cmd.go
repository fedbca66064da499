package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tollgate/internal/cli/formatter"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/spf13/cobra"
)

func newRoleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage the role directory",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "assign USER ROLE",
			Short: "Give a user a role, replacing any previous one",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				user := strings.TrimSpace(args[0])
				role := domain.Role(strings.ToLower(strings.TrimSpace(args[1])))
				if user == "" || role == "" {
					return fmt.Errorf("%w: user and role must not be empty", domain.ErrInvalidRequest)
				}
				if err := app.Roles.Assign(cmd.Context(), user, role); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", formatter.Bold(user), formatter.RoleBadge(role))
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove USER",
			Short: "Remove a user's role",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Roles.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed role of %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List role assignments",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				assignments, err := app.Roles.List(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRoles(assignments, app.now()))
				return nil
			},
		},
	)

	return cmd
}
