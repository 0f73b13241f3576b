package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/civic-desk-api/internal/models"
)

const listPageSize = 100

// UserStore lists profiles.
type UserStore interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

// RoleSetter changes a user's role by email.
type RoleSetter interface {
	SetRoleByEmail(ctx context.Context, email string, role models.UserRole) (*models.User, error)
}

// Connector opens the stores lazily so commands that fail argument checks
// never touch the database.
type Connector func() (UserStore, RoleSetter, func(), error)

// UserCommands returns the user command group.
func UserCommands(connect Connector) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management",
	}
	userCmd.AddCommand(listUsersCmd(connect))
	userCmd.AddCommand(setRoleCmd(connect))
	return userCmd
}

func listUsersCmd(connect Connector) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := models.UserFilter{Page: 1, PageSize: listPageSize}
			if role != "" {
				r := models.UserRole(role)
				if !r.Valid() {
					return fmt.Errorf("unknown role %q", role)
				}
				filter.Role = &r
			}
			store, _, closeFn, err := connect()
			if err != nil {
				return err
			}
			defer closeFn()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tACTIVE\tCREATED")
			shown := 0
			for {
				users, total, err := store.List(cmd.Context(), filter)
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n", u.ID, u.Email, u.FullName, u.Role, u.IsActive, u.CreatedAt.Format(time.DateOnly))
				}
				shown += len(users)
				if len(users) == 0 || shown >= total {
					break
				}
				filter.Page++
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d user(s)\n", shown)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only list users with this role")
	return cmd
}

func setRoleCmd(connect Connector) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <role>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.UserRole(args[1])
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", args[1])
			}
			_, setter, closeFn, err := connect()
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := setter.SetRoleByEmail(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}
}
