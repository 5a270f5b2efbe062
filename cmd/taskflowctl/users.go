package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezkam/taskflow/internal/config"
	"github.com/rezkam/taskflow/internal/domain"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage user accounts",
	}
	cmd.AddCommand(usersListCmd())
	cmd.AddCommand(usersSetRoleCmd())
	return cmd
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(_ *config.CLIConfig, s adminStore) error {
				users, err := s.ListUsers(cmd.Context())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tROLE\tTITLE")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Role, u.Title)
				}
				return tw.Flush()
			})
		},
	}
}

// usersSetRoleCmd changes a role without an acting admin. It is the way
// back in when no ADMIN account is left.
func usersSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <user-id|name> <ADMIN|OPERATOR|USER>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := domain.NewUserRole(args[1])
			if err != nil {
				return err
			}

			return withStore(cmd.Context(), func(_ *config.CLIConfig, s adminStore) error {
				u, err := resolveUser(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				updated, err := s.UpdateUserRole(cmd.Context(), u.ID, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Name, updated.Role)
				return nil
			})
		},
	}
}

// resolveUser matches an ID first, then a login name.
func resolveUser(ctx context.Context, s adminStore, ref string) (*domain.User, error) {
	u, err := s.FindUserByID(ctx, ref)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return s.FindUserByName(ctx, ref)
}
