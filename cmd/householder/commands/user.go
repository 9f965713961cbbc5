package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Operator commands for user accounts",
	}
	cmd.AddCommand(userDisableCmd(), userEnableCmd(), userDeleteCmd())
	return cmd
}

func userDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable [email]",
		Short: "Disable a user and end its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStack()
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.app.UserByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := st.app.DisableUser(cmd.Context(), u.ID()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s\n", u.Email())
			return nil
		},
	}
}

func userEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable [email]",
		Short: "Re-enable a disabled user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStack()
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.app.UserByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := st.app.EnableUser(cmd.Context(), u.ID()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enabled %s\n", u.Email())
			return nil
		},
	}
}

func userDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [email]",
		Short: "Delete a user, dissolving households it was alone in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStack()
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.app.UserByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rep, err := st.app.DeleteUser(cmd.Context(), u.ID())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted %s\n", u.Email())
			fmt.Fprintf(out, "  households dissolved: %d\n", len(rep.Dissolved))
			fmt.Fprintf(out, "  memberships removed:  %d\n", len(rep.RemovedFrom))
			fmt.Fprintf(out, "  invitations dropped:  %d\n", len(rep.Uninvited))
			fmt.Fprintf(out, "  records detached:     %d transactions, %d sprees, %d tasks\n",
				rep.DetachedTransactions, rep.DetachedSprees, rep.DetachedTasks)
			return nil
		},
	}
}
