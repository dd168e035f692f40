package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskboard/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login <password>",
	Short: "Switch to admin mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.gate.Login(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged in as admin.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Switch back to viewer mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.gate.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd <current> <new>",
	Short: "Change the admin password",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.gate.ChangePassword(args[0], args[1]); err != nil {
			if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
				return fmt.Errorf("current password is incorrect: %w", err)
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the current role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		name := a.prefs.Settings().Profile.Name
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", name, a.gate.Role())
		return nil
	},
}
