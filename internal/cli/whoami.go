package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user's identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext()
		if err != nil {
			return err
		}
		user, err := app.ensureLogin(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ID:           %s\n", user.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Email:        %s\n", user.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "Display name: %s\n", user.DisplayName)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session state and remaining token lifetime",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext()
		if err != nil {
			return err
		}
		if _, err := app.ensureLogin(cmd); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "State:             %s\n", app.session.State())
		fmt.Fprintf(cmd.OutOrStdout(), "Minutes remaining: %.1f\n", app.session.MinutesRemaining())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(statusCmd)
}
