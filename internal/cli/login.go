package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify credentials against the identity provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext()
		if err != nil {
			return err
		}
		user, err := app.ensureLogin(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.DisplayName, user.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "Token valid for %.1f minutes\n", app.session.MinutesRemaining())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
