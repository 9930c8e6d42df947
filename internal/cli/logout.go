package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Retire the session's refresh token at the identity provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext()
		if err != nil {
			return err
		}

		// The store is in-memory; without credentials there is nothing to
		// retire and logout is a local no-op.
		if emailFlag == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No active session.")
			return nil
		}

		if _, err := app.ensureLogin(cmd); err != nil {
			return err
		}
		app.session.Logout(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "Logged out (%s)\n", app.session.State())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
