// Package cli implements the launcher's command-line interface. It stands in
// for the desktop UI: every command triggers a login, issues authorized
// backend calls through the pipeline, and reports session-expired conditions
// on stderr.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	emailFlag    string
	passwordFlag string
)

var rootCmd = &cobra.Command{
	Use:   "launcher",
	Short: "Mihira production launcher client",
	Long: `Headless client for the Mihira production launcher: authenticates against
the studio identity provider and reads the production hierarchy from the
launcher backend.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&emailFlag, "email", "e", "", "login email")
	rootCmd.PersistentFlags().StringVarP(&passwordFlag, "password", "p", "", "login password (prompted when omitted)")
}
