package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects you are a member of",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext()
		if err != nil {
			return err
		}
		if _, err := app.ensureLogin(cmd); err != nil {
			return err
		}
		items, err := app.projects.ListMine(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-24s %s\n", p.Code, p.Name, p.ID)
		}
		return nil
	},
}

var sequencesCmd = &cobra.Command{
	Use:   "sequences <project-id>",
	Short: "List the sequences of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext()
		if err != nil {
			return err
		}
		if _, err := app.ensureLogin(cmd); err != nil {
			return err
		}
		items, err := app.projects.ListSequences(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, seq := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-24s %-12s %s\n", seq.Code, seq.Name, seq.Status, seq.ID)
		}
		return nil
	},
}

var shotsCmd = &cobra.Command{
	Use:   "shots <project-id> <sequence-id>",
	Short: "List the shots of a sequence",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext()
		if err != nil {
			return err
		}
		if _, err := app.ensureLogin(cmd); err != nil {
			return err
		}
		items, err := app.projects.ListShots(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		for _, shot := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-24s %-12s %s\n", shot.Code, shot.Name, shot.Status, shot.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(sequencesCmd)
	rootCmd.AddCommand(shotsCmd)
}
