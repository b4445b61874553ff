package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/resumeapi"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved résumés",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete saved résumés",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(listCmd, deleteCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	list, err := client.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not load résumés: %s", resumeapi.UserMessage(err))
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintSavedList(list)
	return nil
}

// runDelete stops at the first failure; earlier deletions stand.
func runDelete(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	for _, id := range args {
		if err := client.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("could not delete résumé %s: %s", id, resumeapi.UserMessage(err))
		}
		a.log.Info().Str("id", id).Msg("résumé deleted")
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id) //nolint:errcheck
	}
	return nil
}
