package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/console"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
	schemadocs "github.com/jonathan/cv-builder/schemas"
)

var draftFile string

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect or discard the auto-saved draft",
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored draft and what still needs fixing",
	Long: `Print the stored draft and what still needs fixing.

With --file, a draft snapshot saved as JSON is checked against the draft
schema and shown instead of the stored one.`,
	Args: cobra.NoArgs,
	RunE: runDraftShow,
}

var draftClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored draft",
	Args:  cobra.NoArgs,
	RunE:  runDraftClear,
}

func init() {
	draftShowCmd.Flags().StringVar(&draftFile, "file", "", "show a draft JSON file instead of the stored draft")
	draftCmd.AddCommand(draftShowCmd, draftClearCmd)
	rootCmd.AddCommand(draftCmd)
}

//nolint:errcheck // writing to the terminal
func runDraftShow(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if draftFile != "" {
		d, err := readDraftFile(draftFile)
		if err != nil {
			return err
		}
		printDraftReport(cmd, "DRAFT FILE", d)
		return nil
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	store, release, err := a.drafts(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	d, found, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(out, "No stored draft under %q.\n", store.Key())
		return nil
	}
	printDraftReport(cmd, "STORED DRAFT", d)
	return nil
}

// readDraftFile loads a draft snapshot after checking it against the draft schema.
func readDraftFile(path string) (types.ResumeDraft, error) {
	if err := schemas.ValidateFile(schemadocs.Draft, path); err != nil {
		return types.ResumeDraft{}, fmt.Errorf("%s is not a résumé draft: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ResumeDraft{}, err
	}
	var d types.ResumeDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return types.ResumeDraft{}, fmt.Errorf("%s is not a résumé draft: %w", path, err)
	}
	return d.Normalize(), nil
}

//nolint:errcheck // writing to the terminal
func printDraftReport(cmd *cobra.Command, title string, d types.ResumeDraft) {
	out := cmd.OutOrStdout()
	observability.NewPrinter(out).PrintDraft(title, d)
	problems := console.Summary(d)
	if len(problems) == 0 {
		fmt.Fprintln(out, "Every step is complete.")
		return
	}
	fmt.Fprintln(out, "Still to fix:")
	for _, p := range problems {
		fmt.Fprintf(out, "  %s\n", p)
	}
}

func runDraftClear(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	store, release, err := a.drafts(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "draft cleared") //nolint:errcheck
	return nil
}
