package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/console"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/wizard"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a résumé in the interactive wizard",
	Long: "Opens the wizard at the first step. A draft left by an earlier session is restored. " +
		"Commands are read from stdin; type 'help' for the list.",
	Args: cobra.NoArgs,
	RunE: runNew,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a saved résumé in the interactive wizard",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(newCmd, editCmd)
}

func runNew(cmd *cobra.Command, _ []string) error {
	return runWizard(cmd, func(ctx context.Context, ctrl *wizard.Controller) error {
		_, err := ctrl.Restore(ctx)
		return err
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	id := args[0]
	return runWizard(cmd, func(ctx context.Context, ctrl *wizard.Controller) error {
		if err := ctrl.Edit(ctx, id); err != nil {
			return fmt.Errorf("could not open résumé %s: %w", id, err)
		}
		return nil
	})
}

// runWizard wires a controller to the résumé service and the draft store,
// seeds it with start and hands it to a console session.
func runWizard(cmd *cobra.Command, start func(context.Context, *wizard.Controller) error) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client, err := a.client()
	if err != nil {
		return err
	}
	store, release, err := a.drafts(ctx)
	if err != nil {
		return err
	}
	defer release()

	ctrl := wizard.New(wizard.Options{
		Repository: client,
		Drafts:     store,
		Logger:     logging.Component(a.log, "wizard"),
	})
	unsubscribe := ctrl.Subscribe(func(st wizard.State) {
		a.log.Debug().Stringer("mode", st.Mode).Int("step", st.StepIndex).Msg("wizard view changed")
	})
	defer unsubscribe()

	if err := start(ctx, ctrl); err != nil {
		return err
	}

	session := console.NewSession(ctrl, cmd.OutOrStdout(), store)
	session.Interactive = isTerminal(cmd.InOrStdin())
	return session.Run(ctx, cmd.InOrStdin())
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
