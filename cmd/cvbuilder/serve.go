package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/server"
)

var (
	servePort  int
	serveStore string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development résumé service",
	Long: `Start an HTTP server that exposes the résumé REST endpoints under the configured prefix.
Requests must carry a bearer token signed with jwt_secret; mint one with 'cvbuilder token'.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Résumé store: memory or postgres (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if servePort != 0 {
		a.cfg.Port = servePort
	}
	if serveStore != "" {
		a.cfg.Store = serveStore
	}
	jwtConfig, err := a.cfg.JWT()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store server.Store
	switch a.cfg.Store {
	case config.StoreMemory:
		store = server.NewMemoryStore()
	case config.StorePostgres:
		if a.cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		database, err := a.database(ctx)
		if err != nil {
			return err
		}
		defer database.Close()
		store = database
	default:
		return fmt.Errorf("unknown store %q (use memory or postgres)", a.cfg.Store)
	}

	srv, err := server.New(server.Config{
		Port:   a.cfg.Port,
		Prefix: a.cfg.APIPrefix,
		Store:  store,
		JWT:    jwtConfig,
		Logger: logging.Component(a.log, "server"),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	a.log.Info().Int("port", a.cfg.Port).Str("store", a.cfg.Store).Msg("starting résumé service")
	return srv.Start(ctx)
}
