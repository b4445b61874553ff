package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/draft"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/resumeapi"
)

// app carries the configuration and logger every subcommand builds on.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty || logPretty,
		Out:    cmd.ErrOrStderr(),
	})
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) client() (*resumeapi.Client, error) {
	client, err := resumeapi.New(resumeapi.Options{
		BaseURL: a.cfg.APIBaseURL,
		Prefix:  a.cfg.APIPrefix,
		Token:   a.cfg.APIToken,
		Timeout: a.cfg.Timeout(),
		Logger:  logging.Component(a.log, "resumeapi"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create résumé client: %w", err)
	}
	return client, nil
}

// database connects to PostgreSQL and applies the schema.
func (a *app) database(ctx context.Context) (*db.DB, error) {
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// draftKV opens the configured draft backend. release frees it.
func (a *app) draftKV(ctx context.Context) (kv draft.KV, release func(), err error) {
	switch a.cfg.DraftBackend {
	case config.DraftBackendRedis:
		client, err := draft.NewRedisClient(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return draft.NewRedisKV(client, "", 0), func() { _ = client.Close() }, nil
	case config.DraftBackendPostgres:
		database, err := a.database(ctx)
		if err != nil {
			return nil, nil, err
		}
		return draft.NewPostgresKV(database), database.Close, nil
	default:
		fileKV, err := draft.NewFileKV(a.cfg.DraftDir)
		if err != nil {
			return nil, nil, err
		}
		return fileKV, func() {}, nil
	}
}

// drafts builds the auto-save store. release flushes any scheduled
// snapshot and closes the backend.
func (a *app) drafts(ctx context.Context) (store *draft.Store, release func(), err error) {
	kv, closeKV, err := a.draftKV(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s draft backend: %w", a.cfg.DraftBackend, err)
	}

	log := logging.Component(a.log, "drafts")
	store = draft.NewStore(kv, draft.Options{
		Key:         a.cfg.DraftKey,
		QuietPeriod: a.cfg.QuietPeriod(),
		SavingDelay: a.cfg.SavingDelay(),
		Logger:      log,
		OnStatus: func(status draft.Status, err error) {
			log.Debug().Err(err).Str("status", string(status)).Msg("draft status changed")
		},
	})
	return store, func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("could not write the last draft snapshot")
		}
		closeKV()
	}, nil
}
