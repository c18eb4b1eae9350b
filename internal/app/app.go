package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"medscribe/internal/ai"
	"medscribe/internal/config"
	"medscribe/internal/db"
	"medscribe/internal/recorder"
	"medscribe/internal/repository"
	"medscribe/internal/session"
	"medscribe/internal/storage"
	"medscribe/internal/stt"
)

type App struct {
	Config     *config.Config
	Sessions   *session.Orchestrator
	Repository repository.Repository
	Audio      *storage.AudioStore

	conn *sql.DB
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	repo, conn, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := stt.NewOpenAIClient(cfg)
	provider, err := stt.CreateProvider(cfg, client)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, err
	}

	capture := recorder.NewFFmpegCapture(cfg.FFmpegFormat, cfg.FFmpegInput)
	rec := recorder.NewController(capture, recorder.Options{Dir: cfg.AudioDir})

	orch := session.NewOrchestrator(session.Options{
		Recorder:    rec,
		Transcriber: provider,
		Generator:   ai.NewGeneratorFromConfig(cfg, client),
		Repository:  repo,
	})

	return &App{
		Config:     cfg,
		Sessions:   orch,
		Repository: repo,
		Audio:      storage.NewAudioStore(filepath.Join(cfg.AudioDir, "uploads")),
		conn:       conn,
	}, nil
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, *sql.DB, error) {
	switch cfg.DatabaseDriver {
	case config.DriverMemory, "":
		log.Warn().Msg("no database configured, notes are kept in memory only")
		return storage.NewMemoryRepository(), nil, nil

	case config.DriverPostgres:
		conn, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing database: %w", err)
		}
		if cfg.AutoMigrate {
			if err := repository.Migrate(ctx, conn); err != nil {
				conn.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresRepository(conn), conn, nil

	case config.DriverSQLite:
		conn, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing database: %w", err)
		}
		repo, err := repository.NewSQLiteRepository(ctx, conn)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return repo, conn, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseDriver)
	}
}

// Close stops any active recording and closes the database.
func (a *App) Close() error {
	var errs []error
	if err := a.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing recorder: %w", err))
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	return errors.Join(errs...)
}
