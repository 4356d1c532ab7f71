package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/hongminglow/social-api/internal/config"
	"github.com/hongminglow/social-api/internal/logging"
	"github.com/hongminglow/social-api/internal/server"
	"github.com/hongminglow/social-api/internal/storage"
	"github.com/hongminglow/social-api/internal/storage/memory"
	"github.com/hongminglow/social-api/internal/storage/mongodb"
	"github.com/hongminglow/social-api/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "social-api",
		Usage: "REST API for users, thoughts, reactions and friendships",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from `FILE` when it exists",
				Value: ".env",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the storage bootstrap (tables or indexes) and exit",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (config.Config, error) {
	loadLocalEnv(c.String("env-file"))

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	store, err := openStore(c.Context, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(cfg, store)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddress()).Str("store", cfg.StoreDriver).Msg("social-api listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// migrate relies on each backend bootstrapping itself when it is opened.
func migrate(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	store, err := openStore(c.Context, cfg)
	if err != nil {
		return err
	}
	store.Close()

	log.Info().Str("store", cfg.StoreDriver).Msg("storage bootstrap applied")
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return store, nil
	case config.DriverMongo:
		store, err := mongodb.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("init mongo: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func loadLocalEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Debug().Str("file", path).Msg("no env file found; relying on existing environment")
	}
}
