package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/todoclient/internal/buildinfo"
	"github.com/dmitrijs2005/todoclient/internal/client/cli"
	"github.com/dmitrijs2005/todoclient/internal/client/client"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/i18n"
	"github.com/dmitrijs2005/todoclient/internal/client/router"
	"github.com/dmitrijs2005/todoclient/internal/client/session"
	"github.com/dmitrijs2005/todoclient/internal/client/state"
	"github.com/dmitrijs2005/todoclient/internal/client/storage"
	"github.com/dmitrijs2005/todoclient/internal/logging"
	"github.com/dmitrijs2005/todoclient/internal/telemetry"
)

const serviceName = "todoclient"

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Args[1:], os.Environ())
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat).With("service", serviceName)

	shutdown, err := telemetry.Setup(ctx, serviceName, buildinfo.Version, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn(ctx, "flush traces", "error", err)
		}
	}()

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	bundle, err := i18n.Load()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	sess := session.NewSQLiteStore(db)

	// The unauthorized handler needs the app, which needs the stores built
	// on top of the client.
	var app *cli.App
	api, err := client.New(cfg.APIBaseURL, sess,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger.With("component", "http")),
		client.WithRetryUnsafe(cfg.RetryUnsafe),
		client.WithUnauthorizedHandler(func(ctx context.Context) { app.OnUnauthorized(ctx) }),
	)
	if err != nil {
		return err
	}

	auth := state.NewAuthStore(ctx, api, sess, logger.With("component", "auth"))
	todos := state.NewTodoStore(api, logger.With("component", "todos"))

	app = cli.NewApp(ctx, cli.Deps{
		Auth:     auth,
		Todos:    todos,
		Nav:      router.NewNavigator(auth.IsAuthenticated),
		Bundle:   bundle,
		Session:  sess,
		Logger:   logger,
		PageSize: cfg.PageSize,
		Language: cfg.Language,
		In:       os.Stdin,
		Out:      os.Stdout,
	})

	logger.Debug(ctx, "client started", "api", cfg.APIBaseURL, "db", cfg.DBPath)
	app.Run(ctx)
	return nil
}
