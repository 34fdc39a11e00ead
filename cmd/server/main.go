package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dukwonit/farm-admin-server/azuremgmt"
	"github.com/dukwonit/farm-admin-server/db"
	"github.com/dukwonit/farm-admin-server/internal/config"
	"github.com/dukwonit/farm-admin-server/server"
	"github.com/dukwonit/farm-admin-server/server/authstate"
	"github.com/dukwonit/farm-admin-server/server/sessionstore"
	"github.com/dukwonit/farm-admin-server/storage"
	"github.com/dukwonit/farm-admin-server/warehouse"
)

// sessionTTL matches the working-day rhythm of the admin UI: long enough to
// not interrupt, short enough that a forgotten browser signs itself out.
const sessionTTL = 12 * time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.FromEnvironment()
	if err != nil {
		return err
	}

	setupLogging(cfg)
	displayAppname(cfg.AppName)

	srv, pool, err := buildServer(cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	httpServer := &http.Server{Addr: cfg.Addr(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func buildServer(cfg config.Config) (*server.Server, *db.Pool, error) {
	var pool *db.Pool
	if cfg.PGHost != "" && cfg.PGUser != "" {
		tokens, err := db.NewEntraTokenSource(cfg.DBCredential)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Stringer("credential", cfg.DBCredential).Msg("database credential source selected")

		pool, err = db.NewPool(db.Options{
			Host:             cfg.PGHost,
			Port:             cfg.PGPort,
			User:             cfg.PGUser,
			Database:         cfg.PGDatabase,
			MaxConns:         cfg.PGPoolMax,
			ConnTimeout:      time.Duration(cfg.PGConnTimeoutMS) * time.Millisecond,
			ValidateOnCreate: cfg.PGValidateOnCreate,
			DebugToken:       cfg.PGDebugToken,
		}, tokens)
		if err != nil {
			return nil, nil, err
		}
	} else {
		log.Warn().Msg("PGHOST/PGUSER not set; database-backed routes will fail")
	}

	deps := server.Deps{
		Sessions:  sessionstore.NewInMemoryRepo(sessionTTL),
		AuthState: authstate.NewInMemoryRepo(),
		Mgmt: azuremgmt.NewClient(azuremgmt.Options{
			TenantID:     cfg.AzureTenantID,
			ClientID:     cfg.AzureClientID,
			ClientSecret: cfg.AzureClientSecret,
			APIVersion:   cfg.MgmtAPIVersion,
			Defaults: azuremgmt.Target{
				SubscriptionID: cfg.SubscriptionID,
				ResourceGroup:  cfg.ResourceGroup,
				ServerName:     cfg.PGServerName,
			},
		}),
		Warehouse: warehouse.NewClient(warehouse.Options{
			Token:         cfg.DatabricksToken,
			TokenEndpoint: cfg.DatabricksTokenEndpoint,
			ClientID:      cfg.DatabricksClientID,
			ClientSecret:  cfg.DatabricksClientSecret,
			ServerHost:    cfg.DatabricksServerHost,
			HTTPPath:      cfg.DatabricksHTTPPath,
		}),
		Uploader: storage.NewUploader(cfg.StorageConnectionString, cfg.StorageContainer),
	}
	if pool != nil {
		deps.Pool = pool
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		return nil, nil, err
	}
	return srv, pool, nil
}

func setupLogging(cfg config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
