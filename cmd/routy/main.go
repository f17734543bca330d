// Command routy recommends closed walking routes that start and end at home.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/routy-labs/routy/internal/adapters/driven/config/file"
	"github.com/routy-labs/routy/internal/adapters/driven/storage/memory"
	"github.com/routy-labs/routy/internal/adapters/driven/storage/mysql"
	"github.com/routy-labs/routy/internal/adapters/driven/storage/sqlite"
	"github.com/routy-labs/routy/internal/adapters/driven/validation"
	"github.com/routy-labs/routy/internal/adapters/driving/cli"
	"github.com/routy-labs/routy/internal/core/domain"
	"github.com/routy-labs/routy/internal/core/ports/driven"
	"github.com/routy-labs/routy/internal/core/ports/driving"
	"github.com/routy-labs/routy/internal/core/services"
	"github.com/routy-labs/routy/internal/logger"
)

const (
	envDriver   = "ROUTY_DB_DRIVER"
	envMySQLDSN = "ROUTY_MYSQL_DSN"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings := services.NewSettingsService(configStore, validation.NewSettingsValidator())

	app, err := settings.Get()
	if err != nil {
		return err
	}
	applyEnvOverrides(&app.Storage)

	routing, err := settings.Routing()
	if err != nil {
		// Keep going on defaults so `routy settings` can repair the file.
		logger.Warn("%v; using defaults", err)
		routing = domain.DefaultRoutingSettings()
	}

	local, err := sqlite.NewStore("")
	if err != nil {
		return err
	}
	defer local.Close()

	stores, closeStores, err := openRouteStores(app.Storage, local)
	if err != nil {
		return err
	}
	defer closeStores()

	cliSessions := local.SessionStore(routing.SessionTimeout, time.Now)
	liveSessions := memory.NewSessionStore(routing.SessionTimeout)

	newPrecalc := func(r domain.RoutingSettings) driving.Precalculator {
		return services.NewPrecalcService(r, stores.graph, stores.routes)
	}
	precalc := newPrecalc(routing)

	selector := func(sessions driven.SessionStore) driving.RouteRecommender {
		return services.NewDiversitySelector(routing, stores.routes, stores.usage, sessions,
			services.WithNodeNames(stores.graph))
	}

	scheduler := services.NewScheduler(settings.Scheduler(), local.SchedulerStore(), cliSessions, precalc)

	cli.SetServices(&cli.Services{
		Settings:        settings,
		Precalc:         precalc,
		Recommender:     selector(cliSessions),
		LiveRecommender: selector(liveSessions),
		Graph:           services.NewGraphImportService(stores.graph, stores.routes),
		Usage:           services.NewUsageReport(stores.usage),
		Scheduler:       scheduler,
		NewPrecalc:      newPrecalc,
		ConfigPath:      configStore.Path(),
	})

	return cli.Execute()
}

// routeStores are the stores that may live on a shared server.
type routeStores struct {
	graph  driven.GraphStore
	routes driven.RouteStore
	usage  driven.UsageStore
}

func openRouteStores(cfg domain.StorageSettings, local *sqlite.Store) (routeStores, func(), error) {
	if cfg.Driver != domain.StorageDriverMySQL {
		return routeStores{
			graph:  local.GraphStore(),
			routes: local.RouteStore(),
			usage:  local.UsageStore(),
		}, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	remote, err := mysql.NewStore(ctx, cfg.MySQLDSN)
	if err != nil {
		return routeStores{}, nil, err
	}
	return routeStores{
			graph:  remote.GraphStore(),
			routes: remote.RouteStore(),
			usage:  remote.UsageStore(),
		}, func() {
			if err := remote.Close(); err != nil {
				logger.Warn("closing mysql: %v", err)
			}
		}, nil
}

func applyEnvOverrides(cfg *domain.StorageSettings) {
	if v := os.Getenv(envDriver); v != "" {
		cfg.Driver = domain.StorageDriver(v)
	}
	if v := os.Getenv(envMySQLDSN); v != "" {
		cfg.MySQLDSN = v
	}
}
