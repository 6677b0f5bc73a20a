// Package app assembles the stores, repositories and services shared by the
// API server and the rotactl CLI.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/rota-api/internal/cache"
	"github.com/jwalitptl/rota-api/internal/config"
	"github.com/jwalitptl/rota-api/internal/repository"
	"github.com/jwalitptl/rota-api/internal/repository/document"
	"github.com/jwalitptl/rota-api/internal/repository/memory"
	"github.com/jwalitptl/rota-api/internal/repository/postgres"
	"github.com/jwalitptl/rota-api/internal/service/assignment"
	"github.com/jwalitptl/rota-api/internal/service/cascade"
	"github.com/jwalitptl/rota-api/internal/service/directory"
	"github.com/jwalitptl/rota-api/internal/service/event"
	"github.com/jwalitptl/rota-api/internal/service/integrity"
	"github.com/jwalitptl/rota-api/internal/service/rota"
	"github.com/jwalitptl/rota-api/pkg/messaging"
	"github.com/jwalitptl/rota-api/pkg/metrics"
)

// App holds the wired core. Close releases the store.
type App struct {
	Store      repository.DocumentStore
	Metrics    *metrics.Metrics
	Cache      *cache.ListCache
	Publisher  *event.Publisher
	Notifier   *event.Notifier
	Engine     *cascade.Engine
	Scanner    *integrity.Scanner
	Assignment *assignment.Service
	Directory  *directory.Service
	Rota       *rota.Service

	close func() error
}

// OpenStore connects the document store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (repository.DocumentStore, func() error, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.NewStore(), func() error { return nil }, nil
	case "postgres":
		db, err := postgres.NewDB(ctx, postgres.Config{
			URL:             cfg.URL,
			Host:            cfg.Host,
			Port:            cfg.Port,
			User:            cfg.User,
			Password:        cfg.Password,
			Name:            cfg.Name,
			SSLMode:         cfg.SSLMode,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			AutoMigrate:     cfg.AutoMigrate,
		})
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// New opens the store and builds every service on top of it. Mutations are
// announced on broker; with a nil broker they only invalidate the local
// cache.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, broker messaging.Broker) (*App, error) {
	m := metrics.NewMetrics(cfg.Server.MetricsNamespace, reg)

	var publisher *event.Publisher
	if broker != nil {
		publisher = event.NewPublisher(broker, event.Config{Channel: cfg.Redis.Channel}, m)
	}

	raw, closeStore, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	store := repository.NewInstrumentedStore(raw, m)

	listCache := cache.New(cache.Config{
		TTL:             cfg.Cache.TTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	}, m)
	notifier := event.NewNotifier(listCache, publisher)
	engine := cascade.NewEngine(store, m)

	teams := document.NewTeamRepository(store)
	departments := document.NewDepartmentRepository(store)
	locations := document.NewLocationRepository(store)
	users := document.NewUserRepository(store)

	return &App{
		Store:     store,
		Metrics:   m,
		Cache:     listCache,
		Publisher: publisher,
		Notifier:  notifier,
		Engine:    engine,
		Scanner:   integrity.NewScanner(store),
		Assignment: assignment.NewService(assignment.Repositories{
			DepartmentLocations: document.NewDepartmentLocationRepository(store),
			TeamLocations:       document.NewTeamLocationRepository(store),
			UserTeams:           document.NewUserTeamRepository(store),
			DepartmentModules:   document.NewDepartmentModuleRepository(store),
			Teams:               teams,
			Departments:         departments,
		}, engine, listCache, notifier),
		Directory: directory.NewService(directory.Repositories{
			Organizations: document.NewOrganizationRepository(store),
			Hospitals:     document.NewHospitalRepository(store),
			Locations:     locations,
			Departments:   departments,
			Teams:         teams,
			Users:         users,
			Modules:       document.NewModuleRepository(store),
		}, engine, notifier),
		Rota: rota.NewService(rota.Repositories{
			Assignments: document.NewRotaAssignmentRepository(store),
			Statuses:    document.NewWeekStatusRepository(store),
			Teams:       teams,
			Users:       users,
			Locations:   locations,
		}, m),
		close: closeStore,
	}, nil
}

func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}
