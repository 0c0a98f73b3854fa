package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Heetpatel219/GameLibrary/internal/catalog"
	"github.com/Heetpatel219/GameLibrary/internal/config"
	"github.com/Heetpatel219/GameLibrary/internal/database"
	"github.com/Heetpatel219/GameLibrary/internal/identity"
	"github.com/Heetpatel219/GameLibrary/internal/purchase"
	"github.com/Heetpatel219/GameLibrary/internal/storefront"
	"github.com/Heetpatel219/GameLibrary/pkg/kit"
)

func main() {
	service := "storefront"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	var (
		catalogStore  catalog.Store
		purchaseStore purchase.Store
	)

	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.Open(cfg.Store)
		if err != nil {
			log.Fatal("database open", zap.Error(err))
		}
		defer func() { _ = db.Close() }()

		if err := database.Migrate(db, cfg.Store.MigrationsPath); err != nil {
			log.Fatal("database migrate", zap.Error(err))
		}

		catalogStore = catalog.NewPostgresStore(db)
		purchaseStore = purchase.NewPostgresStore(db)
	default:
		catalogStore = catalog.NewMemStore()
		purchaseStore = purchase.NewMemStore()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := storefront.NewHandler(
		storefront.Deps{
			Catalog:  &catalog.Server{Store: catalogStore, Log: log},
			Purchase: &purchase.Server{Store: purchaseStore, Log: log},
			Verifier: identity.NewVerifier(cfg.Auth.JWTSecret),
		},
		storefront.HTTPDeps{
			Log:      log,
			Service:  service,
			Registry: registry,

			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsToken:   cfg.Metrics.Token,

			PurchaseLimit:         cfg.RateLimit.PurchaseLimit,
			PurchaseWindowSeconds: cfg.RateLimit.PurchaseWindowSeconds,
		},
	)

	if err := kit.RunHTTPServer(cfg.Server.Addr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
