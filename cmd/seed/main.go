// Seed replaces the storefront's game catalog with the current listing
// from the external game-metadata API.
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Heetpatel219/GameLibrary/internal/catalog"
	"github.com/Heetpatel219/GameLibrary/internal/config"
	"github.com/Heetpatel219/GameLibrary/internal/database"
	"github.com/Heetpatel219/GameLibrary/pkg/kit"
)

func main() {
	log := kit.NewLogger("seed")
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}
	if cfg.Store.Driver != "postgres" {
		log.Fatal("seeding requires the postgres store driver")
	}

	db, err := database.Open(cfg.Store)
	if err != nil {
		log.Fatal("database open", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db, cfg.Store.MigrationsPath); err != nil {
		log.Fatal("database migrate", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	seeder := catalog.NewSeeder(cfg.Seed.SourceURL, catalog.NewPostgresStore(db))
	n, err := seeder.Seed(ctx)
	if err != nil {
		log.Fatal("seed", zap.Error(err))
	}

	log.Info("catalog seeded", zap.Int("games", n))
}
