// Command seed creates the admin account and the starter product catalog.
// It is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/config"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/seed"
	"github.com/Rohit-bisht-rise/shopmanagement/migrations"
	pkgconfig "github.com/Rohit-bisht-rise/shopmanagement/pkg/config"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/database"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/logger"
)

type seedConfig struct {
	config.Config

	AdminUsername string `env:"SEED_ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	SkipProducts  bool   `env:"SEED_SKIP_PRODUCTS" envDefault:"false"`
}

func (c *seedConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if len(c.AdminPassword) < 8 {
		return errors.New("SEED_ADMIN_PASSWORD must be at least 8 characters long")
	}
	return nil
}

func main() {
	var cfg seedConfig
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("crm-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	s := seed.New(pool, log)
	if _, _, err := s.Admin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Error("failed to seed admin", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !cfg.SkipProducts {
		if _, err := s.Products(ctx, seed.Catalog); err != nil {
			log.Error("failed to seed products", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	log.Info("seed complete")
}
