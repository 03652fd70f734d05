package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"

	appconfig "github.com/rangemedical/clinic-ops/internal/config"
	"github.com/rangemedical/clinic-ops/internal/pos"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

func main() {
	useTest := flag.Bool("test", false, "use the Stripe test-mode secret key")
	dryRun := flag.Bool("dry-run", false, "print what would be created without calling Stripe or writing rows")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using environment")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	secretKey := cfg.StripeSecretKey
	mode := "live"
	if *useTest {
		secretKey = cfg.StripeSecretKeyTest
		mode = "test"
	}
	if secretKey == "" && !*dryRun {
		logger.Error("stripe secret key is required", "mode", mode)
		os.Exit(1)
	}

	client := pos.NewStripeCatalogClient(secretKey, logger).WithDryRun(*dryRun)

	var store pos.ServiceStore
	if !*dryRun {
		if cfg.DatabaseURL == "" {
			logger.Error("DATABASE_URL is required")
			os.Exit(1)
		}
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("open db failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Error("ping db failed", "error", err)
			os.Exit(1)
		}
		store = pos.NewRepository(db)
	}

	logger.Info("seeding stripe catalog", "mode", mode, "dry_run", *dryRun)

	seeder := pos.NewSeeder(client, store, logger)
	seeder.SkipDB = *dryRun

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	summary, err := seeder.Run(ctx)
	if err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seeding complete",
		"products", summary.Products,
		"prices", summary.Prices,
		"services", summary.Services,
	)
}
