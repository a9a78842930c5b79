package main

import (
	"context"
	"flag"
	"time"

	"github.com/fekuna/omnipos-commerce/config"
	"github.com/fekuna/omnipos-commerce/internal/seed"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "cmd/seed/seed.yaml", "Path to the seed YAML file")
	timeout := flag.Duration("timeout", time.Minute, "Abort seeding after this long")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment: cfg.IsDevelopment(),
		Encoding:      cfg.Logger.Encoding,
		Level:         cfg.Logger.Level,
	})
	defer appLogger.Sync()

	data, err := seed.Load(*file)
	if err != nil {
		appLogger.Fatal("Could not load seed file", zap.String("file", *file), zap.Error(err))
	}

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if _, err := seed.NewSeeder(db, appLogger).Apply(ctx, data); err != nil {
		appLogger.Fatal("Seeding failed", zap.Error(err))
	}
}
