// Command seed loads the sample cars and showrooms into PostgreSQL.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"carsales-backend/internal/catalog"
	"carsales-backend/internal/config"
	"carsales-backend/internal/database"
	"carsales-backend/internal/logger"
	"carsales-backend/internal/repository"
	"carsales-backend/migrations"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.DatabaseURL == "" {
		log.Error("✗ DATABASE_URL is not set")
		os.Exit(1)
	}

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("✗ PostgreSQL connection failed", zap.Error(err))
	}
	defer pool.Close()
	log.Info("✓ PostgreSQL connected")

	if err := database.RunMigrations(pool, migrations.FS, log); err != nil {
		log.Fatal("✗ Database migration failed", zap.Error(err))
	}
	log.Info("✓ Database migrations applied")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cars := catalog.DefaultCars()
	showrooms := catalog.DefaultShowrooms()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal("✗ Begin transaction failed", zap.Error(err))
	}
	defer tx.Rollback(ctx)

	if err := repository.NewCarRepo(pool).ReplaceAll(ctx, tx, cars); err != nil {
		log.Fatal("✗ Seeding cars failed", zap.Error(err))
	}
	if err := repository.NewShowroomRepo(pool).ReplaceAll(ctx, tx, showrooms); err != nil {
		log.Fatal("✗ Seeding showrooms failed", zap.Error(err))
	}
	if err := tx.Commit(ctx); err != nil {
		log.Fatal("✗ Commit failed", zap.Error(err))
	}

	fmt.Printf("Seeded %d cars and %d showrooms\n", len(cars), len(showrooms))
	for _, c := range cars {
		fmt.Printf("  %-8s %-10s %-22s %d chỗ\n", c.ID, c.Brand, c.Name, c.Seats)
	}
	for _, s := range showrooms {
		fmt.Printf("  #%d %s (%s)\n", s.ID, s.Name, s.Address)
	}
}
