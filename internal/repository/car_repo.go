package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"carsales-backend/internal/models"
)

var ErrNotFound = errors.New("not found")

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CarRepo struct {
	pool *pgxpool.Pool
}

func NewCarRepo(pool *pgxpool.Pool) *CarRepo {
	return &CarRepo{pool: pool}
}

const carColumns = `id, name, brand, price_min, price_max, segment, seats, fuel_type, transmission, engine_power, features, image_url, created_at`

func (r *CarRepo) List(ctx context.Context) ([]models.CarRecord, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+carColumns+" FROM cars ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []models.CarRecord
	for rows.Next() {
		var c models.CarRecord
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Brand, &c.PriceMin, &c.PriceMax, &c.Segment, &c.Seats,
			&c.FuelType, &c.Transmission, &c.EnginePower, &c.Features, &c.ImageURL, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

func (r *CarRepo) GetByID(ctx context.Context, id string) (*models.CarRecord, error) {
	c := &models.CarRecord{}
	err := r.pool.QueryRow(ctx, "SELECT "+carColumns+" FROM cars WHERE id = $1", id).Scan(
		&c.ID, &c.Name, &c.Brand, &c.PriceMin, &c.PriceMax, &c.Segment, &c.Seats,
		&c.FuelType, &c.Transmission, &c.EnginePower, &c.Features, &c.ImageURL, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ReplaceAll swaps the whole car table for cars. Run it inside a
// transaction so readers never observe a partial catalog.
func (r *CarRepo) ReplaceAll(ctx context.Context, db DBTX, cars []models.CarRecord) error {
	if _, err := db.Exec(ctx, "DELETE FROM cars"); err != nil {
		return fmt.Errorf("failed to clear cars: %w", err)
	}

	query := `INSERT INTO cars (` + carColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now().UTC()
	for _, c := range cars {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if _, err := db.Exec(ctx, query,
			c.ID, c.Name, c.Brand, c.PriceMin, c.PriceMax, c.Segment, c.Seats,
			c.FuelType, c.Transmission, c.EnginePower, c.Features, c.ImageURL, c.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert car %s: %w", c.ID, err)
		}
	}
	return nil
}
