package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"carsales-backend/internal/models"
)

type ShowroomRepo struct {
	pool *pgxpool.Pool
}

func NewShowroomRepo(pool *pgxpool.Pool) *ShowroomRepo {
	return &ShowroomRepo{pool: pool}
}

func (r *ShowroomRepo) List(ctx context.Context) ([]models.Showroom, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, address, latitude, longitude, phone, email, website, brands, offers
		FROM showrooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var showrooms []models.Showroom
	for rows.Next() {
		var s models.Showroom
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Address, &s.Latitude, &s.Longitude,
			&s.Phone, &s.Email, &s.Website, &s.Brands, &s.Offers,
		); err != nil {
			return nil, err
		}
		showrooms = append(showrooms, s)
	}
	return showrooms, rows.Err()
}

// ReplaceAll swaps the whole showroom table. Ids are reassigned by the
// database and written back into showrooms.
func (r *ShowroomRepo) ReplaceAll(ctx context.Context, db DBTX, showrooms []models.Showroom) error {
	if _, err := db.Exec(ctx, "TRUNCATE showrooms RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to clear showrooms: %w", err)
	}

	query := `INSERT INTO showrooms (name, address, latitude, longitude, phone, email, website, brands, offers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	for i := range showrooms {
		s := &showrooms[i]
		brands, offers := s.Brands, s.Offers
		if brands == nil {
			brands = []string{}
		}
		if offers == nil {
			offers = []string{}
		}
		if err := db.QueryRow(ctx, query,
			s.Name, s.Address, s.Latitude, s.Longitude, s.Phone, s.Email, s.Website, brands, offers,
		).Scan(&s.ID); err != nil {
			return fmt.Errorf("failed to insert showroom %q: %w", s.Name, err)
		}
	}
	return nil
}
