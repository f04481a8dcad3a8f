package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nolanv/doorstep/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique-index violation.
const uniqueViolation = "23505"

// TerritoryRepo defines the persistence operations for Territories.
// Callers are expected to pass already-normalized city/state values
// (see service.TerritoryService); the repo only enforces uniqueness.
type TerritoryRepo interface {
	// Create inserts a new territory and returns the persisted record.
	// Returns domain.ErrConflict if the normalized (city, state) pair
	// already exists.
	Create(ctx context.Context, territory domain.Territory) (domain.Territory, error)

	// List returns all territories in no particular order; sorting is a
	// caller concern.
	List(ctx context.Context) ([]domain.Territory, error)

	// Delete removes a territory by id. Deleting a missing territory is a
	// no-op, not an error.
	Delete(ctx context.Context, id int64) error

	// ExistsByCityState reports whether a territory with the given
	// normalized (city, state) pair exists. City comparison folds case.
	ExistsByCityState(ctx context.Context, city, state string) (bool, error)
}

// pgTerritoryRepo is the Postgres implementation of TerritoryRepo.
type pgTerritoryRepo struct {
	db db
}

// NewTerritoryRepo constructs a TerritoryRepo backed by the provided db connection.
func NewTerritoryRepo(db db) TerritoryRepo {
	return &pgTerritoryRepo{db: db}
}

func (r *pgTerritoryRepo) Create(ctx context.Context, territory domain.Territory) (domain.Territory, error) {
	const q = `
		INSERT INTO territories (city, state, min_lon, min_lat, max_lon, max_lat)
		VALUES (@city, @state, @min_lon, @min_lat, @max_lon, @max_lat)
		RETURNING id, city, state, min_lon, min_lat, max_lon, max_lat, created_at, updated_at`

	args := pgx.NamedArgs{
		"city":  territory.City,
		"state": territory.State,
	}
	args["min_lon"], args["min_lat"], args["max_lon"], args["max_lat"] = boxArgs(territory.Box)

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTerritory(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Territory{}, fmt.Errorf("repo.TerritoryRepo.Create: %w", domain.ErrConflict)
		}
		return domain.Territory{}, fmt.Errorf("repo.TerritoryRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTerritoryRepo) List(ctx context.Context) ([]domain.Territory, error) {
	const q = `
		SELECT id, city, state, min_lon, min_lat, max_lon, max_lat, created_at, updated_at
		FROM territories`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TerritoryRepo.List: %w", err)
	}
	defer rows.Close()

	territories := []domain.Territory{}
	for rows.Next() {
		t, err := scanTerritory(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TerritoryRepo.List: scan: %w", err)
		}
		territories = append(territories, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TerritoryRepo.List: rows: %w", err)
	}
	return territories, nil
}

func (r *pgTerritoryRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM territories WHERE id = @id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.TerritoryRepo.Delete: %w", err)
	}
	return nil
}

func (r *pgTerritoryRepo) ExistsByCityState(ctx context.Context, city, state string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM territories
			WHERE lower(city) = lower(@city) AND state = @state
		)`

	var exists bool
	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"city": city, "state": state})
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.TerritoryRepo.ExistsByCityState: %w", err)
	}
	return exists, nil
}

// scanTerritory maps a single database row into a domain.Territory.
// The bounding box is reassembled only when all four coordinates are present.
func scanTerritory(s scanner) (domain.Territory, error) {
	var (
		t                              domain.Territory
		minLon, minLat, maxLon, maxLat pgtype.Float8
	)

	err := s.Scan(&t.ID, &t.City, &t.State, &minLon, &minLat, &maxLon, &maxLat, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Territory{}, domain.ErrNotFound
		}
		return domain.Territory{}, err
	}

	if minLon.Valid && minLat.Valid && maxLon.Valid && maxLat.Valid {
		t.Box = &domain.BoundingBox{
			MinLon: minLon.Float64,
			MinLat: minLat.Float64,
			MaxLon: maxLon.Float64,
			MaxLat: maxLat.Float64,
		}
	}

	return t, nil
}

// boxArgs splits an optional bounding box into four nullable SQL arguments.
func boxArgs(box *domain.BoundingBox) (minLon, minLat, maxLon, maxLat *float64) {
	if box == nil {
		return nil, nil, nil, nil
	}
	return &box.MinLon, &box.MinLat, &box.MaxLon, &box.MaxLat
}
