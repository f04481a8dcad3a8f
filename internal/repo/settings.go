package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nolanv/doorstep/internal/domain"
)

// SettingsRepo persists the single app-wide settings row. The row is seeded
// by migration, so Get never returns domain.ErrNotFound on a migrated schema.
type SettingsRepo interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

// pgSettingsRepo is the Postgres implementation of SettingsRepo.
type pgSettingsRepo struct {
	db db
}

// NewSettingsRepo constructs a SettingsRepo backed by the provided db connection.
func NewSettingsRepo(db db) SettingsRepo {
	return &pgSettingsRepo{db: db}
}

func (r *pgSettingsRepo) Get(ctx context.Context) (domain.Settings, error) {
	const q = `
		SELECT geolocation_enabled, map_provider, updated_at
		FROM settings
		WHERE id = 1`

	var s domain.Settings
	row := r.db.QueryRow(ctx, q)
	if err := row.Scan(&s.GeolocationEnabled, &s.MapProvider, &s.UpdatedAt); err != nil {
		return domain.Settings{}, fmt.Errorf("repo.SettingsRepo.Get: %w", err)
	}
	return s, nil
}

func (r *pgSettingsRepo) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	const q = `
		UPDATE settings
		SET geolocation_enabled = @geolocation_enabled,
		    map_provider        = @map_provider,
		    updated_at          = now()
		WHERE id = 1
		RETURNING geolocation_enabled, map_provider, updated_at`

	args := pgx.NamedArgs{
		"geolocation_enabled": settings.GeolocationEnabled,
		"map_provider":        string(settings.MapProvider),
	}

	var s domain.Settings
	row := r.db.QueryRow(ctx, q, args)
	if err := row.Scan(&s.GeolocationEnabled, &s.MapProvider, &s.UpdatedAt); err != nil {
		return domain.Settings{}, fmt.Errorf("repo.SettingsRepo.Update: %w", err)
	}
	return s, nil
}
