package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/repo"
)

// Territory insert retry policy: transient storage failures get a few
// attempts with fibonacci backoff; validation and conflict failures never do.
const (
	territoryRetryBase = 50 * time.Millisecond
	territoryRetryMax  = 3
)

// TerritoryService implements business logic for Territory operations.
// Its primary responsibility is normalization: territory identity is the
// (trimmed city, uppercased state) pair.
type TerritoryService struct {
	territories repo.TerritoryRepo
}

// NewTerritoryService constructs a TerritoryService backed by the provided repo.
func NewTerritoryService(territories repo.TerritoryRepo) *TerritoryService {
	return &TerritoryService{territories: territories}
}

// Add normalizes, validates, and persists a new territory.
// Returns domain.ErrValidation when city or state is missing and
// domain.ErrConflict when the normalized pair already exists. Transient
// storage failures are retried with backoff before giving up.
func (s *TerritoryService) Add(ctx context.Context, territory domain.Territory) (domain.Territory, error) {
	territory.City = domain.NormalizeCity(territory.City)
	territory.State = domain.NormalizeState(territory.State)
	if err := validateTerritory(territory); err != nil {
		return domain.Territory{}, err
	}

	// Defensive pre-check on top of the unique index. A failure of the check
	// itself must never block the insert attempt.
	if s.Exists(ctx, territory.City, territory.State) {
		return domain.Territory{}, fmt.Errorf("%w: territory %s, %s already exists",
			domain.ErrConflict, territory.City, territory.State)
	}

	var created domain.Territory
	backoff := retry.WithMaxRetries(territoryRetryMax, retry.NewFibonacci(territoryRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		created, err = s.territories.Create(ctx, territory)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrValidation) {
			return err // terminal, retrying cannot help
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Territory{}, fmt.Errorf("service.TerritoryService.Add: %w", domain.ErrConflict)
		}
		return domain.Territory{}, fmt.Errorf("service.TerritoryService.Add: %w", err)
	}
	return created, nil
}

// List returns all territories, unsorted; ordering is a caller concern.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TerritoryService) List(ctx context.Context) ([]domain.Territory, error) {
	territories, err := s.territories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TerritoryService.List: %w", err)
	}
	if territories == nil {
		return []domain.Territory{}, nil
	}
	return territories, nil
}

// Delete removes a territory by id. Deleting a missing territory is a no-op.
func (s *TerritoryService) Delete(ctx context.Context, id int64) error {
	if err := s.territories.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TerritoryService.Delete: %w", err)
	}
	return nil
}

// Exists reports whether a territory with the given city/state exists after
// normalization. It is a pre-insert guard: on any storage failure it logs and
// returns false rather than an error, so the check can never block the user
// from attempting the insert.
func (s *TerritoryService) Exists(ctx context.Context, city, state string) bool {
	exists, err := s.territories.ExistsByCityState(ctx, domain.NormalizeCity(city), domain.NormalizeState(state))
	if err != nil {
		slog.WarnContext(ctx, "territory existence check failed", "error", err)
		return false
	}
	return exists
}

// validateTerritory runs after normalization, so whitespace-only input fails.
func validateTerritory(territory domain.Territory) error {
	if territory.City == "" {
		return fmt.Errorf("%w: city is required", domain.ErrValidation)
	}
	if territory.State == "" {
		return fmt.Errorf("%w: state is required", domain.ErrValidation)
	}
	return nil
}
