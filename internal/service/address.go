package service

import (
	"context"
	"log/slog"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/geocode"
	"github.com/nolanv/doorstep/internal/geoloc"
	"github.com/nolanv/doorstep/internal/repo"
)

// AddressResolver is the slice of the geocode pipeline this service depends
// on, defined here so tests can inject a fake without a network.
type AddressResolver interface {
	Suggest(ctx context.Context, query string, opts geocode.Options) []geocode.Suggestion
	Resolve(ctx context.Context, query string, opts geocode.Options) (geocode.Result, bool)
}

// AddressService assembles the lookup context (saved territories, the
// geolocation preference, an optional device position) and runs the
// geocode pipelines. It has no persistent state of its own.
//
// Everything here is best-effort: territory or settings reads that fail are
// logged and skipped, never allowed to block a lookup.
type AddressService struct {
	territories repo.TerritoryRepo
	settings    repo.SettingsRepo
	resolver    AddressResolver
	locator     geoloc.Locator // nil when no position source is configured
	debouncer   *geocode.Debouncer
}

// NewAddressService constructs an AddressService. locator may be nil.
func NewAddressService(
	territories repo.TerritoryRepo,
	settings repo.SettingsRepo,
	resolver AddressResolver,
	locator geoloc.Locator,
	debouncer *geocode.Debouncer,
) *AddressService {
	return &AddressService{
		territories: territories,
		settings:    settings,
		resolver:    resolver,
		locator:     locator,
		debouncer:   debouncer,
	}
}

// Suggest returns ranked suggestions for an in-progress query. A non-empty
// stream token routes the call through the debouncer: rapid triggers on the
// same stream coalesce, and a superseded call reports superseded=true with no
// suggestions. Failures degrade to an empty list.
func (s *AddressService) Suggest(ctx context.Context, query string, device *domain.LatLng, stream string) (suggestions []geocode.Suggestion, superseded bool) {
	opts := s.lookupOptions(ctx, device)
	if stream == "" {
		return s.resolver.Suggest(ctx, query, opts), false
	}
	return s.debouncer.Debounce(ctx, stream, func(ctx context.Context) []geocode.Suggestion {
		return s.resolver.Suggest(ctx, query, opts)
	})
}

// Resolve runs the single-result geocode path. found=false means the caller
// must keep the user's original input; it is never an error.
func (s *AddressService) Resolve(ctx context.Context, query string, device *domain.LatLng) (geocode.Result, bool) {
	return s.resolver.Resolve(ctx, query, s.lookupOptions(ctx, device))
}

// lookupOptions gathers territories and the device position. When the
// geolocation preference is off, positions are ignored entirely, including
// one supplied by the caller.
func (s *AddressService) lookupOptions(ctx context.Context, device *domain.LatLng) geocode.Options {
	opts := geocode.Options{Device: device}

	territories, err := s.territories.List(ctx)
	if err != nil {
		slog.WarnContext(ctx, "territory load for address lookup failed", "error", err)
	} else {
		opts.Territories = territories
	}

	enabled := true
	if settings, err := s.settings.Get(ctx); err != nil {
		slog.WarnContext(ctx, "settings load for address lookup failed", "error", err)
	} else {
		enabled = settings.GeolocationEnabled
	}

	if !enabled {
		opts.Device = nil
		return opts
	}

	if opts.Device == nil && s.locator != nil {
		if pos, err := geoloc.Acquire(ctx, s.locator); err != nil {
			slog.InfoContext(ctx, "device position unavailable", "error", err)
		} else {
			opts.Device = &pos
		}
	}
	return opts
}
