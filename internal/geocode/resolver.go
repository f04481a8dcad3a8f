package geocode

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/nolanv/doorstep/internal/domain"
)

const (
	// minQueryLength is the shortest trimmed query worth a network call.
	minQueryLength = 3

	// suggestLimit and resolveLimit cap how many candidates each path asks
	// the geocoding service for.
	suggestLimit = 15
	resolveLimit = 5

	// deviceBoxDeg is the viewbox side used to bias results around a known
	// device position, about 22 km.
	deviceBoxDeg = 0.2
)

// Options carry the per-call context that biases and filters a lookup.
type Options struct {
	// Device is the caller's position, when known and permitted.
	Device *domain.LatLng
	// Territories are the saved regions used for query-context injection,
	// viewbox bias, and candidate filtering.
	Territories []domain.Territory
}

// Suggestion is one ranked interactive suggestion.
type Suggestion struct {
	DisplayName string
	Address     Address
	Location    domain.LatLng
	// DistanceKm from the device position; nil when no device position.
	DistanceKm *float64
}

// Result is the single normalized outcome of the geocode path.
type Result struct {
	FormattedAddress string
	Location         domain.LatLng
}

// Resolver runs the suggestion and single-result pipelines over a Searcher.
type Resolver struct {
	client      Searcher
	countryCode string
	log         *slog.Logger
}

// NewResolver constructs a Resolver. countryCode restricts all lookups to one
// country (e.g. "us"). Pass nil for log to use the default logger.
func NewResolver(client Searcher, countryCode string, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{client: client, countryCode: countryCode, log: log}
}

// Suggest returns ranked suggestions for an in-progress query.
//
// Queries shorter than three trimmed characters return an empty list without
// touching the network. Network and service failures are logged and degrade
// to an empty list; they are never surfaced to the caller.
func (r *Resolver) Suggest(ctx context.Context, query string, opts Options) []Suggestion {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return []Suggestion{}
	}

	candidates, err := r.client.Search(ctx, r.buildRequest(query, suggestLimit, opts))
	if err != nil {
		r.log.WarnContext(ctx, "suggestion lookup failed", "error", err)
		return []Suggestion{}
	}

	candidates = FilterByTerritories(candidates, opts.Territories)

	suggestions := make([]Suggestion, len(candidates))
	for i, c := range candidates {
		suggestions[i] = Suggestion{
			DisplayName: c.DisplayName,
			Address:     c.Address,
			Location:    c.Location,
		}
		if opts.Device != nil {
			d := domain.Distance(*opts.Device, c.Location)
			suggestions[i].DistanceKm = &d
		}
	}
	if opts.Device != nil {
		sort.SliceStable(suggestions, func(i, j int) bool {
			return *suggestions[i].DistanceKm < *suggestions[j].DistanceKm
		})
	}
	return suggestions
}

// Resolve runs the single-result geocode path used on form submission.
//
// The second return value is false when the query is blank, the service is
// unreachable, or no candidate came back; callers must then fall back to the
// user's original unmodified input. Failures never surface as errors.
func (r *Resolver) Resolve(ctx context.Context, query string, opts Options) (Result, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, false
	}

	candidates, err := r.client.Search(ctx, r.buildRequest(query, resolveLimit, opts))
	if err != nil {
		r.log.WarnContext(ctx, "geocode lookup failed", "error", err)
		return Result{}, false
	}
	if len(candidates) == 0 {
		return Result{}, false
	}

	best := candidates[0]
	if opts.Device != nil {
		for _, c := range candidates[1:] {
			if domain.Distance(*opts.Device, c.Location) < domain.Distance(*opts.Device, best.Location) {
				best = c
			}
		}
	}

	formatted := FormatAddress(best.Address)
	if formatted == "" {
		formatted = best.DisplayName
	}
	return Result{FormattedAddress: formatted, Location: best.Location}, true
}

// buildRequest assembles the search request: territory context injection into
// the query text, then viewbox bias. Device position takes precedence over a
// territory bounding box.
func (r *Resolver) buildRequest(query string, limit int, opts Options) SearchRequest {
	req := SearchRequest{
		Query:       query,
		Limit:       limit,
		CountryCode: r.countryCode,
	}

	var territory *domain.Territory
	if len(opts.Territories) > 0 {
		territory = &opts.Territories[0]
	}

	// Context injection: append ", city, state" unless the query already
	// mentions them. A hint, not authoritative; filtering happens later.
	if territory != nil {
		folded := strings.ToLower(query)
		if !strings.Contains(folded, strings.ToLower(territory.City)) &&
			!strings.Contains(folded, strings.ToLower(territory.State)) {
			req.Query = query + ", " + territory.City + ", " + territory.State
		}
	}

	switch {
	case opts.Device != nil:
		box := domain.BoxAround(*opts.Device, deviceBoxDeg)
		req.Viewbox = &box
		req.Bounded = true
	case territory != nil && territory.Box != nil:
		req.Viewbox = territory.Box
		req.Bounded = true
	}
	return req
}

// FormatAddress builds the normalized display form from structured
// components: house-number+road, locality, state, postal code, joined with
// ", " and omitting absent components.
func FormatAddress(a Address) string {
	var parts []string
	street := strings.TrimSpace(a.HouseNumber + " " + a.Road)
	if street != "" {
		parts = append(parts, street)
	}
	if loc := a.Locality(); loc != "" {
		parts = append(parts, loc)
	}
	if a.State != "" {
		parts = append(parts, a.State)
	}
	if a.Postcode != "" {
		parts = append(parts, a.Postcode)
	}
	return strings.Join(parts, ", ")
}
