package geocode_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/geocode"
)

// mockSearcher is a test double for geocode.Searcher.
type mockSearcher struct {
	calls  int
	lastReq geocode.SearchRequest
	search func(ctx context.Context, req geocode.SearchRequest) ([]geocode.Candidate, error)
}

func (m *mockSearcher) Search(ctx context.Context, req geocode.SearchRequest) ([]geocode.Candidate, error) {
	m.calls++
	m.lastReq = req
	return m.search(ctx, req)
}

var _ geocode.Searcher = (*mockSearcher)(nil)

func austinCandidate() geocode.Candidate {
	return geocode.Candidate{
		DisplayName: "123, Main Street, Austin, Travis County, Texas, 78701",
		Location:    domain.LatLng{Lat: 30.2672, Lng: -97.7431},
		Address: geocode.Address{
			HouseNumber: "123", Road: "Main Street", City: "Austin",
			County: "Travis County", State: "Texas", Postcode: "78701",
		},
	}
}

func roundRockCandidate() geocode.Candidate {
	return geocode.Candidate{
		DisplayName: "456, Oak Avenue, Round Rock, Williamson County, Texas, 78664",
		Location:    domain.LatLng{Lat: 30.5083, Lng: -97.6789},
		Address: geocode.Address{
			HouseNumber: "456", Road: "Oak Avenue", City: "Round Rock",
			County: "Williamson County", State: "Texas", Postcode: "78664",
		},
	}
}

// ---- Suggest ---------------------------------------------------------------

func TestResolver_Suggest_ShortQueryNeverTouchesNetwork(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return nil, nil
	}}
	r := geocode.NewResolver(m, "us", nil)

	got := r.Suggest(context.Background(), "  ab ", geocode.Options{})

	assert.Empty(t, got)
	assert.Zero(t, m.calls, "queries under three trimmed characters must not hit the network")
}

func TestResolver_Suggest_NetworkFailureDegradesToEmpty(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return nil, errors.New("connection refused")
	}}
	r := geocode.NewResolver(m, "us", nil)

	got := r.Suggest(context.Background(), "123 main st", geocode.Options{})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResolver_Suggest_InjectsTerritoryContext(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return nil, nil
	}}
	r := geocode.NewResolver(m, "us", nil)
	opts := geocode.Options{Territories: []domain.Territory{{City: "Austin", State: "TX"}}}

	r.Suggest(context.Background(), "123 main st", opts)

	assert.Equal(t, "123 main st, Austin, TX", m.lastReq.Query)
	assert.Equal(t, 15, m.lastReq.Limit)
	assert.Equal(t, "us", m.lastReq.CountryCode)
}

func TestResolver_Suggest_SkipsInjectionWhenCityPresent(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return nil, nil
	}}
	r := geocode.NewResolver(m, "us", nil)
	opts := geocode.Options{Territories: []domain.Territory{{City: "Austin", State: "TX"}}}

	r.Suggest(context.Background(), "123 main st, austin", opts)

	assert.Equal(t, "123 main st, austin", m.lastReq.Query)
}

func TestResolver_Suggest_DeviceBoxTakesPrecedence(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return nil, nil
	}}
	r := geocode.NewResolver(m, "us", nil)
	device := domain.LatLng{Lat: 30.0, Lng: -97.0}
	tbox := domain.BoundingBox{MinLon: -98, MinLat: 29, MaxLon: -96, MaxLat: 31}
	opts := geocode.Options{
		Device:      &device,
		Territories: []domain.Territory{{City: "Austin", State: "TX", Box: &tbox}},
	}

	r.Suggest(context.Background(), "123 main st", opts)

	require.NotNil(t, m.lastReq.Viewbox)
	assert.True(t, m.lastReq.Bounded)
	// 0.2° per side centred on the device, not the territory box.
	assert.InDelta(t, -97.1, m.lastReq.Viewbox.MinLon, 1e-9)
	assert.InDelta(t, 30.1, m.lastReq.Viewbox.MaxLat, 1e-9)
}

func TestResolver_Suggest_TerritoryBoxWhenNoDevice(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return nil, nil
	}}
	r := geocode.NewResolver(m, "us", nil)
	tbox := domain.BoundingBox{MinLon: -98, MinLat: 29, MaxLon: -96, MaxLat: 31}
	opts := geocode.Options{Territories: []domain.Territory{{City: "Austin", State: "TX", Box: &tbox}}}

	r.Suggest(context.Background(), "123 main st", opts)

	require.NotNil(t, m.lastReq.Viewbox)
	assert.Equal(t, tbox, *m.lastReq.Viewbox)
}

func TestResolver_Suggest_FiltersAndSortsByDistance(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		houston := geocode.Candidate{
			DisplayName: "Bagby St, Houston, Harris County, Texas",
			Location:    domain.LatLng{Lat: 29.7604, Lng: -95.3698},
			Address:     geocode.Address{City: "Houston", State: "Texas", Postcode: "77002"},
		}
		return []geocode.Candidate{roundRockCandidate(), houston, austinCandidate()}, nil
	}}
	r := geocode.NewResolver(m, "us", nil)

	device := domain.LatLng{Lat: 30.25, Lng: -97.75} // downtown Austin
	opts := geocode.Options{
		Device: &device,
		Territories: []domain.Territory{
			{City: "Austin", State: "TX"},
			{City: "Round Rock", State: "TX"},
		},
	}

	got := r.Suggest(context.Background(), "main street", opts)

	require.Len(t, got, 2, "Houston candidate must be filtered out")
	assert.Equal(t, "Austin", got[0].Address.City, "nearest candidate first")
	assert.Equal(t, "Round Rock", got[1].Address.City)
	require.NotNil(t, got[0].DistanceKm)
	require.NotNil(t, got[1].DistanceKm)
	assert.Less(t, *got[0].DistanceKm, *got[1].DistanceKm)
}

// ---- Resolve ---------------------------------------------------------------

func TestResolver_Resolve_FormatsNearestCandidate(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return []geocode.Candidate{roundRockCandidate(), austinCandidate()}, nil
	}}
	r := geocode.NewResolver(m, "us", nil)

	device := domain.LatLng{Lat: 30.25, Lng: -97.75}
	got, found := r.Resolve(context.Background(), "main street", geocode.Options{Device: &device})

	require.True(t, found)
	assert.Equal(t, 5, m.lastReq.Limit)
	assert.Equal(t, "123 Main Street, Austin, Texas, 78701", got.FormattedAddress)
	assert.InDelta(t, 30.2672, got.Location.Lat, 1e-9)
}

func TestResolver_Resolve_NoDeviceTakesFirst(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return []geocode.Candidate{roundRockCandidate(), austinCandidate()}, nil
	}}
	r := geocode.NewResolver(m, "us", nil)

	got, found := r.Resolve(context.Background(), "main street", geocode.Options{})

	require.True(t, found)
	assert.Equal(t, "456 Oak Avenue, Round Rock, Texas, 78664", got.FormattedAddress)
}

func TestResolver_Resolve_NoResultIsNotAnError(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return nil, nil
	}}
	r := geocode.NewResolver(m, "us", nil)

	_, found := r.Resolve(context.Background(), "nowhere at all", geocode.Options{})

	assert.False(t, found)
}

func TestResolver_Resolve_NetworkFailureIsNoResult(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return nil, errors.New("boom")
	}}
	r := geocode.NewResolver(m, "us", nil)

	_, found := r.Resolve(context.Background(), "123 main st", geocode.Options{})

	assert.False(t, found)
}

func TestResolver_Resolve_BlankQuery(t *testing.T) {
	m := &mockSearcher{search: func(context.Context, geocode.SearchRequest) ([]geocode.Candidate, error) {
		return nil, nil
	}}
	r := geocode.NewResolver(m, "us", nil)

	_, found := r.Resolve(context.Background(), "   ", geocode.Options{})

	assert.False(t, found)
	assert.Zero(t, m.calls)
}

func TestFormatAddress_OmitsAbsentComponents(t *testing.T) {
	assert.Equal(t, "Austin, Texas",
		geocode.FormatAddress(geocode.Address{City: "Austin", State: "Texas"}))
	assert.Equal(t, "Main Street, Texas, 78701",
		geocode.FormatAddress(geocode.Address{Road: "Main Street", State: "Texas", Postcode: "78701"}))
	assert.Equal(t, "", geocode.FormatAddress(geocode.Address{}))
}
