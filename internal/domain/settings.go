package domain

import (
	"fmt"
	"time"
)

// MapProvider selects the external map service used for outbound
// "view on map" links. It never affects address resolution.
type MapProvider string

const (
	MapProviderOpenStreetMap MapProvider = "openstreetmap"
	MapProviderGoogle        MapProvider = "google"
	MapProviderApple         MapProvider = "apple"
)

// Valid reports whether p is one of the known providers.
func (p MapProvider) Valid() bool {
	switch p {
	case MapProviderOpenStreetMap, MapProviderGoogle, MapProviderApple:
		return true
	}
	return false
}

// URL returns an outbound "view on map" link for the given position.
// Unknown providers fall back to OpenStreetMap.
func (p MapProvider) URL(loc LatLng) string {
	switch p {
	case MapProviderGoogle:
		return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", loc.Lat, loc.Lng)
	case MapProviderApple:
		return fmt.Sprintf("https://maps.apple.com/?ll=%f,%f", loc.Lat, loc.Lng)
	default:
		return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%f&mlon=%f#map=17/%f/%f",
			loc.Lat, loc.Lng, loc.Lat, loc.Lng)
	}
}

// Settings are the app-wide preference flags. A single row exists at all
// times; there is no per-user scoping.
type Settings struct {
	GeolocationEnabled bool
	MapProvider        MapProvider
	UpdatedAt          time.Time
}
