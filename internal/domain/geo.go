package domain

import "math"

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// Distance returns the great-circle distance between a and b in kilometres,
// computed with the haversine formula.
func Distance(a, b LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BoundingBox is a lon/lat-aligned rectangle: [MinLon, MinLat, MaxLon, MaxLat].
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Contains reports whether p lies inside the box (inclusive).
func (b BoundingBox) Contains(p LatLng) bool {
	return p.Lng >= b.MinLon && p.Lng <= b.MaxLon &&
		p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// BoxAround returns a bounding box of sideDeg degrees per side centred on p.
// A side of 0.2° is roughly 22 km at mid latitudes: small enough to bias a
// geocoder toward the caller's neighbourhood without excluding it entirely.
func BoxAround(p LatLng, sideDeg float64) BoundingBox {
	half := sideDeg / 2
	return BoundingBox{
		MinLon: p.Lng - half,
		MinLat: p.Lat - half,
		MaxLon: p.Lng + half,
		MaxLat: p.Lat + half,
	}
}
