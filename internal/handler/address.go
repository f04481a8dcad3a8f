package handler

import (
	"net/http"
	"strconv"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/geocode"
)

// SuggestionResponse is the wire shape of one address suggestion.
type SuggestionResponse struct {
	DisplayName string   `json:"display_name"`
	Street      string   `json:"street,omitempty"`
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`
	Postcode    string   `json:"postcode,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
}

// ResolveResponse is the wire shape of GET /address/resolve.
type ResolveResponse struct {
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

// AddressSuggestions handles GET /address/suggestions?q=...&lat=&lon=&stream=.
// A stream token opts the caller into debouncing; rapid calls sharing a token
// collapse so only the latest query hits the geocoder. Superseded calls
// answer 204 so the client knows to discard them.
func (s *Server) AddressSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	device, err := deviceParam(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	suggestions, superseded := s.address.Suggest(r.Context(), query, device, r.URL.Query().Get("stream"))
	if superseded {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data := make([]SuggestionResponse, len(suggestions))
	for i, sg := range suggestions {
		data[i] = suggestionToResponse(sg)
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": data})
}

// ResolveAddress handles GET /address/resolve?q=...&lat=&lon=. A query that
// resolves to nothing is a 404, not an error.
func (s *Server) ResolveAddress(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	device, err := deviceParam(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	result, found := s.address.Resolve(r.Context(), query, device)
	if !found {
		respondError(w, http.StatusNotFound, "not_found", "no match for address")
		return
	}
	respondJSON(w, http.StatusOK, ResolveResponse{
		FormattedAddress: result.FormattedAddress,
		Latitude:         result.Location.Lat,
		Longitude:        result.Location.Lng,
	})
}

// deviceParam parses the optional lat/lon pair. Both must be present or both
// absent.
func deviceParam(r *http.Request) (*domain.LatLng, error) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, errParam("lat and lon must be provided together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errParam("lat is not a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, errParam("lon is not a number")
	}
	return &domain.LatLng{Lat: lat, Lng: lon}, nil
}

type errParam string

func (e errParam) Error() string { return string(e) }

func suggestionToResponse(sg geocode.Suggestion) SuggestionResponse {
	street := sg.Address.Road
	if sg.Address.HouseNumber != "" {
		street = sg.Address.HouseNumber + " " + sg.Address.Road
	}
	return SuggestionResponse{
		DisplayName: sg.DisplayName,
		Street:      street,
		City:        sg.Address.Locality(),
		State:       sg.Address.State,
		Postcode:    sg.Address.Postcode,
		Latitude:    sg.Location.Lat,
		Longitude:   sg.Location.Lng,
		DistanceKm:  sg.DistanceKm,
	}
}
