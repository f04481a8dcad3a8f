package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nolanv/doorstep/internal/domain"
)

// TerritoryRequest is the body for POST /territories. Bounding-box corners
// must all be present or all absent.
type TerritoryRequest struct {
	City   string   `json:"city"`
	State  string   `json:"state"`
	MinLon *float64 `json:"min_lon"`
	MinLat *float64 `json:"min_lat"`
	MaxLon *float64 `json:"max_lon"`
	MaxLat *float64 `json:"max_lat"`
}

// TerritoryResponse is the wire shape of a territory.
type TerritoryResponse struct {
	ID        int64     `json:"id"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	MinLon    *float64  `json:"min_lon,omitempty"`
	MinLat    *float64  `json:"min_lat,omitempty"`
	MaxLon    *float64  `json:"max_lon,omitempty"`
	MaxLat    *float64  `json:"max_lat,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTerritory handles POST /territories.
func (s *Server) CreateTerritory(w http.ResponseWriter, r *http.Request) {
	var body TerritoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		requestError(w, "request body is required")
		return
	}

	boxFields := 0
	for _, f := range []*float64{body.MinLon, body.MinLat, body.MaxLon, body.MaxLat} {
		if f != nil {
			boxFields++
		}
	}
	if boxFields != 0 && boxFields != 4 {
		requestError(w, "bounding box requires all four corners")
		return
	}

	territory := domain.Territory{City: body.City, State: body.State}
	if boxFields == 4 {
		territory.Box = &domain.BoundingBox{
			MinLon: *body.MinLon, MinLat: *body.MinLat,
			MaxLon: *body.MaxLon, MaxLat: *body.MaxLat,
		}
	}

	created, err := s.territories.Add(r.Context(), territory)
	if err != nil {
		respondServiceError(w, err, "territory not found")
		return
	}
	respondJSON(w, http.StatusCreated, territoryToResponse(created))
}

// ListTerritories handles GET /territories.
func (s *Server) ListTerritories(w http.ResponseWriter, r *http.Request) {
	territories, err := s.territories.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	data := make([]TerritoryResponse, len(territories))
	for i, t := range territories {
		data[i] = territoryToResponse(t)
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": data})
}

// TerritoryExists handles GET /territories/exists?city=...&state=... and
// always answers 200 with a boolean; a lookup failure reads as false.
func (s *Server) TerritoryExists(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	state := r.URL.Query().Get("state")
	if city == "" || state == "" {
		requestError(w, "city and state are required")
		return
	}

	exists := s.territories.Exists(r.Context(), city, state)
	respondJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// DeleteTerritory handles DELETE /territories/{territoryID}. Deleting a
// territory that is already gone still answers 204.
func (s *Server) DeleteTerritory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "territoryID")
	if !ok {
		return
	}
	if err := s.territories.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "territory not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func territoryToResponse(t domain.Territory) TerritoryResponse {
	resp := TerritoryResponse{
		ID:        t.ID,
		City:      t.City,
		State:     t.State,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Box != nil {
		minLon, minLat, maxLon, maxLat := t.Box.MinLon, t.Box.MinLat, t.Box.MaxLon, t.Box.MaxLat
		resp.MinLon, resp.MinLat, resp.MaxLon, resp.MaxLat = &minLon, &minLat, &maxLon, &maxLat
	}
	return resp
}
