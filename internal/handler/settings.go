package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nolanv/doorstep/internal/domain"
)

// SettingsRequest is the body for PUT /settings.
type SettingsRequest struct {
	GeolocationEnabled bool   `json:"geolocation_enabled"`
	MapProvider        string `json:"map_provider"`
}

// SettingsResponse is the wire shape of the app settings.
type SettingsResponse struct {
	GeolocationEnabled bool      `json:"geolocation_enabled"`
	MapProvider        string    `json:"map_provider"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// GetSettings handles GET /settings.
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, settingsToResponse(settings))
}

// UpdateSettings handles PUT /settings.
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		requestError(w, "request body is required")
		return
	}

	updated, err := s.settings.Update(r.Context(), domain.Settings{
		GeolocationEnabled: body.GeolocationEnabled,
		MapProvider:        domain.MapProvider(body.MapProvider),
	})
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	respondJSON(w, http.StatusOK, settingsToResponse(updated))
}

func settingsToResponse(s domain.Settings) SettingsResponse {
	return SettingsResponse{
		GeolocationEnabled: s.GeolocationEnabled,
		MapProvider:        string(s.MapProvider),
		UpdatedAt:          s.UpdatedAt,
	}
}
