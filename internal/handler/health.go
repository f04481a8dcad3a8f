package handler

import "net/http"

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// OpenAPI serves the embedded API document at GET /openapi.yaml.
func (s *Server) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	if len(s.openapi) == 0 {
		respondError(w, http.StatusNotFound, "not_found", "api document not available")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.openapi)
}
