package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nolanv/doorstep/internal/domain"
)

// ExportData handles GET /export, returning the full logbook as a single
// JSON envelope suitable for re-import.
func (s *Server) ExportData(w http.ResponseWriter, r *http.Request) {
	export, err := s.export.Export(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="doorstep-export.json"`)
	respondJSON(w, http.StatusOK, export)
}

// importBody accepts either a full export envelope or a bare array of person
// records, so hand-trimmed files still import.
type importBody struct {
	People []domain.PersonRecord `json:"people"`
}

// ImportData handles POST /import. Records are inserted in order under fresh
// ids; the first invalid record aborts the import and the response reports
// how many people made it in before the failure.
func (s *Server) ImportData(w http.ResponseWriter, r *http.Request) {
	body, err := decodeImport(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	count, err := s.export.Import(r.Context(), body)
	if err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)},
			"imported": count,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"imported": count})
}

func decodeImport(r *http.Request) ([]domain.PersonRecord, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, errParam("request body is required")
	}

	var records []domain.PersonRecord
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}
	var envelope importBody
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.People == nil {
		return nil, errParam("body must be an export envelope or an array of people")
	}
	return envelope.People, nil
}
