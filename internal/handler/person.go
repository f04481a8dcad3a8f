package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nolanv/doorstep/internal/domain"
)

// PersonRequest is the body for POST /people and PUT /people/{id}.
// Latitude and longitude must be provided together or not at all.
type PersonRequest struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// PersonResponse is the wire shape of a person, notes attached.
type PersonResponse struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Address   string         `json:"address,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	Email     string         `json:"email,omitempty"`
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
	MapURL    string         `json:"map_url,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Notes     []NoteResponse `json:"notes"`
}

// NoteResponse is the wire shape of one note.
type NoteResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteRequest is the body for POST /people/{id}/notes.
type NoteRequest struct {
	Content string `json:"content"`
}

// CreatePerson handles POST /people.
func (s *Server) CreatePerson(w http.ResponseWriter, r *http.Request) {
	person, err := decodePerson(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	created, err := s.people.Create(r.Context(), person)
	if err != nil {
		respondServiceError(w, err, "person not found")
		return
	}
	respondJSON(w, http.StatusCreated, s.personToResponse(r, created))
}

// ListPeople handles GET /people. People come back sorted by name ascending,
// each with notes attached sorted by created_at.
func (s *Server) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.people.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	data := make([]PersonResponse, len(people))
	for i, p := range people {
		data[i] = s.personToResponse(r, p)
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": data})
}

// GetPerson handles GET /people/{personID}.
func (s *Server) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}

	person, err := s.people.GetWithNotes(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "person not found")
		return
	}
	respondJSON(w, http.StatusOK, s.personToResponse(r, person))
}

// UpdatePerson handles PUT /people/{personID}.
func (s *Server) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}
	person, err := decodePerson(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	person.ID = id

	updated, err := s.people.Update(r.Context(), person)
	if err != nil {
		respondServiceError(w, err, "person not found")
		return
	}
	respondJSON(w, http.StatusOK, s.personToResponse(r, updated))
}

// DeletePerson handles DELETE /people/{personID}. The person's notes go with
// them; deleting a person that does not exist is a 404.
func (s *Server) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}
	if err := s.people.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "person not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddNote handles POST /people/{personID}/notes.
func (s *Server) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "personID")
	if !ok {
		return
	}

	var body NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		requestError(w, "request body is required")
		return
	}

	note, err := s.notes.Add(r.Context(), domain.Note{PersonID: id, Content: body.Content})
	if err != nil {
		respondServiceError(w, err, "person not found")
		return
	}
	respondJSON(w, http.StatusCreated, noteToResponse(note))
}

// --- mapping helpers --------------------------------------------------------

// decodePerson parses and boundary-validates a person body. The store accepts
// any string; format checks for phone and email live here, at the edge.
func decodePerson(r *http.Request) (domain.Person, error) {
	var body PersonRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return domain.Person{}, errors.New("request body is required")
	}
	if strings.TrimSpace(body.Name) == "" {
		return domain.Person{}, errors.New("name is required")
	}
	if body.Email != "" && !validEmail(body.Email) {
		return domain.Person{}, errors.New("email is not a valid address")
	}
	if body.Phone != "" && !validPhone(body.Phone) {
		return domain.Person{}, errors.New("phone is not a valid number")
	}
	if (body.Latitude == nil) != (body.Longitude == nil) {
		return domain.Person{}, errors.New("latitude and longitude must be provided together")
	}

	p := domain.Person{
		Name:    body.Name,
		Address: body.Address,
		Phone:   body.Phone,
		Email:   body.Email,
	}
	if body.Latitude != nil {
		p.Location = &domain.LatLng{Lat: *body.Latitude, Lng: *body.Longitude}
	}
	return p, nil
}

func (s *Server) personToResponse(r *http.Request, p domain.Person) PersonResponse {
	resp := PersonResponse{
		ID:        p.ID,
		Name:      p.Name,
		Address:   p.Address,
		Phone:     p.Phone,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Notes:     []NoteResponse{},
	}
	if p.Location != nil {
		lat, lng := p.Location.Lat, p.Location.Lng
		resp.Latitude, resp.Longitude = &lat, &lng
		resp.MapURL = s.mapProvider(r).URL(*p.Location)
	}
	for _, n := range p.Notes {
		resp.Notes = append(resp.Notes, noteToResponse(n))
	}
	return resp
}

func noteToResponse(n domain.Note) NoteResponse {
	return NoteResponse{ID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt}
}

// mapProvider returns the configured map-link provider, defaulting to
// OpenStreetMap when settings cannot be read.
func (s *Server) mapProvider(r *http.Request) domain.MapProvider {
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		return domain.MapProviderOpenStreetMap
	}
	return settings.MapProvider
}

// pathID parses a numeric id path parameter. A non-numeric id cannot name an
// existing resource, so it reads as a 404.
func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
		return 0, false
	}
	return id, true
}

// validEmail is a deliberately loose format check: something, an @, something
// with a dot. Verification is out of scope; this only catches typos.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	return strings.Contains(domainPart, ".") && !strings.ContainsAny(email, " \t")
}

// validPhone accepts digits plus common separators, requiring at least seven
// digits overall.
func validPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '+' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 7
}
