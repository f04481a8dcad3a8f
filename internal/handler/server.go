// Package handler implements the HTTP handlers for the Doorstep API.
// All handlers are methods on Server; methods are split into domain-specific
// files (person.go, territory.go, etc.) but all share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/geocode"
)

// The interfaces below define the business operations each handler depends
// on. Defining them here (in the consumer package) follows the Go convention:
// "accept interfaces, return concrete types". It lets handler tests inject a
// mock without touching the database or service layer.

// PersonServicer is the person surface the handlers depend on.
type PersonServicer interface {
	Create(ctx context.Context, person domain.Person) (domain.Person, error)
	GetWithNotes(ctx context.Context, id int64) (domain.Person, error)
	List(ctx context.Context) ([]domain.Person, error)
	Update(ctx context.Context, person domain.Person) (domain.Person, error)
	Delete(ctx context.Context, id int64) error
}

// NoteServicer is the note surface the handlers depend on.
type NoteServicer interface {
	Add(ctx context.Context, note domain.Note) (domain.Note, error)
}

// TerritoryServicer is the territory surface the handlers depend on.
type TerritoryServicer interface {
	Add(ctx context.Context, territory domain.Territory) (domain.Territory, error)
	List(ctx context.Context) ([]domain.Territory, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, city, state string) bool
}

// AddressServicer is the address-resolution surface the handlers depend on.
type AddressServicer interface {
	Suggest(ctx context.Context, query string, device *domain.LatLng, stream string) ([]geocode.Suggestion, bool)
	Resolve(ctx context.Context, query string, device *domain.LatLng) (geocode.Result, bool)
}

// ExportServicer is the export/import surface the handlers depend on.
type ExportServicer interface {
	Export(ctx context.Context) (domain.Export, error)
	Import(ctx context.Context, records []domain.PersonRecord) (int, error)
}

// SettingsServicer is the settings surface the handlers depend on.
type SettingsServicer interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

// Server holds all handler dependencies. Wire it in main.go via Routes().
type Server struct {
	people      PersonServicer
	notes       NoteServicer
	territories TerritoryServicer
	address     AddressServicer
	export      ExportServicer
	settings    SettingsServicer
	openapi     []byte
}

// NewServer constructs the Server with all its dependencies.
// openapi is the raw spec document served at /openapi.yaml; nil disables it.
func NewServer(
	people PersonServicer,
	notes NoteServicer,
	territories TerritoryServicer,
	address AddressServicer,
	export ExportServicer,
	settings SettingsServicer,
	openapi []byte,
) *Server {
	return &Server{
		people:      people,
		notes:       notes,
		territories: territories,
		address:     address,
		export:      export,
		settings:    settings,
		openapi:     openapi,
	}
}

// Routes builds the full route table. Middleware is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.Health)
	r.Get("/openapi.yaml", s.OpenAPI)

	r.Route("/people", func(r chi.Router) {
		r.Post("/", s.CreatePerson)
		r.Get("/", s.ListPeople)
		r.Route("/{personID}", func(r chi.Router) {
			r.Get("/", s.GetPerson)
			r.Put("/", s.UpdatePerson)
			r.Delete("/", s.DeletePerson)
			r.Post("/notes", s.AddNote)
		})
	})

	r.Route("/territories", func(r chi.Router) {
		r.Post("/", s.CreateTerritory)
		r.Get("/", s.ListTerritories)
		r.Get("/exists", s.TerritoryExists)
		r.Delete("/{territoryID}", s.DeleteTerritory)
	})

	r.Route("/address", func(r chi.Router) {
		r.Get("/suggestions", s.AddressSuggestions)
		r.Get("/resolve", s.ResolveAddress)
	})

	r.Get("/export", s.ExportData)
	r.Post("/import", s.ImportData)

	r.Get("/settings", s.GetSettings)
	r.Put("/settings", s.UpdateSettings)

	return r
}
