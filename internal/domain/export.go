package domain

import (
	"time"

	"github.com/google/uuid"
)

// Export is the envelope for a full-data export. People carry their notes
// nested, so a single JSON document round-trips the whole logbook.
//
// Ids are included for reference but are discarded on import; every record
// is re-inserted under a freshly assigned id.
type Export struct {
	ExportID   uuid.UUID      `json:"export_id"`
	ExportedAt time.Time      `json:"exported_at"`
	People     []PersonRecord `json:"people"`
}

// PersonRecord is one exported person with nested notes.
type PersonRecord struct {
	ID        int64        `json:"id,omitempty"`
	Name      string       `json:"name"`
	Address   string       `json:"address,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	Email     string       `json:"email,omitempty"`
	Latitude  *float64     `json:"latitude,omitempty"`
	Longitude *float64     `json:"longitude,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
	Notes     []NoteRecord `json:"notes,omitempty"`
}

// NoteRecord is one exported note. CreatedAt is preserved across import so
// note ordering survives a round trip.
type NoteRecord struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
