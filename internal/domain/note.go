package domain

import "time"

// Note is a timestamped free-text observation attached to a person.
// Notes are immutable once written; they are removed only when the owning
// person is deleted.
type Note struct {
	ID        int64
	PersonID  int64
	Content   string
	CreatedAt time.Time
}
