// Package repo contains all database access logic for the Doorstep API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nolanv/doorstep/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin is included because the
// person delete runs notes + person removal as one transaction; on a pgx.Tx it
// opens a savepoint, which keeps the test isolation intact.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PersonRepo defines the persistence operations for People.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type PersonRepo interface {
	// Create inserts a new person and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated). A non-zero
	// CreatedAt on the input is preserved, which is how import keeps
	// original timestamps; otherwise the DB assigns now().
	Create(ctx context.Context, person domain.Person) (domain.Person, error)

	// GetByID retrieves a single person by id, without notes attached.
	// Returns domain.ErrNotFound if no person with that id exists.
	GetByID(ctx context.Context, id int64) (domain.Person, error)

	// List returns all people ordered by name ascending. The ordering is
	// byte-order case-sensitive (COLLATE "C"), independent of the database's
	// default collation.
	List(ctx context.Context) ([]domain.Person, error)

	// Update overwrites the mutable fields of an existing person, refreshes
	// updated_at, and returns the updated record. created_at is never
	// touched. Returns domain.ErrNotFound if no person with that id exists.
	Update(ctx context.Context, person domain.Person) (domain.Person, error)

	// DeleteWithNotes removes a person and all of their notes as a single
	// transaction, notes first, so no orphaned note is ever visible.
	// Returns domain.ErrNotFound if the person does not exist.
	DeleteWithNotes(ctx context.Context, id int64) error
}

// pgPersonRepo is the Postgres implementation of PersonRepo.
type pgPersonRepo struct {
	db db
}

// NewPersonRepo constructs a PersonRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPersonRepo(db db) PersonRepo {
	return &pgPersonRepo{db: db}
}

func (r *pgPersonRepo) Create(ctx context.Context, person domain.Person) (domain.Person, error) {
	const q = `
		INSERT INTO people (name, address, phone, email, latitude, longitude, created_at)
		VALUES (@name, @address, @phone, @email, @latitude, @longitude, COALESCE(@created_at, now()))
		RETURNING id, name, address, phone, email, latitude, longitude, created_at, updated_at`

	lat, lng := locationArgs(person.Location)
	args := pgx.NamedArgs{
		"name":       person.Name,
		"address":    person.Address,
		"phone":      person.Phone,
		"email":      person.Email,
		"latitude":   lat,
		"longitude":  lng,
		"created_at": timeArg(person.CreatedAt),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanPerson(row)
	if err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPersonRepo) GetByID(ctx context.Context, id int64) (domain.Person, error) {
	const q = `
		SELECT id, name, address, phone, email, latitude, longitude, created_at, updated_at
		FROM people
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanPerson(row)
	if err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPersonRepo) List(ctx context.Context) ([]domain.Person, error) {
	const q = `
		SELECT id, name, address, phone, email, latitude, longitude, created_at, updated_at
		FROM people
		ORDER BY name COLLATE "C" ASC, id ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.PersonRepo.List: %w", err)
	}
	defer rows.Close()

	var people []domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PersonRepo.List: scan: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PersonRepo.List: rows: %w", err)
	}

	return people, nil
}

func (r *pgPersonRepo) Update(ctx context.Context, person domain.Person) (domain.Person, error) {
	const q = `
		UPDATE people
		SET name       = @name,
		    address    = @address,
		    phone      = @phone,
		    email      = @email,
		    latitude   = @latitude,
		    longitude  = @longitude,
		    updated_at = now()
		WHERE id = @id
		RETURNING id, name, address, phone, email, latitude, longitude, created_at, updated_at`

	lat, lng := locationArgs(person.Location)
	args := pgx.NamedArgs{
		"id":        person.ID,
		"name":      person.Name,
		"address":   person.Address,
		"phone":     person.Phone,
		"email":     person.Email,
		"latitude":  lat,
		"longitude": lng,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanPerson(row)
	if err != nil {
		return domain.Person{}, fmt.Errorf("repo.PersonRepo.Update: %w", err)
	}
	return result, nil
}

// DeleteWithNotes deletes the person's notes, then the person, in one
// transaction. The explicit note delete (rather than leaning on the FK
// cascade alone) keeps the ordering guarantee visible and testable.
func (r *pgPersonRepo) DeleteWithNotes(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.PersonRepo.DeleteWithNotes: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM notes WHERE person_id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.PersonRepo.DeleteWithNotes: delete notes: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM people WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PersonRepo.DeleteWithNotes: delete person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PersonRepo.DeleteWithNotes: %w", domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.PersonRepo.DeleteWithNotes: commit: %w", err)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanPerson maps a single database row into a domain.Person.
// It handles the nullable latitude/longitude pair.
func scanPerson(s scanner) (domain.Person, error) {
	var (
		p   domain.Person
		lat pgtype.Float8
		lng pgtype.Float8
	)

	err := s.Scan(&p.ID, &p.Name, &p.Address, &p.Phone, &p.Email, &lat, &lng, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Person{}, domain.ErrNotFound
		}
		return domain.Person{}, err
	}

	if lat.Valid && lng.Valid {
		p.Location = &domain.LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}

	return p, nil
}

// locationArgs splits an optional LatLng into two nullable SQL arguments.
func locationArgs(loc *domain.LatLng) (lat, lng *float64) {
	if loc == nil {
		return nil, nil
	}
	return &loc.Lat, &loc.Lng
}

// timeArg converts a zero time.Time into a SQL NULL so COALESCE defaults apply.
func timeArg(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
