// Package main is the entry point for the Doorstep API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/nolanv/doorstep/internal/config"
	"github.com/nolanv/doorstep/internal/geocode"
	"github.com/nolanv/doorstep/internal/geoloc"
	"github.com/nolanv/doorstep/internal/handler"
	"github.com/nolanv/doorstep/internal/middleware"
	"github.com/nolanv/doorstep/internal/repo"
	"github.com/nolanv/doorstep/internal/service"
	"github.com/nolanv/doorstep/migrations"
	"github.com/nolanv/doorstep/spec"
)

// maxBodyBytes caps request bodies; import payloads are the largest we accept.
const maxBodyBytes = 10 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// Apply pending migrations at startup so a fresh database is usable
	// without a separate migrate step.
	if err := migrateUp(cfg.DatabaseURL); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	people := repo.NewPersonRepo(pool)
	notes := repo.NewNoteRepo(pool)
	territories := repo.NewTerritoryRepo(pool)
	settings := repo.NewSettingsRepo(pool)

	geocoder := geocode.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, nil)
	resolver := geocode.NewResolver(geocoder, cfg.GeocoderCountry, logger)
	debouncer := geocode.NewDebouncer(geocode.DefaultSettle)

	var locator geoloc.Locator
	if cfg.DevicePosition != nil {
		locator = geoloc.Static{Pos: *cfg.DevicePosition}
	}

	personService := service.NewPersonService(people, notes)
	noteService := service.NewNoteService(people, notes)
	territoryService := service.NewTerritoryService(territories)
	addressService := service.NewAddressService(territories, settings, resolver, locator, debouncer)
	exportService := service.NewExportService(people, notes)
	settingsService := service.NewSettingsService(settings)

	server := handler.NewServer(
		personService, noteService, territoryService,
		addressService, exportService, settingsService,
		spec.OpenAPI,
	)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID, RealIP, SlogLogger, Recoverer, CORS, body cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The write timeout leaves headroom for a debounced suggestion call that
	// waits out its settle window before hitting the geocoder.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrateUp applies all pending embedded migrations. goose wants a
// database/sql handle, so open a short-lived one alongside the pool.
func migrateUp(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "source", res.Source.Path)
	}
	return nil
}
