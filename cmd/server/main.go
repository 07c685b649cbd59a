package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/term"

	"budgetlens/internal/config"
	"budgetlens/internal/handlers/analytics"
	"budgetlens/internal/handlers/backup"
	ledgerhandlers "budgetlens/internal/handlers/ledger"
	"budgetlens/internal/handlers/recurring"
	"budgetlens/internal/handlers/transfer"
	"budgetlens/internal/logger"
	"budgetlens/internal/services/ledger"
	"budgetlens/internal/services/storage"
	"budgetlens/internal/version"
)

var (
	cfg   *config.Config
	log   = logger.Nop()
	store *storage.Storage
	books *ledger.Ledger
	clock = time.Now
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log = logger.New(cfg.Debug)
	log.Info().Str("version", version.Get().String()).Msg("Starting")
	log.Info().Str("data_dir", cfg.DataDirectory).Msg("Data directory")

	store, err = storage.New(cfg.DataDirectory)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	if store.IsEncrypted() {
		if err := unlockAtStartup(); err != nil {
			log.Fatal().Err(err).Msg("Failed to unlock data directory")
		}
	}

	if err := SetupDependencies(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up dependencies")
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      SetupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// unlockAtStartup uses BUDGET_PASSWORD, or prompts when stdin is a
// terminal. Without either the server starts locked and waits for
// POST /api/storage/unlock.
func unlockAtStartup() error {
	password := cfg.Password
	if password == "" {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			log.Warn().Msg("Data directory is encrypted; starting locked")
			return nil
		}
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}
	if err := store.Unlock(password); err != nil {
		return err
	}
	log.Info().Msg("Data directory unlocked")
	return nil
}

// SetupDependencies opens the ledger over the storage and initializes the
// handler packages. The storage must already be set.
func SetupDependencies(c *config.Config) error {
	cfg = c
	if store == nil {
		var err error
		if store, err = storage.New(c.DataDirectory); err != nil {
			return err
		}
	}

	var err error
	books, err = ledger.Open(store, log)
	if err != nil {
		return err
	}

	ledgerhandlers.Initialize(books)
	recurring.Initialize(books, clock)
	analytics.Initialize(books, c.Thresholds, clock)
	transfer.Initialize(books, clock)
	backup.Initialize(store, books, clock)
	return nil
}

// SetupRouter builds the router with middleware and every route group
func SetupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	backup.RegisterRoutes(r)
	ledgerhandlers.RegisterRoutes(r)
	recurring.RegisterRoutes(r)
	analytics.RegisterRoutes(r)
	transfer.RegisterRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	})
	return c.Handler(r)
}
