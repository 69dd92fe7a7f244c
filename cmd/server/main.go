package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Simplici0/pouch.works/internal/catalog"
	"github.com/Simplici0/pouch.works/internal/config"
	"github.com/Simplici0/pouch.works/internal/db"
	"github.com/Simplici0/pouch.works/internal/migrations"
	"github.com/Simplici0/pouch.works/internal/pricing"
	"github.com/Simplici0/pouch.works/internal/quote"
	"github.com/Simplici0/pouch.works/internal/ratecard"
	"github.com/Simplici0/pouch.works/internal/seed"
	"github.com/Simplici0/pouch.works/internal/telemetry"
)

// catalogAdmin is the editable catalog; only the SQLite source provides one.
type catalogAdmin interface {
	ListBagTypes(ctx context.Context) ([]catalog.BagType, error)
	UpsertBagType(ctx context.Context, b catalog.BagType) error
	ListMaterials(ctx context.Context) ([]catalog.Material, error)
	UpsertMaterial(ctx context.Context, m catalog.Material) error
	ListVolumeTiers(ctx context.Context) ([]catalog.VolumeTier, error)
}

type server struct {
	engine   *pricing.Engine
	quotes   *quote.Facade
	ratecard ratecard.Table
	catalog  catalogAdmin
	auth     *authService
	logger   zerolog.Logger
}

func main() {
	printToken := flag.String("print-admin-token", "", "print an admin token for `subject` and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if *printToken != "" {
		if cfg.AdminSecret == "" {
			fmt.Fprintln(os.Stderr, "ADMIN_SECRET is not set")
			os.Exit(1)
		}
		fmt.Println(newAuthService(cfg.AdminSecret).createToken(*printToken))
		return
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	for _, w := range cfg.Warnings() {
		logger.Warn().Msg(w)
	}

	tp, shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("flush traces")
		}
	}()

	refs, admin, closeCatalog, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	engine, err := pricing.NewEngine(refs,
		pricing.WithCacheTTL(cfg.EngineCacheTTL),
		pricing.WithLogger(logger.With().Str("component", "pricing").Logger()),
		pricing.WithTracerProvider(tp),
	)
	if err != nil {
		return err
	}

	srv := &server{
		engine: engine,
		quotes: quote.New(engine,
			quote.WithCacheTTL(cfg.QuoteCacheTTL),
			quote.WithLogger(logger.With().Str("component", "quote").Logger()),
			quote.WithTracerProvider(tp),
		),
		ratecard: ratecard.DefaultTable(),
		catalog:  admin,
		auth:     newAuthService(cfg.AdminSecret),
		logger:   logger,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Str("catalog", cfg.CatalogSource).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openCatalog selects the reference-data source. The returned admin is nil
// unless the catalog is editable.
func openCatalog(ctx context.Context, cfg config.Config, logger zerolog.Logger) (pricing.References, catalogAdmin, func(), error) {
	noop := func() {}

	switch cfg.CatalogSource {
	case config.CatalogYAML:
		refs, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return pricing.References{}, nil, noop, err
		}
		return refs.AsReferences(), nil, noop, nil

	case config.CatalogSQLite:
		database, err := db.Open(ctx, cfg.DBPath)
		if err != nil {
			return pricing.References{}, nil, noop, err
		}
		if err := prepareCatalog(ctx, database, logger); err != nil {
			database.Close()
			return pricing.References{}, nil, noop, err
		}
		store := catalog.NewStore(database)
		return store.References(), store, func() { database.Close() }, nil

	default:
		return pricing.DefaultStaticReferences().AsReferences(), nil, noop, nil
	}
}

func prepareCatalog(ctx context.Context, database *sql.DB, logger zerolog.Logger) error {
	if err := migrations.Up(ctx, database); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	stats, err := seed.Run(ctx, database, seed.DefaultCatalog())
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	logger.Info().Int("inserts", stats.Inserts).Msg("catalog seeded")
	return nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/price", s.handlePrice)
		r.Post("/quotes", s.handleQuotes)
		r.Post("/quotes/export.xlsx", s.handleExportXLSX)
		r.Post("/quotes/export.txt", s.handleExportText)
		r.Post("/estimate", s.handleEstimate)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/cache/clear", s.handleClearCache)
		r.Get("/catalog/bag-types", s.handleListBagTypes)
		r.Put("/catalog/bag-types/{id}", s.handleUpsertBagType)
		r.Get("/catalog/materials", s.handleListMaterials)
		r.Put("/catalog/materials/{id}", s.handleUpsertMaterial)
		r.Get("/catalog/volume-tiers", s.handleListVolumeTiers)
	})

	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.requestLogger(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *server) requestLogger(r *http.Request) *zerolog.Logger {
	l := s.logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
	return &l
}
