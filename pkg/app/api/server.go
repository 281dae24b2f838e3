// Package api assembles the ledger HTTP server: storage, services,
// authentication and routing.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/lastforend/airdrop-ledger/pkg/app/http"
	"github.com/lastforend/airdrop-ledger/pkg/auth"
	catalogservice "github.com/lastforend/airdrop-ledger/pkg/catalog/service"
	"github.com/lastforend/airdrop-ledger/pkg/config"
	ledgerservice "github.com/lastforend/airdrop-ledger/pkg/ledger/service"
	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/pgutil"
	registryservice "github.com/lastforend/airdrop-ledger/pkg/registry/service"
	reportingservice "github.com/lastforend/airdrop-ledger/pkg/reporting/service"
	"github.com/lastforend/airdrop-ledger/pkg/wallet"
)

// Services bundles the service layer behind the HTTP facade.
type Services struct {
	Registry  registryservice.Service
	Ledger    ledgerservice.Service
	Catalog   catalogservice.Service
	Reporting reportingservice.Service
}

// Run wires the full server from configuration and blocks until ctx is
// canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database))

	store := ledgerstore.NewStore(db)

	ledgerSvc := ledgerservice.NewLog(
		ledgerservice.NewService(store, &cfg.Rewards, logger), logger)
	registrySvc := registryservice.NewLog(
		registryservice.NewService(store, ledgerSvc, logger), logger)
	catalogSvc := catalogservice.NewService(store, logger)
	reportingSvc := reportingservice.NewService(store, logger)

	// Seeding is idempotent, so a restart against an already seeded
	// database is a no-op.
	if err := catalogSvc.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed default tasks: %w", err)
	}

	services := &Services{
		Registry:  registrySvc,
		Ledger:    ledgerSvc,
		Catalog:   catalogSvc,
		Reporting: reportingSvc,
	}

	router := NewRouter(cfg, services, logger)
	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

// NewRouter builds the chi router for the given services. Route groups:
//
//	public        /register, /health, /metrics
//	authenticated /me, /tasks, /balance, ... (X-API-Key)
//	admin         /admin/... (Bearer JWT)
func NewRouter(cfg *config.Config, services *Services, logger *zap.Logger) *chi.Mux {
	converter := wallet.NewConverter(&cfg.Token)
	jwtValidator := auth.NewJWTValidator(cfg.Auth.AdminJWTSecret, cfg.Auth.AdminIssuer)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	registryservice.RegisterRoutes(r, services.Registry, logger)

	r.Group(func(r chi.Router) {
		r.Use(auth.APIKeyMiddleware(services.Registry, logger))

		registryservice.RegisterUserRoutes(r, services.Registry, logger)
		catalogservice.RegisterRoutes(r, services.Catalog, logger)
		ledgerservice.RegisterRoutes(r, services.Ledger, converter, logger)
		reportingservice.RegisterRoutes(r, services.Reporting, converter, logger)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AdminMiddleware(jwtValidator, logger))

		registryservice.RegisterAdminRoutes(r, services.Registry, logger)
		catalogservice.RegisterAdminRoutes(r, services.Catalog, logger)
		ledgerservice.RegisterAdminRoutes(r, services.Ledger, logger)
		reportingservice.RegisterAdminRoutes(r, services.Reporting, logger)
	})

	return r
}
