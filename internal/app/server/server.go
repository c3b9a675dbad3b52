package server

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perfdash/internal/domain/audit"
	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/goals"
	"perfdash/internal/domain/notifications"
	"perfdash/internal/domain/org"
	"perfdash/internal/domain/reports"
	"perfdash/internal/platform/config"
	"perfdash/internal/platform/crypto"
	"perfdash/internal/platform/db"
	"perfdash/internal/platform/email"
	"perfdash/internal/platform/metrics"
	audithandler "perfdash/internal/transport/http/handlers/audit"
	authhandler "perfdash/internal/transport/http/handlers/auth"
	goalshandler "perfdash/internal/transport/http/handlers/goals"
	notificationshandler "perfdash/internal/transport/http/handlers/notifications"
	orghandler "perfdash/internal/transport/http/handlers/org"
	performancehandler "perfdash/internal/transport/http/handlers/performance"
	reportshandler "perfdash/internal/transport/http/handlers/reports"
	"perfdash/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption key invalid: %v", err)
	}

	mailer := email.New(cfg)
	perms := auth.StaticPermissions{}
	collector := metrics.New()
	idemStore := middleware.NewIdempotencyStore(pool)

	authService := auth.NewService(auth.NewStore(pool), cfg.ProfileFetchRetries, cfg.ProfileFetchDelay)
	orgService := org.NewService(org.NewStore(pool))
	goalsService := goals.NewService(goals.NewStore(pool))
	reportsService := reports.New(goalsService, orgService)
	notificationsService := notifications.New(notifications.NewStore(pool), mailer, cfg.EmailFrom)
	auditService := audit.New(pool)

	isProd := cfg.Environment == "production"

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(auth.PermSystemAdmin, perms)).
			Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(collector.Snapshot())
			})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authService, cfg.JWTSecret, cryptoSvc, mailer, cfg.EmailFrom)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/refresh", authHandler.HandleRefresh)
		r.Post("/auth/request-reset", authHandler.HandleRequestReset)
		r.Post("/auth/reset", authHandler.HandleResetPassword)
		r.Get("/auth/me", authHandler.HandleMe)

		orghandler.NewHandler(orgService, perms, auditService, idemStore).RegisterRoutes(r)
		goalshandler.NewHandler(goalsService, perms, auditService, notificationsService, idemStore).RegisterRoutes(r)
		performancehandler.NewHandler(reportsService, orgService, perms).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, orgService, perms, auditService, collector).RegisterRoutes(r)
		notificationshandler.NewHandler(notificationsService, perms).RegisterRoutes(r)
		audithandler.NewHandler(auditService, perms).RegisterRoutes(r)
	})

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
