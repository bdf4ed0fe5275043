package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/crucial707/landscape-lab/internal/auth"
	"github.com/crucial707/landscape-lab/internal/cache"
	"github.com/crucial707/landscape-lab/internal/config"
	"github.com/crucial707/landscape-lab/internal/events"
	"github.com/crucial707/landscape-lab/internal/handlers"
	"github.com/crucial707/landscape-lab/internal/middleware"
	"github.com/crucial707/landscape-lab/internal/repo"
	"github.com/crucial707/landscape-lab/internal/stats"
	"github.com/crucial707/landscape-lab/internal/storage"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// infra holds the pluggable backends chosen from configuration.
type infra struct {
	Store  storage.Store
	Cache  cache.Cache
	Events events.Publisher
}

// app wires repositories, the authenticator and the handlers around one database.
type app struct {
	cfg    config.Config
	db     *sql.DB
	logger *slog.Logger

	auth  *auth.Authenticator
	users *repo.UserRepo
	stats *stats.Service

	authH     *handlers.AuthHandler
	userH     *handlers.UserHandler
	projectH  *handlers.ProjectHandler
	plantH    *handlers.PlantHandler
	materialH *handlers.MaterialHandler
	mediaH    *handlers.MediaHandler
	auditH    *handlers.AuditHandler
}

func newApp(database *sql.DB, cfg config.Config, in infra, logger *slog.Logger) (*app, error) {
	if in.Cache == nil {
		in.Cache = cache.Nop{}
	}
	if in.Events == nil {
		in.Events = events.Nop{}
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	users := repo.NewUserRepo(database)
	authenticator, err := auth.NewAuthenticator(users, auth.NewPasswordHasher(cfg.BcryptCost), tokens, logger)
	if err != nil {
		return nil, err
	}

	projects := repo.NewProjectRepo(database)
	plants := repo.NewPlantRepo(database)
	materials := repo.NewMaterialRepo(database)
	statsSvc := stats.NewService(plants, materials, projects, in.Cache, cfg.StatsCacheTTL, logger)
	audit := &handlers.Auditor{Repo: repo.NewAuditRepo(database), Events: in.Events}

	return &app{
		cfg:    cfg,
		db:     database,
		logger: logger,
		auth:   authenticator,
		users:  users,
		stats:  statsSvc,

		authH: &handlers.AuthHandler{Auth: authenticator, Audit: audit},
		userH: &handlers.UserHandler{Repo: users, Auth: authenticator, Audit: audit},
		projectH: &handlers.ProjectHandler{
			Repo:     projects,
			Files:    repo.NewProjectFileRepo(database),
			Versions: repo.NewProjectVersionRepo(database),
			Store:    in.Store,
			Auth:     authenticator,
			Stats:    statsSvc,
			Audit:    audit,
		},
		plantH:    &handlers.PlantHandler{Repo: plants, Store: in.Store, Auth: authenticator, Stats: statsSvc, Audit: audit},
		materialH: &handlers.MaterialHandler{Repo: materials, Store: in.Store, Auth: authenticator, Stats: statsSvc, Audit: audit},
		mediaH:    &handlers.MediaHandler{Store: in.Store},
		auditH:    &handlers.AuditHandler{Repo: repo.NewAuditRepo(database)},
	}, nil
}

// bootstrapAdmin creates the configured administrator unless a user with that
// name already exists. It does nothing when the ADMIN_* settings are incomplete.
func (a *app) bootstrapAdmin(ctx context.Context) error {
	c := a.cfg
	if c.AdminUsername == "" || c.AdminEmail == "" || c.AdminPassword == "" {
		return nil
	}
	u, err := a.users.GetByUsername(ctx, c.AdminUsername)
	if err == nil {
		if !u.IsAdmin {
			a.logger.Warn("bootstrap admin username belongs to a non-admin user; leaving it unchanged", "username", u.Username)
		}
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}
	if _, err := a.auth.Register(ctx, c.AdminUsername, c.AdminEmail, c.AdminPassword, true); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			a.logger.Warn("bootstrap admin not created: username or email taken", "username", c.AdminUsername)
			return nil
		}
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	return nil
}

// newRouter builds the chi router with middleware and every route.
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog(a.logger))
	r.Use(middleware.Recoverer(a.logger))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(a.cfg.TLSCertFile != "" && a.cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(a.cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes, a.cfg.MaxUploadBytes))

	// ==========================
	// Operations (no auth)
	// ==========================
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.PingContext(r.Context()); err != nil {
			a.logger.Warn("readiness check failed", "error", err)
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/media/*", a.mediaH.Serve)

	// ==========================
	// Auth (rate limited)
	// ==========================
	limiter := middleware.AuthRateLimiter().TrustProxyHeaders(a.cfg.TrustProxyHeaders)
	r.Route("/auth", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post("/token", a.authH.Token)
		r.Post("/register", a.authH.Register)
	})

	// ==========================
	// Protected
	// ==========================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(a.auth))
		admin := func(op auth.Operation) func(http.Handler) http.Handler {
			return middleware.Authorize(a.auth, op)
		}

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", a.userH.Me)
			r.Put("/me", a.userH.UpdateMe)
			r.With(admin(auth.OpUserList)).Get("/", a.userH.ListUsers)
			r.Get("/{id}", a.userH.GetUser)
			r.Patch("/{id}", a.userH.PatchUser)
			r.Delete("/{id}", a.userH.DeactivateUser)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", a.projectH.ListProjects)
			r.Post("/", a.projectH.CreateProject)
			r.With(admin(auth.OpProjectStatistics)).Get("/statistics", a.projectH.Statistics)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.projectH.GetProject)
				r.Put("/", a.projectH.UpdateProject)
				r.Delete("/", a.projectH.DeleteProject)
				r.Post("/files", a.projectH.UploadFile)
				r.Get("/files", a.projectH.ListFiles)
				r.Get("/files/{fileID}", a.projectH.DownloadFile)
				r.Post("/versions", a.projectH.CreateVersion)
				r.Get("/versions", a.projectH.ListVersions)
			})
		})

		r.Route("/plants", func(r chi.Router) {
			r.Get("/", a.plantH.ListPlants)
			r.Post("/", a.plantH.CreatePlant)
			r.With(admin(auth.OpPlantStatistics)).Get("/statistics", a.plantH.Statistics)
			r.Get("/{id}", a.plantH.GetPlant)
			r.Put("/{id}", a.plantH.UpdatePlant)
			r.Delete("/{id}", a.plantH.DeletePlant)
			r.Post("/{id}/image", a.plantH.UploadImage)
		})

		r.Route("/materials", func(r chi.Router) {
			r.Get("/", a.materialH.ListMaterials)
			r.Post("/", a.materialH.CreateMaterial)
			r.With(admin(auth.OpMaterialStatistics)).Get("/statistics", a.materialH.Statistics)
			r.Get("/{id}", a.materialH.GetMaterial)
			r.Put("/{id}", a.materialH.UpdateMaterial)
			r.Delete("/{id}", a.materialH.DeleteMaterial)
			r.Post("/{id}/image", a.materialH.UploadImage)
		})

		r.With(admin(auth.OpAuditRead)).Get("/audit", a.auditH.ListAudit)
	})

	return r
}
