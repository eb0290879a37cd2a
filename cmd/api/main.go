package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kingtan/api-users/internal/config"
	"github.com/kingtan/api-users/internal/handler"
	"github.com/kingtan/api-users/internal/mailer"
	"github.com/kingtan/api-users/internal/middleware"
	"github.com/kingtan/api-users/internal/repository"
	"github.com/kingtan/api-users/internal/service"
)

// publicPaths require no authentication; the security filter skips them and
// every other route gets a principal attached when the bearer token checks
// out.
var publicPaths = []string{
	"/health",
	"/metrics",
	"/api/v1/auth/login",
	"/api/v1/auth/password/reset",
	"/api/v1/auth/password/reset/confirm",
	"/api/v1/users/register",
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	setupLogger(cfg)

	if err := repository.Migrate(cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	tokenRepo := repository.NewResetTokenRepository(db)

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		slog.Warn("SMTP not configured, reset mails are logged only")
		mail = mailer.NewLog()
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepo, roleRepo)
	resetService := service.NewPasswordResetService(userRepo, tokenRepo, mail, cfg.ResetTokenTTL)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	resetHandler := handler.NewPasswordResetHandler(resetService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.Authenticate(cfg.JWTSecret, userRepo, publicPaths))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/v1/auth/login", authHandler.HandleLogin)
		r.Post("/api/v1/auth/password/reset", resetHandler.HandleRequestReset)
		r.Post("/api/v1/auth/password/reset/confirm", resetHandler.HandleConfirmReset)
		r.Post("/api/v1/users/register", userHandler.HandleRegister)
	})

	member := middleware.RequireRoles("ROLE_USER", "ROLE_ADMIN")
	admin := middleware.RequireRoles("ROLE_ADMIN")

	r.With(member).Get("/api/v1/users", userHandler.HandleListUsers)
	r.With(member).Get("/api/v1/users/{username}", userHandler.HandleGetUser)
	r.With(member).Put("/api/v1/users/{id}", userHandler.HandleUpdateUser)
	r.With(admin).Delete("/api/v1/users/{id}", userHandler.HandleDeleteUser)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func setupLogger(cfg config.Config) {
	var h slog.Handler
	if cfg.LogFormat == "json" || cfg.Env == "production" {
		h = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		h = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(h))
}
