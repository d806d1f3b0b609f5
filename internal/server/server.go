// Package server wires the HTTP router, middleware and all route
// definitions, and owns startup/shutdown.
//
// This is the composition root: main.go hands it a Config and a logger, and
// New assembles database → repositories → services → handlers in one place.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/handler"
	"github.com/sakif/study-companion/internal/middleware"
	"github.com/sakif/study-companion/internal/model"
	sqliteRepo "github.com/sakif/study-companion/internal/repository/sqlite"
	"github.com/sakif/study-companion/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
}

// Server is the HTTP server and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, assembles the dependency chain,
// and registers every route.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Router exposes the configured handler, mainly for httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures middleware and all route handlers.
//
// Middleware order: RequestID → RealIP → Recoverer → request logging, on
// every request. Auth is applied per-route via the auth middleware's
// Require/RequireRole adapters, which hand the handler an explicit
// principal.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	users := sqliteRepo.NewUserRepo(s.db)
	messages := sqliteRepo.NewMessageRepo(s.db)
	videos := sqliteRepo.NewVideoRepo(s.db)
	reflections := sqliteRepo.NewReflectionRepo(s.db)

	authMW := auth.NewMiddleware(tokens, users, s.logger)

	authService := service.NewAuthService(users, tokens, passwords, s.logger)
	chatService := service.NewChatService(messages, users, s.logger)
	videoService := service.NewVideoService(videos, s.logger)
	reflectionService := service.NewReflectionService(reflections, videos, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	chatHandler := handler.NewChatHandler(chatService, s.logger)
	videoHandler := handler.NewVideoHandler(videoService, s.logger)
	reflectionHandler := handler.NewReflectionHandler(reflectionService, s.logger)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"message":"Study Companion API"}`)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Get("/profile", authMW.Require(authHandler.HandleGetProfile))
			r.Put("/profile", authMW.Require(authHandler.HandleUpdateProfile))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", authMW.Require(chatHandler.HandleListMessages))
			r.Post("/", authMW.Require(chatHandler.HandleSendMessage))
			r.Get("/conversations", authMW.RequireRole(model.RoleInstructor, chatHandler.HandleListConversations))
		})

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", videoHandler.HandleList)
			r.Get("/{id}", videoHandler.HandleGetByID)
			r.Post("/", authMW.RequireRole(model.RoleInstructor, videoHandler.HandleCreate))
			r.Put("/{id}", authMW.RequireRole(model.RoleInstructor, videoHandler.HandleUpdate))
			r.Delete("/{id}", authMW.RequireRole(model.RoleInstructor, videoHandler.HandleDelete))
		})

		r.Route("/reflections", func(r chi.Router) {
			r.Post("/", authMW.Require(reflectionHandler.HandleSubmit))
			r.Get("/", authMW.Require(reflectionHandler.HandleListOwn))
			// Static /all must be registered alongside /{videoId}; chi
			// prefers the static segment, so "all" never parses as an id.
			r.Get("/all", authMW.RequireRole(model.RoleInstructor, reflectionHandler.HandleListAll))
			r.Get("/{videoId}", authMW.Require(reflectionHandler.HandleGetByVideo))
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
