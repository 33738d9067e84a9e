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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/rahul4469/propmate/internal/config"
	"github.com/rahul4469/propmate/internal/controllers"
	"github.com/rahul4469/propmate/internal/logging"
	"github.com/rahul4469/propmate/internal/middleware"
	"github.com/rahul4469/propmate/internal/services"
	"github.com/rahul4469/propmate/internal/session"
	"github.com/rahul4469/propmate/internal/views"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 20 * time.Second

// serveCmd starts the JSON API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PropMate HTTP API",
	Long: `Serves the JSON API used by the PropMate UI. Settings are read from the
environment and an optional .env file:

  SERVER_ADDRESS, APP_ENV, SESSION_IDLE_TIMEOUT, SESSION_HASH_KEY, CSRF_KEY,
  RATE_LIMIT_PER_MINUTE, RATE_LIMIT_BURST, LOG_LEVEL,
  OPENAI_API_KEY, OPENAI_MODEL, TAVILY_API_KEY

Provider keys are read on every call; a missing key disables that feature
without stopping the server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.APIs = settings()

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		serverLogger, err := logging.New(level, cfg.IsDevelopment())
		if err != nil {
			return err
		}
		defer serverLogger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg, serverLogger)
	},
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Setup Services ---------------
	httpClient := &http.Client{}
	searchClient := services.NewSearchClient(cfg.APIs, httpClient, logger.Named("tavily"))
	chatClient := services.NewChatClient(cfg.APIs, httpClient, logger.Named("openai"))

	store := session.NewStore(session.Dependencies{
		Searcher:  searchClient,
		Replier:   chatClient,
		Extractor: chatClient,
	}, cfg.Limits.SessionIdleTimeout, logger.Named("session"))
	defer store.Close()

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      newRouter(cfg, store, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("environment", cfg.Server.Environment),
			zap.Bool("csrf", cfg.Security.CSRFKey != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newRouter(cfg *config.Config, store *session.Store, logger *zap.Logger) http.Handler {
	sessions := middleware.NewSessionMiddleware(
		store,
		[]byte(cfg.Security.SessionHashKey),
		cfg.Security.SessionCookieName,
		cfg.Security.SecureCookies,
		cfg.Limits.SessionIdleTimeout,
		logger.Named("session"),
	)
	limiter := middleware.NewRateLimiter(cfg.Limits.RequestsPerMinute, cfg.Limits.Burst, logger.Named("ratelimit"))

	// Setup Controllers ---------------
	sessionCtrl := controllers.NewSessionController(store, sessions)
	propertyCtrl := controllers.NewPropertyController(logger.Named("properties"))
	loanCtrl := controllers.NewLoanController(logger.Named("loan"))
	chatCtrl := controllers.NewChatController(logger.Named("chat"))

	// Setup router and routes
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.NotFound(controllers.NotFound)
	r.MethodNotAllowed(controllers.MethodNotAllowed)

	r.Get("/healthz", controllers.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		if cfg.Security.CSRFKey != "" {
			if !cfg.IsProduction() {
				r.Use(middleware.PlaintextHTTP)
			}
			r.Use(csrf.Protect(
				[]byte(cfg.Security.CSRFKey),
				csrf.Secure(cfg.Security.SecureCookies),
				csrf.Path("/"),
				csrf.RequestHeader(middleware.CSRFHeader),
				csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
			))
			r.Use(middleware.ExposeCSRFToken)
		}
		r.Use(sessions.SetSession)
		r.Use(sessions.RequireSession)

		r.Get("/session", sessionCtrl.GetSession)
		r.Delete("/session", sessionCtrl.DeleteSession)
		r.Get("/status", sessionCtrl.GetStatus)

		r.Get("/properties", propertyCtrl.GetProperties)
		r.Get("/loan", loanCtrl.GetLoan)
		r.Put("/loan", loanCtrl.PutLoan)
		r.Get("/chat", chatCtrl.GetChat)

		// ---- Provider-backed Routes ----
		r.Group(func(r chi.Router) {
			r.Use(limiter.Limit)
			r.Post("/properties/analyze", propertyCtrl.PostAnalyze)
			r.Post("/loan/offers", loanCtrl.PostOffers)
			r.Post("/chat", chatCtrl.PostChat)
		})
	})

	return r
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	msg := "CSRF token missing or invalid"
	if reason := csrf.FailureReason(r); reason != nil {
		msg += ": " + reason.Error()
	}
	views.Error(w, http.StatusForbidden, views.CodeCSRF, msg)
}
