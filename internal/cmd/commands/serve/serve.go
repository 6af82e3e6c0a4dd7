package serve

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/rs/cors"

	api "github.com/papyrusworks/papyrus/internal/api/v1"
	"github.com/papyrusworks/papyrus/internal/cmd/base"
	"github.com/papyrusworks/papyrus/internal/config"
	"github.com/papyrusworks/papyrus/internal/migrate"
	"github.com/papyrusworks/papyrus/internal/middleware"
	"github.com/papyrusworks/papyrus/internal/server"
	"github.com/papyrusworks/papyrus/pkg/database"
	"github.com/papyrusworks/papyrus/pkg/store"
)

type Command struct {
	*base.Command

	flagConfig string
	flagAddr   string
}

func (c *Command) Synopsis() string {
	return "Run the server"
}

func (c *Command) Help() string {
	return `Usage: papyrus serve
       papyrus serve -config=config.hcl

  Run the Papyrus server.

  Without a config file, an embedded SQLite database (papyrus.db in the
  working directory) is used and the server listens on
  http://127.0.0.1:8000.
` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("serve", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		"Path to config file. Omit to run with an embedded SQLite database.",
	)
	f.StringVar(
		&c.flagAddr, "addr", "",
		"Listen address, overriding the config file.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	ui := c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	// Load configuration.
	var (
		cfg *config.Config
		err error
	)
	if c.flagConfig != "" {
		cfg, err = config.NewConfig(c.flagConfig)
		if err != nil {
			ui.Error(fmt.Sprintf("error parsing config file: %v", err))
			return 1
		}
	} else {
		cfg = config.DefaultConfig()
		ui.Info("No config file specified, using an embedded SQLite database")
	}
	if c.flagAddr != "" {
		cfg.Server.Addr = c.flagAddr
	}
	if err := cfg.Validate(); err != nil {
		ui.Error(fmt.Sprintf("error validating config: %v", err))
		return 1
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:       "papyrus",
		Level:      hclog.LevelFromString(cfg.Log.Level),
		JSONFormat: cfg.Log.JSON,
	})

	// Handle signals for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	// Connect to the database, waiting out a backend that is still
	// starting.
	db, err := database.ConnectWithBackoff(ctx, cfg.DatabaseConfig(), log)
	if err != nil {
		ui.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	if cfg.Database.AutoMigrate != nil && *cfg.Database.AutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			ui.Error(fmt.Sprintf("error getting database handle: %v", err))
			return 1
		}
		if err := migrate.RunMigrations(sqlDB, cfg.Database.Driver); err != nil {
			ui.Error(fmt.Sprintf("error running migrations: %v", err))
			return 1
		}
		log.Info("database migrations applied")
	}

	srv := server.Server{
		Config: cfg,
		DB:     db,
		Store:  store.New(db, log),
		Logger: log,
	}

	mux := http.NewServeMux()
	registerEndpoints(mux, srv)

	handler := buildHandler(mux, cfg, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			"addr", cfg.Server.Addr,
			"base_url", cfg.Server.BaseURL,
			"driver", cfg.Database.Driver,
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			ui.Error(fmt.Sprintf("server error: %v", err))
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			ui.Error(fmt.Sprintf("error shutting down server: %v", err))
			return 1
		}
	}

	log.Info("server stopped gracefully")
	return 0
}

// registerEndpoints mounts the API handlers.
func registerEndpoints(mux *http.ServeMux, srv server.Server) {
	mux.Handle("/api/v1/documents", api.DocumentsHandler(srv))
	mux.Handle("/api/v1/documents/", api.DocumentHandler(srv))
	mux.Handle("/api/v1/pages", api.PagesHandler(srv))
	mux.Handle("/api/v1/health", api.HealthHandler(srv))
}

// buildHandler wraps the mux with the middleware stack: recovery
// innermost, then request logging, request ids, and CORS outermost so
// pre-flight requests short-circuit before hitting the stack.
func buildHandler(mux http.Handler, cfg *config.Config, log hclog.Logger) http.Handler {
	handler := middleware.Recovery(log)(mux)
	handler = middleware.Logger(log.Named("http"))(handler)
	handler = middleware.RequestID()(handler)

	if len(cfg.Server.CORSOrigins) > 0 {
		corsHandler := cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-Request-Id"},
			AllowCredentials: true,
		})
		handler = corsHandler.Handler(handler)
	}

	return handler
}
