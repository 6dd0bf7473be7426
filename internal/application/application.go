package application

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/decimal-knapsack/internal/api"
	"github.com/eugenenazirov/decimal-knapsack/internal/config"
	"github.com/eugenenazirov/decimal-knapsack/internal/inventory"
	"github.com/eugenenazirov/decimal-knapsack/internal/knapsack"
	"github.com/eugenenazirov/decimal-knapsack/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	solver  knapsack.Solver
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := NewStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if cfg.InventoryFile != "" {
		inv, err := inventory.Load(cfg.InventoryFile)
		if err != nil {
			closeStorage(store)
			return nil, fmt.Errorf("failed to read inventory file: %w", err)
		}
		if err := store.SetInventory(inv); err != nil {
			closeStorage(store)
			return nil, fmt.Errorf("failed to apply initial inventory: %w", err)
		}
		logger.Info("inventory loaded",
			zap.String("path", cfg.InventoryFile),
			zap.Int("items", inv.Len()),
			zap.String("capacity", inv.Capacity().String()),
		)
	}

	solver := knapsack.New()
	handler := api.NewHandler(solver, store, api.WithLogger(logger))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithCompression(cfg.EnableCompression),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage: store,
		solver:  solver,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// NewStorage opens the inventory store selected by cfg.StorageDriver.
func NewStorage(cfg config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case "", config.StorageMemory:
		return storage.NewMemoryStorage(), nil
	case config.StorageSQLite:
		return storage.OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// BuildRootHandler constructs the root HTTP handler that routes API and
// metrics requests and answers anything else with 404.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/health", http.StatusTemporaryRedirect)
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Close releases the storage backend once the server has stopped.
func (a *App) Close() error {
	if closer, ok := a.storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func closeStorage(store storage.Storage) {
	if closer, ok := store.(io.Closer); ok {
		_ = closer.Close()
	}
}
