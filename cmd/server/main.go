package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/decimal-knapsack/internal/application"
	"github.com/eugenenazirov/decimal-knapsack/internal/config"
	"github.com/eugenenazirov/decimal-knapsack/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("knapsack-server", "Decimal knapsack service - selects the most valuable items that fit a capacity")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	inventoryFile := kingpinApp.Flag("inventory-file", "Inventory loaded into storage at startup (.txt, .yaml or .yml)").String()
	storageDriver := kingpinApp.Flag("storage-driver", "Inventory storage backend").Enum(config.StorageMemory, config.StorageSQLite)
	sqlitePath := kingpinApp.Flag("sqlite-path", "Database file used by the sqlite storage driver").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := buildOverrides(*configFile, *port, *inventoryFile, *storageDriver, *sqlitePath, *rateLimitRPSFlag, *rateLimitBurstFlag)

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)

	if err := app.Close(); err != nil {
		logger.Error("failed to close storage", zap.Error(err))
	}
}

// buildOverrides turns parsed flag values into config overrides. Empty
// strings and negative rate values mean the flag was not given.
func buildOverrides(configFile, port, inventoryFile, storageDriver, sqlitePath string, rps float64, burst int) *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: configFile,
	}
	if port != "" {
		overrides.Port = &port
	}
	if inventoryFile != "" {
		overrides.InventoryFile = &inventoryFile
	}
	if storageDriver != "" {
		overrides.StorageDriver = &storageDriver
	}
	if sqlitePath != "" {
		overrides.SQLitePath = &sqlitePath
	}
	if rps >= 0 {
		overrides.RateLimitRPS = &rps
	}
	if burst >= 0 {
		overrides.RateLimitBurst = &burst
	}
	return overrides
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
