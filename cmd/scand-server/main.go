package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/scand-go/internal/core/domain"
	"github.com/yndnr/scand-go/internal/core/service"
	"github.com/yndnr/scand-go/internal/infra/buildinfo"
	"github.com/yndnr/scand-go/internal/infra/confloader"
	"github.com/yndnr/scand-go/internal/infra/shutdown"
	"github.com/yndnr/scand-go/internal/server/config"
	"github.com/yndnr/scand-go/internal/server/httpserver"
	"github.com/yndnr/scand-go/internal/server/localserver"
	"github.com/yndnr/scand-go/internal/server/wireserver"
	"github.com/yndnr/scand-go/internal/storage/memory"
	"github.com/yndnr/scand-go/internal/telemetry/logger"
	"github.com/yndnr/scand-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("scand-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	log.Info("starting scand-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	metrics := metric.NewRegistry()
	device := service.NewDeviceService(
		domain.NewBuffer(cfg.Device.MaxBufferBytes),
		memory.NewSessionStore(),
		metrics,
		log,
		service.Config{MaxOpenSessions: cfg.Device.MaxOpenSessions},
	)

	shutdownHandler := shutdown.NewHandler(30 * time.Second)
	ctx := context.Background()

	wireSrv := wireserver.New(&wireserver.Config{
		Addr:          cfg.Server.Wire.Addr,
		ReadTimeout:   cfg.Server.Wire.ReadTimeout,
		WriteTimeout:  cfg.Server.Wire.WriteTimeout,
		RatePerSecond: cfg.Server.Wire.RatePerSecond,
		RateBurst:     cfg.Server.Wire.RateBurst,
	}, device, log)
	if err := wireSrv.Start(ctx); err != nil {
		return fmt.Errorf("start wire server: %w", err)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down wire server")
		return wireSrv.Shutdown(ctx)
	})

	localSrv := localserver.New(
		cfg.Server.Local.Path,
		localserver.NewHandler(device, shutdownHandler.Trigger),
		log,
	)
	if err := localSrv.Start(ctx); err != nil {
		return fmt.Errorf("start local server: %w", err)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down local server")
		return localSrv.Shutdown(ctx)
	})

	if cfg.Server.HTTP.Enabled {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Device:  device,
			Metrics: metrics,
			Logger:  log,
		})
		httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router)
		if err := httpSrv.Start(); err != nil {
			return fmt.Errorf("start http server: %w", err)
		}
		log.Info("http server listening", "address", cfg.Server.HTTP.Addr)
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down http server")
			return httpSrv.Shutdown(ctx)
		})
	}

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, log)
		if err != nil {
			log.Warn("config watch unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// watchConfig re-applies the log level when the config file changes.
// Other settings require a restart.
func watchConfig(configFile string, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return nil, err
	}
	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
