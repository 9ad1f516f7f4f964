// Command scanner is the CLI entry point for the EtherNet/IP+CIP
// scanner: it loads configuration, builds the logger and metrics
// registry, and starts the optional HTTP surface. With -discover it runs
// one discovery pass, prints the results as JSON and exits; otherwise it
// serves the HTTP surface (if any) until interrupted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/IamMikeHelsel/enip-scanner/internal/config"
	"github.com/IamMikeHelsel/enip-scanner/internal/httpapi"
	"github.com/IamMikeHelsel/enip-scanner/internal/logging"
	"github.com/IamMikeHelsel/enip-scanner/internal/metrics"
	"github.com/IamMikeHelsel/enip-scanner/internal/scanner"
)

func main() {
	var (
		configFile = flag.String("config", "scanner.yaml", "Path to configuration file")
		logLevel   = flag.String("log-level", "", "Log level override (debug, info, warn, error)")
		enableHTTP = flag.Bool("http", false, "Enable the embedded HTTP surface regardless of config")
		discover   = flag.Bool("discover", false, "Run a discovery pass and print results as JSON")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *enableHTTP {
		cfg.HTTP.Enabled = true
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync() //nolint:errcheck

	var mx *metrics.Registry
	var promReg *prometheus.Registry
	if cfg.Metrics.Enabled {
		mx, promReg = metrics.New()
	}

	s := scanner.New(cfg, logger, mx)
	s.Init()
	defer s.Shutdown()

	logger.Info("scanner initialized",
		zap.Bool("enable_tags", cfg.EnableTags),
		zap.Bool("enable_motoman", cfg.EnableMotoman),
		zap.Bool("rs022_instance_direct", cfg.RS022InstanceDirect),
	)

	var surface *httpapi.Server
	switch {
	case cfg.HTTP.Enabled:
		surface = httpapi.New(cfg.HTTP.ListenAddr, promReg, s, logger)
		logger.Info("http surface listening", zap.String("addr", cfg.HTTP.ListenAddr))
	case cfg.Metrics.Enabled:
		// Metrics without the rest of the HTTP surface gets its own
		// listener on the dedicated metrics address.
		surface = httpapi.New(cfg.Metrics.ListenAddr, promReg, nil, logger)
		logger.Info("metrics listening", zap.String("addr", cfg.Metrics.ListenAddr))
	}
	if surface != nil {
		go func() {
			if err := surface.ListenAndServe(); err != nil {
				logger.Warn("http surface stopped", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	if *discover {
		identities, err := s.Discover()
		if err != nil {
			logger.Error("discovery failed", zap.Error(err))
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(identities, "", "  ")
		fmt.Println(string(out))
		return
	}

	if surface != nil {
		<-ctx.Done()
		surface.Close() //nolint:errcheck
	}
	logger.Info("scanner shutdown complete")
}
