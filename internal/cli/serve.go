package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/arguelab/sparr/internal/config"
	"github.com/arguelab/sparr/internal/logger"
	"github.com/arguelab/sparr/internal/observability"
	"github.com/arguelab/sparr/internal/tracing"
	"github.com/arguelab/sparr/pkg/debate"
	"github.com/arguelab/sparr/pkg/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the debate engine as a long-lived process",
	Long: `Serve keeps the debate engine resident: the idle-session reaper runs on
its schedule, the transcript archive receives ended debates, and the ops
listener exposes /metrics and /healthz. Config file changes to the log
level are applied live.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	if err := tracing.InitOpenTelemetry("sparr"); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracing, continuing without it")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.ShutdownOpenTelemetry(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down tracing")
		}
	}()

	llm, err := provider.New(provider.Profile{
		Provider: cfg.Provider.Provider,
		APIKey:   cfg.Provider.APIKey,
		Model:    cfg.Provider.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	manager := debate.NewManager(debate.NewMemoryStore(), llm, debate.Config{
		CompactionThreshold: cfg.Debate.CompactionThreshold,
		RetainTurns:         cfg.Debate.RetainTurns,
		ProviderTimeout:     time.Duration(cfg.Debate.ProviderTimeout) * time.Second,
		Temperature:         cfg.Debate.Temperature,
		MaxReplyTokens:      cfg.Debate.MaxReplyTokens,
		SummaryWordBudget:   cfg.Debate.SummaryWordBudget,
	})

	if cfg.Archive.Enabled {
		archiver, err := debate.NewSQLiteArchiver(cfg.Archive.Path)
		if err != nil {
			return fmt.Errorf("failed to open transcript archive: %w", err)
		}
		defer archiver.Close()
		manager.SetArchiver(archiver)
		log.Info().Str("path", cfg.Archive.Path).Msg("Transcript archive enabled")
	}

	if cfg.Reaper.Enabled {
		reaper := debate.NewReaper(manager, cfg.Reaper.Schedule,
			time.Duration(cfg.Reaper.MaxIdle)*time.Minute)
		if err := reaper.Start(); err != nil {
			return fmt.Errorf("failed to start reaper: %w", err)
		}
		defer reaper.Stop()
	}

	watcher, err := config.NewWatcher(config.NewLoader(cfgFile).GetConfigPath(), func(updated *config.Config) {
		if err := logger.SetLevel(updated.Logging.Level); err != nil {
			log.Warn().Err(err).Msg("Ignoring invalid log level from reloaded config")
		}
	})
	if err == nil {
		if err := watcher.Start(); err != nil {
			log.Warn().Err(err).Msg("Config watcher unavailable, live reload disabled")
		} else {
			defer watcher.Stop()
		}
	}

	opsServer := startOpsListener(cfg.Ops)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Ops listener shutdown failed")
		}
	}()

	log.Info().
		Str("version", version).
		Str("provider", llm.Name()).
		Msg("Sparr engine running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	return nil
}

// startOpsListener serves Prometheus metrics and a liveness probe. Failures
// are logged, not fatal: the engine is useful without the ops surface.
func startOpsListener(cfg config.OpsConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, version)
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Ops listener started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("Ops listener failed")
		}
	}()

	return server
}
