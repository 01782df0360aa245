package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nflstats/ingestion/internal/cache"
	"nflstats/ingestion/internal/catalog"
	"nflstats/ingestion/internal/client"
	"nflstats/ingestion/internal/config"
	"nflstats/ingestion/internal/ingest"
	"nflstats/ingestion/internal/metrics"
	"nflstats/ingestion/internal/repository"
	"nflstats/ingestion/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting NFL stats ingestion worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	feeds, err := config.LoadFeeds(cfg.FeedsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.FeedsFile).Msg("Failed to load feed catalog")
	}
	log.Info().Strs("families", feeds.Names()).Msg("Feed catalog loaded")

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
		Schema:   cfg.DatabaseSchema,
		MaxConns: cfg.DatabaseMaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, catalog.TableDefs()); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate schema")
		}
	}

	opts := []ingest.Option{ingest.WithWorkers(cfg.Workers())}
	var runs runHistory

	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			LockTTL:  cfg.RunLockTTL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without run locks")
		} else {
			defer redisCache.Close()
			opts = append(opts, ingest.WithTracker(redisCache))
			runs = redisCache
			log.Info().Msg("Redis run tracking connected")
		}
	}

	feedClient := client.NewClient(client.Options{
		Timeout:     cfg.FetchTimeout,
		MaxRetries:  cfg.FetchRetries,
		Parallel:    cfg.FetchParallel,
		DownloadDir: cfg.DownloadDir,
	})

	runner, err := ingest.BuildRunner(feeds, db, feedClient, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build feed families")
	}

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort, db, runs, feeds.Names())
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	sched := scheduler.NewScheduler(cfg, runner, db)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	if cfg.InitialSyncEnabled {
		log.Info().Msg("Running initial ingestion...")
		if err := sched.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Initial ingestion finished with errors, continuing anyway...")
		} else {
			log.Info().Msg("Initial ingestion completed successfully")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// runHistory reads the last recorded run of a family
type runHistory interface {
	LastRun(ctx context.Context, family string) (map[string]string, error)
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int, db *repository.Database, runs runHistory, families []string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","error":%q}`, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Last run per family, available when Redis run tracking is on
	mux.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
		if runs == nil {
			http.Error(w, "run tracking disabled", http.StatusNotFound)
			return
		}
		out := make(map[string]map[string]string, len(families))
		for _, f := range families {
			last, err := runs.LastRun(r.Context(), f)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			if last != nil {
				out[f] = last
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
