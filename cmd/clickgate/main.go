package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"click-gateway/middleware/clickgate"
	"click-gateway/middleware/clickgate/application"
	"click-gateway/middleware/clickgate/domain"
	"click-gateway/middleware/clickgate/infra"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := newLogger(cfg.logLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.gateWarnings != nil {
		logger.Warn("invalid gate overrides ignored, defaults kept", zap.Error(cfg.gateWarnings))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.needsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		pingCancel()
		if err != nil {
			// fail-open: o gate segue funcionando, leituras viram CLEAN.
			logger.Warn("redis ping failed, flag reads will fail open", zap.String("addr", cfg.redisAddr), zap.Error(err))
		}
	}

	flags := newFlagStore(ctx, cfg, rdb)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	stats, err := newStatsStore(cfg, rdb, promReg)
	if err != nil {
		logger.Fatal("stats init failed", zap.Error(err))
	}

	registry := infra.NewRegistry(
		func(ctx context.Context, key domain.Key, overrides map[string]string) domain.Gate {
			gateCfg := cfg.gate
			if len(overrides) > 0 {
				var err error
				gateCfg, err = domain.ResolveConfig(cfg.gate, overrides)
				if err != nil {
					logger.Debug("page overrides ignored", zap.String("visitor", string(key)), zap.Error(err))
				}
			}
			return application.NewNavigationGate(ctx, gateCfg, flags, infra.TimerScheduler{},
				application.WithLogger(logger.With(zap.String("visitor", string(key)))))
		},
		infra.WithIdleTTL(cfg.visitorIdleTTL),
		infra.WithCleanupEvery(cfg.visitorCleanup),
		infra.WithLoadRate(cfg.loadRPS, cfg.loadBurst),
	)
	registry.StartJanitor(ctx)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	r.Mount("/", clickgate.NewHandler(clickgate.Options{
		Gates:              registry,
		Stats:              stats,
		KeyHeader:          cfg.visitorHeader,
		TrustXForwardedFor: cfg.trustXFF,
		SecureCookies:      cfg.secureCookies,
		AllowPageOverrides: cfg.allowPageOverrides,
		AddVerdictHeader:   cfg.addVerdictHeader,
		AllowedHosts:       cfg.allowedHosts,
		Logger:             logger,
	}))

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("clickgate listening", zap.String("addr", cfg.listenAddr))
	logger.Info("gate config",
		zap.Int("click_threshold", cfg.gate.ClickThreshold),
		zap.Duration("time_window", cfg.gate.TimeWindow),
		zap.Duration("persist_expiry", cfg.gate.PersistExpiry),
		zap.Duration("redirect_delay", cfg.gate.RedirectDelay),
		zap.String("redirect_url", cfg.gate.RedirectURL),
		zap.String("default_target_url", cfg.gate.DefaultTargetURL))
	logger.Info("stores",
		zap.String("flag_store", cfg.flagStore),
		zap.String("stats_backend", cfg.statsBackend),
		zap.Bool("page_overrides", cfg.allowPageOverrides),
		zap.Strings("allowed_target_hosts", cfg.allowedHosts),
		zap.Duration("visitor_cleanup_every", registry.CleanupEvery()),
		zap.Float64("load_rps", cfg.loadRPS),
		zap.Int("load_burst", cfg.loadBurst))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func newFlagStore(ctx context.Context, cfg config, rdb *redis.Client) domain.FlagStore {
	switch cfg.flagStore {
	case "redis":
		return infra.NewRedisFlagStore(rdb, infra.WithFlagPrefix(cfg.flagPrefix))
	case "memory":
		s := infra.NewMemoryFlagStore()
		go sweepEvery(ctx, cfg.visitorCleanup, func() { s.Sweep() })
		return s
	default:
		return clickgate.NewCookieFlagStore(cfg.secureCookies)
	}
}

func newStatsStore(cfg config, rdb *redis.Client, reg prometheus.Registerer) (domain.StatsStore, error) {
	switch cfg.statsBackend {
	case "redis":
		return infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		), nil
	case "memory":
		return infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.statsTrackKeys)), nil
	case "prometheus":
		return infra.NewPrometheusStatsStore(reg, "clickgate")
	default:
		return nil, nil
	}
}

func sweepEvery(ctx context.Context, every time.Duration, fn func()) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}
