package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"waitlist-edge/api"
	"waitlist-edge/fx"
	fxstore "waitlist-edge/fx/store"
	"waitlist-edge/localization"
	"waitlist-edge/location"
	"waitlist-edge/location/providers"
	"waitlist-edge/metrics"
	"waitlist-edge/middleware/throttle"
	"waitlist-edge/middleware/throttle/application"
	"waitlist-edge/middleware/throttle/domain"
	"waitlist-edge/middleware/throttle/infra"
	"waitlist-edge/upstream"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	m := metrics.New(nil)

	// ---- throttle
	policies, err := infra.LoadPolicies(cfg.policiesFile)
	if err != nil {
		log.Fatalf("throttle policies error: %v", err)
	}
	store := infra.NewMemoryStore(infra.WithCleanupEvery(cfg.sweepEvery))
	guard := application.NewGuard(store, application.WithLogger(logger))
	for action, p := range policies {
		if err := guard.Configure(action, p); err != nil {
			log.Fatalf("throttle policy error: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis ping error: %v", err)
		}
	}

	var stats domain.StatsStore
	if cfg.statsEnabled {
		if rdb != nil {
			stats = infra.NewRedisStatsStore(
				rdb,
				infra.WithStatsPrefix(cfg.statsPrefix),
				infra.WithStatsTTL(cfg.statsTTL),
				infra.WithStatsBucket(cfg.statsBucket),
				infra.WithStatsTrackKeys(cfg.statsTrackKeys),
			)
		} else {
			stats = infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.statsTrackKeys))
		}
	}

	// ---- saída para a rede (geocode, IP, câmbio)
	client := upstream.New(
		upstream.WithTimeout(cfg.upstreamTimeout),
		upstream.WithHostRate(cfg.upstreamRPS, cfg.upstreamBurst),
		upstream.WithLogger(logger),
	)

	// ---- localização
	// networkSteps: IP, GeoIP (opcional) e padrão; o lookup por IP usa só estes
	networkSteps := []location.Step{{
		Provider: &providers.IPLookup{Client: client, BaseURL: cfg.ipLookupURL},
		Timeout:  cfg.ipTimeout,
	}}
	if cfg.geoipPath != "" {
		geo, closeGeo, err := providers.OpenGeoIP(cfg.geoipPath)
		if err != nil {
			log.Fatalf("geoip open error: %v", err)
		}
		defer closeGeo()
		networkSteps = append(networkSteps, location.Step{Provider: geo, Timeout: cfg.geoipTimeout})
	}
	networkSteps = append(networkSteps, location.Step{Provider: providers.Default{}})

	var steps []location.Step
	var sensor *providers.ReportedSensor
	if cfg.sensorEnabled {
		sensor = providers.NewReportedSensor()
		steps = append(steps, location.Step{
			Provider: &providers.SensorProvider{
				Sensor:   sensor,
				Geocoder: &providers.HTTPGeocoder{Client: client, BaseURL: cfg.reverseGeocodeURL},
				MaxAge:   cfg.sensorMaxAge,
			},
			Timeout: cfg.sensorTimeout,
		})
	}
	steps = append(steps, networkSteps...)

	chain := location.NewChain(steps...)
	resolver := location.NewResolver(chain, location.WithLogger(logger), location.WithObserver(m))
	ipLocator := location.NewResolver(location.NewChain(networkSteps...), location.WithLogger(logger), location.WithObserver(m))

	// ---- câmbio
	fxOpts := []fx.Option{
		fx.WithTTL(cfg.fxTTL),
		fx.WithFetchTimeout(cfg.fxFetchTimeout),
		fx.WithLogger(logger),
		fx.WithObserver(m),
	}
	if cfg.fxSharedSnapshots && rdb != nil {
		fxOpts = append(fxOpts, fx.WithSnapshotStore(fxstore.NewRedisSnapshotStore(
			rdb,
			fxstore.WithKey(cfg.fxSnapshotKey),
			fxstore.WithTTL(cfg.fxSnapshotTTL),
		)))
	}
	rates := fx.NewCache(&fx.HTTPFetcher{Client: client, URL: cfg.fxURL}, fxOpts...)

	facade := localization.New(resolver, rates, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx, func(removed int) {
		m.ObserveSweep(removed)
		if removed > 0 {
			logger.Debug("throttle: janitor sweep", "removed", removed, "remaining", store.Len())
		}
	})

	h := api.NewRouter(api.Deps{
		Guard: guard,
		Throttle: throttle.Options{
			Stats: stats,
			Keys: throttle.KeyOptions{
				IdentityHeaders:    cfg.identityHeaders,
				TrustXForwardedFor: cfg.trustXFF,
				SkipRemoteAddr:     cfg.skipRemoteAddr,
			},
			Logger:              logger,
			Observer:            m,
			AddRateLimitHeaders: cfg.addHeaders,
		},
		Resolver:           resolver,
		IPLocator:          ipLocator,
		Sensor:             sensor,
		Rates:              rates,
		Facade:             facade,
		Metrics:            m.Handler(),
		ConcurrencyMax:     cfg.concurrencyMax,
		ConcurrencyTimeout: cfg.concurrencyTimeout,
		OnReject:           m.RejectFunc,
		Logger:             logger,
	})

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
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

	logger.Info("edge listening", "addr", cfg.listenAddr)
	logger.Info("throttle", "actions", len(policies), "policies_file", cfg.policiesFile, "identity_headers", cfg.identityHeaders, "trust_xff", cfg.trustXFF, "sweep_every", cfg.sweepEvery)
	logger.Info("throttle stats", "enabled", cfg.statsEnabled, "redis", rdb != nil, "bucket", cfg.statsBucket, "track_keys", cfg.statsTrackKeys)
	logger.Info("location", "providers", chain.Providers(), "sensor_timeout", cfg.sensorTimeout, "ip_timeout", cfg.ipTimeout)
	logger.Info("fx", "url", cfg.fxURL, "ttl", cfg.fxTTL, "shared_snapshots", cfg.fxSharedSnapshots)
	logger.Info("concurrency", "max", cfg.concurrencyMax, "acquire_timeout", cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func newLogger(cfg config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.logFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
