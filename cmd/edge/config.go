package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"waitlist-edge/fx"
	"waitlist-edge/location/providers"

	"github.com/joho/godotenv"
)

type config struct {
	listenAddr string
	logLevel   string
	logFormat  string

	policiesFile       string
	identityHeaders    []string
	trustXFF           bool
	skipRemoteAddr     bool
	addHeaders         bool
	sweepEvery         time.Duration
	concurrencyMax     int
	concurrencyTimeout time.Duration

	redisAddr     string
	redisPassword string
	redisDB       int

	statsEnabled   bool
	statsPrefix    string
	statsTTL       time.Duration
	statsBucket    string
	statsTrackKeys bool

	upstreamRPS     float64
	upstreamBurst   int
	upstreamTimeout time.Duration

	fxURL             string
	fxTTL             time.Duration
	fxFetchTimeout    time.Duration
	fxSharedSnapshots bool
	fxSnapshotKey     string
	fxSnapshotTTL     time.Duration

	sensorEnabled     bool
	sensorTimeout     time.Duration
	sensorMaxAge      time.Duration
	reverseGeocodeURL string
	ipLookupURL       string
	ipTimeout         time.Duration
	geoipPath         string
	geoipTimeout      time.Duration
}

func readConfig() (config, error) {
	// .env é opcional; variáveis já definidas no ambiente têm prioridade
	_ = godotenv.Load()

	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.logFormat = getenvDefault("LOG_FORMAT", "json")

	cfg.policiesFile = os.Getenv("THROTTLE_POLICIES_FILE")
	cfg.identityHeaders = getenvListDefault("THROTTLE_IDENTITY_HEADERS", []string{"X-Session-Id", "X-User-Id"})
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.skipRemoteAddr = getenvBoolDefault("THROTTLE_SKIP_REMOTE_ADDR", false)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", true)
	cfg.sweepEvery = getenvDurationDefault("THROTTLE_SWEEP_EVERY", 5*time.Minute)
	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.redisAddr = os.Getenv("REDIS_ADDR")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	cfg.statsEnabled = getenvBoolDefault("THROTTLE_STATS_ENABLED", false)
	cfg.statsPrefix = getenvDefault("THROTTLE_STATS_PREFIX", "throttle:stats")
	cfg.statsTTL = getenvDurationDefault("THROTTLE_STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("THROTTLE_STATS_BUCKET", "minute")
	cfg.statsTrackKeys = getenvBoolDefault("THROTTLE_STATS_TRACK_KEYS", false)

	cfg.upstreamRPS = getenvFloatDefault("UPSTREAM_RPS", 2)
	cfg.upstreamBurst = getenvIntDefault("UPSTREAM_BURST", 5)
	cfg.upstreamTimeout = getenvDurationDefault("UPSTREAM_TIMEOUT", 5*time.Second)

	cfg.fxURL = getenvDefault("FX_RATES_URL", fx.DefaultRatesURL)
	cfg.fxTTL = getenvDurationDefault("FX_TTL", fx.DefaultTTL)
	cfg.fxFetchTimeout = getenvDurationDefault("FX_FETCH_TIMEOUT", fx.DefaultFetchTimeout)
	cfg.fxSharedSnapshots = getenvBoolDefault("FX_SHARED_SNAPSHOTS", false)
	cfg.fxSnapshotKey = getenvDefault("FX_SNAPSHOT_KEY", "fx:rates:usd")
	cfg.fxSnapshotTTL = getenvDurationDefault("FX_SNAPSHOT_TTL", 2*time.Hour)

	cfg.sensorEnabled = getenvBoolDefault("SENSOR_ENABLED", true)
	cfg.sensorTimeout = getenvDurationDefault("SENSOR_TIMEOUT", 10*time.Second)
	cfg.sensorMaxAge = getenvDurationDefault("SENSOR_MAX_AGE", 5*time.Minute)
	cfg.reverseGeocodeURL = getenvDefault("REVERSE_GEOCODE_URL", providers.DefaultReverseGeocodeURL)
	cfg.ipLookupURL = getenvDefault("IP_LOOKUP_URL", providers.DefaultIPLookupURL)
	cfg.ipTimeout = getenvDurationDefault("IP_LOOKUP_TIMEOUT", 5*time.Second)
	cfg.geoipPath = os.Getenv("GEOIP_DB_PATH")
	cfg.geoipTimeout = getenvDurationDefault("GEOIP_TIMEOUT", time.Second)

	if cfg.statsEnabled && cfg.statsBucket != "minute" && cfg.statsBucket != "none" {
		return config{}, errors.New("THROTTLE_STATS_BUCKET must be minute or none")
	}
	if cfg.fxSharedSnapshots && strings.TrimSpace(cfg.redisAddr) == "" {
		return config{}, errors.New("REDIS_ADDR is required when FX_SHARED_SNAPSHOTS=true")
	}
	if cfg.fxTTL <= 0 {
		return config{}, errors.New("FX_TTL must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.upstreamRPS > 0 && cfg.upstreamBurst <= 0 {
		return config{}, errors.New("UPSTREAM_BURST must be > 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvListDefault lê uma lista separada por vírgula; "-" desliga (lista vazia).
func getenvListDefault(k string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if v == "-" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
