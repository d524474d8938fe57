package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"click-gateway/middleware/clickgate/domain"

	"gopkg.in/yaml.v3"
)

type config struct {
	listenAddr string

	gate domain.GateConfig
	// gateWarnings agrega overrides descartados (só para log).
	gateWarnings error

	flagStore     string
	flagPrefix    string
	secureCookies bool

	redisAddr     string
	redisPassword string
	redisDB       int

	statsBackend   string
	statsPrefix    string
	statsTTL       time.Duration
	statsBucket    string
	statsTrackKeys bool

	visitorHeader      string
	trustXFF           bool
	visitorIdleTTL     time.Duration
	visitorCleanup     time.Duration
	loadRPS            float64
	loadBurst          int
	allowPageOverrides bool
	addVerdictHeader   bool
	allowedHosts       []string

	logLevel string
}

// gateEnv mapeia variáveis de ambiente para os nomes de override do gate.
var gateEnv = map[string]string{
	"CLICK_THRESHOLD":       domain.OptClickThreshold,
	"TIME_WINDOW_MS":        domain.OptTimeWindow,
	"COOKIE_EXPIRY_SECONDS": domain.OptCookieExpiry,
	"REDIRECT_DELAY_MS":     domain.OptRedirectDelay,
	"REDIRECT_URL":          domain.OptRedirectURL,
	"DEFAULT_TARGET_URL":    domain.OptDefaultTargetURL,
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")

	// padrões <- arquivo YAML <- env
	gate := domain.DefaultGateConfig()
	var warnings []error
	if path := strings.TrimSpace(os.Getenv("GATE_CONFIG_FILE")); path != "" {
		fileOverrides, err := readGateFile(path)
		if err != nil {
			return config{}, err
		}
		var werr error
		gate, werr = domain.ResolveConfig(gate, fileOverrides)
		warnings = append(warnings, werr)
	}
	envOverrides := make(map[string]string, len(gateEnv))
	for env, opt := range gateEnv {
		if v := os.Getenv(env); v != "" {
			envOverrides[opt] = v
		}
	}
	gate, werr := domain.ResolveConfig(gate, envOverrides)
	if err := gate.Validate(); err != nil {
		return config{}, fmt.Errorf("gate config: %w", err)
	}
	cfg.gate = gate
	cfg.gateWarnings = errors.Join(append(warnings, werr)...)

	cfg.flagStore = strings.ToLower(getenvDefault("FLAG_STORE", "cookie"))
	cfg.flagPrefix = getenvDefault("FLAG_PREFIX", "clickgate:flag")
	cfg.secureCookies = getenvBoolDefault("SECURE_COOKIES", false)

	cfg.redisAddr = os.Getenv("REDIS_ADDR")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	cfg.statsBackend = strings.ToLower(getenvDefault("STATS_BACKEND", "prometheus"))
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "clickgate:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = strings.ToLower(getenvDefault("STATS_BUCKET", "minute"))
	cfg.statsTrackKeys = getenvBoolDefault("STATS_TRACK_KEYS", false)

	cfg.visitorHeader = os.Getenv("VISITOR_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.visitorIdleTTL = getenvDurationDefault("VISITOR_IDLE_TTL", 30*time.Minute)
	cfg.visitorCleanup = getenvDurationDefault("VISITOR_CLEANUP_EVERY", 2*time.Minute)
	cfg.loadRPS = getenvFloatDefault("LOAD_RPS", 1)
	cfg.loadBurst = getenvIntDefault("LOAD_BURST", 5)
	cfg.allowPageOverrides = getenvBoolDefault("ALLOW_PAGE_OVERRIDES", true)
	cfg.addVerdictHeader = getenvBoolDefault("ADD_VERDICT_HEADER", false)
	cfg.allowedHosts = getenvListDefault("ALLOWED_TARGET_HOSTS", nil)

	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")

	switch cfg.flagStore {
	case "cookie", "memory":
	case "redis":
		if strings.TrimSpace(cfg.redisAddr) == "" {
			return config{}, errors.New("REDIS_ADDR is required when FLAG_STORE=redis")
		}
	default:
		return config{}, fmt.Errorf("FLAG_STORE must be cookie, redis or memory, got %q", cfg.flagStore)
	}

	switch cfg.statsBackend {
	case "none", "memory", "prometheus":
	case "redis":
		if strings.TrimSpace(cfg.redisAddr) == "" {
			return config{}, errors.New("REDIS_ADDR is required when STATS_BACKEND=redis")
		}
	default:
		return config{}, fmt.Errorf("STATS_BACKEND must be none, memory, redis or prometheus, got %q", cfg.statsBackend)
	}

	switch cfg.statsBucket {
	case "minute", "none":
	default:
		return config{}, fmt.Errorf("STATS_BUCKET must be minute or none, got %q", cfg.statsBucket)
	}

	if cfg.loadBurst <= 0 {
		return config{}, errors.New("LOAD_BURST must be > 0")
	}
	return cfg, nil
}

func (c config) needsRedis() bool {
	return c.flagStore == "redis" || c.statsBackend == "redis"
}

// readGateFile lê um YAML plano com as mesmas chaves dos overrides da página:
//
//	clickThreshold: 7
//	timeWindow: 10000
//	redirectUrl: https://example.com/blocked
func readGateFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read GATE_CONFIG_FILE: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse GATE_CONFIG_FILE: %w", err)
	}

	out := make(map[string]string, len(doc))
	for k, v := range doc {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvListDefault(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
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
