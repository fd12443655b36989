package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sportsdesk/cricketwire/internal/platform/logging"
	"github.com/sportsdesk/cricketwire/internal/platform/resilience"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// ProviderConfig is the shared per-source knob set.
type ProviderConfig struct {
	Enabled    bool
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Circuit    resilience.CircuitBreakerConfig
}

// Config stores runtime configuration for the collector.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	OutputDir string
	DBEnabled bool
	DBURL     string

	MaxWorkers        int
	TargetDate        string
	FixtureName       string
	TournamentMarkers []string
	WarmupMarkers     []string
	CompletedOnly     bool

	CricAPI         ProviderConfig
	CricAPIKey      string
	ESPN            ProviderConfig
	ESPNSeriesIDs   []string
	ESPNScheduleTTL time.Duration

	ScraperEnabled     bool
	ScraperBaseURL     string
	ScraperResultsPath string
	ScraperWorkers     int

	SportMonks          ProviderConfig
	SportMonksToken     string
	SportMonksLeagueIDs []string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	maxWorkers, err := getEnvAsInt("MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_WORKERS: %w", err)
	}
	if maxWorkers < 1 || maxWorkers > 64 {
		return Config{}, fmt.Errorf("MAX_WORKERS must be between 1 and 64")
	}

	completedOnly, err := strconv.ParseBool(getEnv("COMPLETED_ONLY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse COMPLETED_ONLY: %w", err)
	}

	dbEnabled, err := strconv.ParseBool(getEnv("DB_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_ENABLED: %w", err)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if dbEnabled && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when DB_ENABLED=true")
	}

	cricAPI, err := loadProvider("CRICAPI", "https://api.cricapi.com")
	if err != nil {
		return Config{}, err
	}
	cricAPIKey := strings.TrimSpace(getEnv("CRICAPI_KEY", ""))
	if cricAPI.Enabled && cricAPIKey == "" {
		return Config{}, fmt.Errorf("CRICAPI_KEY is required when CRICAPI_ENABLED=true")
	}

	espn, err := loadProvider("ESPN", "https://hs-consumer-api.espncricinfo.com")
	if err != nil {
		return Config{}, err
	}
	espnSeriesIDs := splitCSV(getEnv("ESPN_SERIES_IDS", ""))
	if espn.Enabled && len(espnSeriesIDs) == 0 {
		return Config{}, fmt.Errorf("ESPN_SERIES_IDS is required when ESPN_ENABLED=true")
	}
	espnScheduleTTL, err := time.ParseDuration(getEnv("ESPN_SCHEDULE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_SCHEDULE_TTL: %w", err)
	}
	if espnScheduleTTL <= 0 {
		return Config{}, fmt.Errorf("ESPN_SCHEDULE_TTL must be > 0")
	}

	scraperEnabled, err := strconv.ParseBool(getEnv("ESPN_SCRAPER_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_SCRAPER_ENABLED: %w", err)
	}
	scraperWorkers, err := getEnvAsInt("ESPN_SCRAPER_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_SCRAPER_WORKERS: %w", err)
	}
	if scraperWorkers < 1 {
		return Config{}, fmt.Errorf("ESPN_SCRAPER_WORKERS must be >= 1")
	}

	sportMonks, err := loadProvider("SPORTMONKS", "https://cricket.sportmonks.com/api/v2.0")
	if err != nil {
		return Config{}, err
	}
	sportMonksToken := strings.TrimSpace(getEnv("SPORTMONKS_TOKEN", ""))
	if sportMonks.Enabled && sportMonksToken == "" {
		return Config{}, fmt.Errorf("SPORTMONKS_TOKEN is required when SPORTMONKS_ENABLED=true")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "cricketwire-collector"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		OutputDir: getEnv("OUTPUT_DIR", "./data"),
		DBEnabled: dbEnabled,
		DBURL:     dbURL,

		MaxWorkers:        maxWorkers,
		TargetDate:        strings.TrimSpace(getEnv("TARGET_DATE", "")),
		FixtureName:       strings.TrimSpace(getEnv("FIXTURE_NAME", "")),
		TournamentMarkers: splitCSV(getEnv("TOURNAMENT_MARKERS", "")),
		WarmupMarkers:     splitCSV(getEnv("WARMUP_MARKERS", "warm-up,practice")),
		CompletedOnly:     completedOnly,

		CricAPI:         cricAPI,
		CricAPIKey:      cricAPIKey,
		ESPN:            espn,
		ESPNSeriesIDs:   espnSeriesIDs,
		ESPNScheduleTTL: espnScheduleTTL,

		ScraperEnabled:     scraperEnabled,
		ScraperBaseURL:     getEnv("ESPN_SCRAPER_BASE_URL", "https://www.espncricinfo.com"),
		ScraperResultsPath: getEnv("ESPN_SCRAPER_RESULTS_PATH", "/live-cricket-match-results"),
		ScraperWorkers:     scraperWorkers,

		SportMonks:          sportMonks,
		SportMonksToken:     sportMonksToken,
		SportMonksLeagueIDs: splitCSV(getEnv("SPORTMONKS_LEAGUE_IDS", "")),
	}

	if !cfg.CricAPI.Enabled && !cfg.ESPN.Enabled && !cfg.ScraperEnabled && !cfg.SportMonks.Enabled {
		return Config{}, fmt.Errorf("at least one provider must be enabled")
	}

	return cfg, nil
}

func loadProvider(prefix, defaultBaseURL string) (ProviderConfig, error) {
	enabled, err := strconv.ParseBool(getEnv(prefix+"_ENABLED", "false"))
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_ENABLED: %w", prefix, err)
	}

	timeout, err := time.ParseDuration(getEnv(prefix+"_TIMEOUT", "20s"))
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_TIMEOUT: %w", prefix, err)
	}
	if timeout <= 0 {
		return ProviderConfig{}, fmt.Errorf("%s_TIMEOUT must be > 0", prefix)
	}

	maxRetries, err := getEnvAsInt(prefix+"_MAX_RETRIES", 1)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_MAX_RETRIES: %w", prefix, err)
	}
	if maxRetries < 0 {
		return ProviderConfig{}, fmt.Errorf("%s_MAX_RETRIES must be >= 0", prefix)
	}

	circuitEnabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	failureCount, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if failureCount < 1 {
		return ProviderConfig{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := time.ParseDuration(getEnv(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_CIRCUIT_OPEN_TIMEOUT: %w", prefix, err)
	}
	if openTimeout <= 0 {
		return ProviderConfig{}, fmt.Errorf("%s_CIRCUIT_OPEN_TIMEOUT must be > 0", prefix)
	}
	halfOpenMaxReq, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if halfOpenMaxReq < 1 {
		return ProviderConfig{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return ProviderConfig{
		Enabled:    enabled,
		BaseURL:    strings.TrimSpace(getEnv(prefix+"_BASE_URL", defaultBaseURL)),
		Timeout:    timeout,
		MaxRetries: maxRetries,
		Circuit: resilience.CircuitBreakerConfig{
			Enabled:          circuitEnabled,
			FailureThreshold: failureCount,
			OpenTimeout:      openTimeout,
			HalfOpenMaxReq:   halfOpenMaxReq,
		},
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
