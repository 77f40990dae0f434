package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/clubcms/standings-engine/internal/platform/logging"
)

// Config stores runtime configuration for the engine.
type Config struct {
	AppEnv                  string        `validate:"required,oneof=dev stage prod"`
	ServiceName             string        `validate:"required"`
	ServiceVersion          string        `validate:"required"`
	DBURL                   string        `validate:"omitempty,uri"`
	DBDisablePreparedBinary bool
	CacheEnabled            bool
	CacheTTL                time.Duration `validate:"gt=0"`
	QueueWorkers            int           `validate:"min=1"`
	QueueMaxAttempts        int           `validate:"min=1"`
	QueueRetryBase          time.Duration `validate:"gt=0"`
	QueueRetryMax           time.Duration `validate:"gtefield=QueueRetryBase"`
	QueueRunTimeout         time.Duration `validate:"gt=0"`
	CheckDualRepresentation bool
	CheckOrphanedEntries    bool
	CheckDuplicateSubjects  bool
	CheckSelfPlay           bool
	PprofEnabled            bool
	PprofAddr               string
	UptraceEnabled          bool
	UptraceDSN              string
	PyroscopeEnabled        bool
	PyroscopeServerAddress  string
	PyroscopeAppName        string
	PyroscopeAuthToken      string
	PyroscopeUploadRate     time.Duration `validate:"gt=0"`
	ShutdownTimeout         time.Duration `validate:"gt=0"`
	LogLevel                logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}

	queueWorkers, err := getEnvAsInt("QUEUE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_WORKERS: %w", err)
	}
	queueMaxAttempts, err := getEnvAsInt("QUEUE_MAX_ATTEMPTS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_MAX_ATTEMPTS: %w", err)
	}
	queueRetryBase, err := time.ParseDuration(getEnv("QUEUE_RETRY_BASE", "500ms"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_RETRY_BASE: %w", err)
	}
	queueRetryMax, err := time.ParseDuration(getEnv("QUEUE_RETRY_MAX", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_RETRY_MAX: %w", err)
	}
	queueRunTimeout, err := time.ParseDuration(getEnv("QUEUE_RUN_TIMEOUT", "2m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QUEUE_RUN_TIMEOUT: %w", err)
	}

	checkDualRepresentation, err := strconv.ParseBool(getEnv("CHECK_DUAL_REPRESENTATION", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECK_DUAL_REPRESENTATION: %w", err)
	}
	checkOrphanedEntries, err := strconv.ParseBool(getEnv("CHECK_ORPHANED_ENTRIES", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECK_ORPHANED_ENTRIES: %w", err)
	}
	checkDuplicateSubjects, err := strconv.ParseBool(getEnv("CHECK_DUPLICATE_SUBJECTS", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECK_DUPLICATE_SUBJECTS: %w", err)
	}
	checkSelfPlay, err := strconv.ParseBool(getEnv("CHECK_SELF_PLAY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECK_SELF_PLAY: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
	}

	serviceName := getEnv("SERVICE_NAME", "standings-engine")

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             serviceName,
		ServiceVersion:          getEnv("SERVICE_VERSION", "dev"),
		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		CacheEnabled:            cacheEnabled,
		CacheTTL:                cacheTTL,
		QueueWorkers:            queueWorkers,
		QueueMaxAttempts:        queueMaxAttempts,
		QueueRetryBase:          queueRetryBase,
		QueueRetryMax:           queueRetryMax,
		QueueRunTimeout:         queueRunTimeout,
		CheckDualRepresentation: checkDualRepresentation,
		CheckOrphanedEntries:    checkOrphanedEntries,
		CheckDuplicateSubjects:  checkDuplicateSubjects,
		CheckSelfPlay:           checkSelfPlay,
		PprofEnabled:            pprofEnabled,
		PprofAddr:               pprofAddr,
		UptraceEnabled:          uptraceEnabled,
		UptraceDSN:              uptraceDSN,
		PyroscopeEnabled:        pyroscopeEnabled,
		PyroscopeServerAddress:  pyroscopeServerAddress,
		PyroscopeAppName:        getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:      strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:     pyroscopeUploadRate,
		ShutdownTimeout:         shutdownTimeout,
		LogLevel:                parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
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
