package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverDuckDB   = "duckdb"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	AI            AIConfig
	Relational    RelationalConfig
	Document      DocumentConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigin   string
}

type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type RelationalConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

type DocumentConfig struct {
	URI          string
	Database     string
	Collection   string
	QueryTimeout time.Duration
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("WEALTHDESK_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid WEALTHDESK_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "WEALTHDESK_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "WEALTHDESK_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "WEALTHDESK_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "WEALTHDESK_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_FRONTEND_URL", &cfg.HTTP.CORSOrigin); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_AI_BASE_URL", &cfg.AI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_AI_MODEL", &cfg.AI.Model); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "WEALTHDESK_AI_TEMPERATURE", &cfg.AI.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "WEALTHDESK_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_RELATIONAL_DRIVER", &cfg.Relational.Driver); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_RELATIONAL_DSN", &cfg.Relational.DSN); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "WEALTHDESK_RELATIONAL_MAX_OPEN_CONNS", &cfg.Relational.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "WEALTHDESK_RELATIONAL_MAX_IDLE_CONNS", &cfg.Relational.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "WEALTHDESK_RELATIONAL_CONN_MAX_LIFETIME", &cfg.Relational.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "WEALTHDESK_RELATIONAL_QUERY_TIMEOUT", &cfg.Relational.QueryTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_MONGO_URI", &cfg.Document.URI); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_MONGO_DB", &cfg.Document.Database); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "WEALTHDESK_MONGO_COLLECTION", &cfg.Document.Collection); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "WEALTHDESK_MONGO_QUERY_TIMEOUT", &cfg.Document.QueryTimeout); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "WEALTHDESK_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "WEALTHDESK_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if !isValidDriver(cfg.Relational.Driver) {
		return Config{}, fmt.Errorf("invalid WEALTHDESK_RELATIONAL_DRIVER: %q", cfg.Relational.Driver)
	}
	if cfg.Relational.DSN == "" && cfg.Relational.Driver != DriverDuckDB {
		return Config{}, fmt.Errorf("relational dsn is required for driver %s", cfg.Relational.Driver)
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "wealthdesk-api"},
		HTTP: HTTPConfig{
			Address:      ":8000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 150 * time.Second,
			IdleTimeout:  60 * time.Second,
			CORSOrigin:   "http://localhost:5173",
		},
		AI: AIConfig{
			BaseURL:     "https://openrouter.ai/api",
			Model:       "deepseek/deepseek-r1-0528:free",
			Temperature: 0,
			Timeout:     30 * time.Second,
		},
		Relational: RelationalConfig{
			Driver:          DriverMySQL,
			DSN:             "root:@tcp(localhost:3306)/wealth?parseTime=true&charset=utf8mb4",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 10 * time.Minute,
			QueryTimeout:    30 * time.Second,
		},
		Document: DocumentConfig{
			URI:          "mongodb://localhost:27017",
			Database:     "wealth_db",
			Collection:   "clients",
			QueryTimeout: 30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18000"
		cfg.Observability.LogLevel = slog.LevelWarn
		cfg.Relational.Driver = DriverDuckDB
		cfg.Relational.DSN = ""
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.HTTP.CORSOrigin = ""
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func isValidDriver(driver string) bool {
	switch driver {
	case DriverMySQL, DriverPostgres, DriverDuckDB:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
