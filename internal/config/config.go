// Package config provides the engine's environment-variable-driven
// configuration.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/paiban/scheduler/pkg/cpmodel"
)

// Config is the process-level configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Solver   SolverConfig   `yaml:"solver"`
}

// AppConfig holds process identity and logging settings.
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig configures the optional Postgres-backed scenario and
// schedule store (internal/repository). The engine itself never opens
// a database connection; only a caller that wires in that store does.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	dsn := "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" sslmode=" + c.SSLMode
	return dsn
}

// APIConfig configures the HTTP adapter in cmd/server.
type APIConfig struct {
	RateLimit int           `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
	CORS      CORSConfig    `yaml:"cors"`
}

// CORSConfig configures cross-origin access to the HTTP adapter.
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// SolverConfig configures the default solve budget and objective
// weight overrides (spec §4.3 weight table, §9 ambient stack).
type SolverConfig struct {
	DefaultTimeLimit  time.Duration `yaml:"default_time_limit"`
	WeightCoverage    float64       `yaml:"weight_coverage"`
	WeightPreference  float64       `yaml:"weight_preference"`
	WeightConsecutive float64       `yaml:"weight_consecutive"`
	WeightFairness    float64       `yaml:"weight_fairness"`
	WeightOvertime    float64       `yaml:"weight_overtime"`
}

// Weights converts the configured overrides into cpmodel.Weights.
func (s SolverConfig) Weights() cpmodel.Weights {
	return cpmodel.Weights{
		Coverage:    s.WeightCoverage,
		Preference:  s.WeightPreference,
		Consecutive: s.WeightConsecutive,
		Fairness:    s.WeightFairness,
		Overtime:    s.WeightOvertime,
	}
}

// Load reads configuration from the environment, falling back to the
// engine's documented defaults.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "scheduler"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7012),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "scheduler"),
			User:            getEnv("DB_USER", "scheduler"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 100),
			Timeout:   getEnvDuration("API_TIMEOUT", 35*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
		},
		Solver: SolverConfig{
			DefaultTimeLimit:  getEnvDuration("SOLVER_TIME_LIMIT", 30*time.Second),
			WeightCoverage:    getEnvFloat("SOLVER_WEIGHT_COVERAGE", 1000),
			WeightPreference:  getEnvFloat("SOLVER_WEIGHT_PREFERENCE", 10),
			WeightConsecutive: getEnvFloat("SOLVER_WEIGHT_CONSECUTIVE", 5),
			WeightFairness:    getEnvFloat("SOLVER_WEIGHT_FAIRNESS", 10),
			WeightOvertime:    getEnvFloat("SOLVER_WEIGHT_OVERTIME", 20),
		},
	}

	return cfg, nil
}

// IsDevelopment reports whether the app is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction reports whether the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest reports whether the app is running under test.
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
