package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paiban/scheduler/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "scheduler", cfg.App.Name)
	require.Equal(t, "development", cfg.App.Env)
	require.Equal(t, 7012, cfg.App.Port)
	require.Equal(t, "info", cfg.App.LogLevel)

	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, 25, cfg.Database.MaxOpenConns)
	require.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)

	require.Equal(t, 30*time.Second, cfg.Solver.DefaultTimeLimit)
	require.Equal(t, 1000.0, cfg.Solver.WeightCoverage)

	require.True(t, cfg.IsDevelopment())
	require.False(t, cfg.IsProduction())
	require.False(t, cfg.IsTest())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_NAME", "scheduler-staging")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("SOLVER_TIME_LIMIT", "45s")
	t.Setenv("SOLVER_WEIGHT_FAIRNESS", "15.5")
	t.Setenv("API_CORS_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "scheduler-staging", cfg.App.Name)
	require.Equal(t, 9090, cfg.App.Port)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, 50, cfg.Database.MaxOpenConns)
	require.Equal(t, 45*time.Second, cfg.Solver.DefaultTimeLimit)
	require.Equal(t, 15.5, cfg.Solver.WeightFairness)
	require.False(t, cfg.API.CORS.Enabled)

	require.True(t, cfg.IsProduction())
	require.False(t, cfg.IsDevelopment())
}

func TestLoad_MalformedEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-number")
	t.Setenv("SOLVER_TIME_LIMIT", "not-a-duration")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 7012, cfg.App.Port)
	require.Equal(t, 30*time.Second, cfg.Solver.DefaultTimeLimit)
}

func TestSolverConfig_Weights(t *testing.T) {
	sc := config.SolverConfig{
		WeightCoverage:    100,
		WeightPreference:  20,
		WeightConsecutive: 15,
		WeightFairness:    25,
		WeightOvertime:    30,
	}
	w := sc.Weights()
	require.Equal(t, 100.0, w.Coverage)
	require.Equal(t, 20.0, w.Preference)
	require.Equal(t, 15.0, w.Consecutive)
	require.Equal(t, 25.0, w.Fairness)
	require.Equal(t, 30.0, w.Overtime)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dbCfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "scheduler",
		User:     "scheduler",
		Password: "secret",
		SSLMode:  "disable",
	}
	dsn := dbCfg.DSN()
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "dbname=scheduler")
	require.Contains(t, dsn, "sslmode=disable")
}

func TestConfig_IsTest(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	require.True(t, cfg.IsTest())
	require.False(t, cfg.IsProduction())
	require.False(t, cfg.IsDevelopment())
}
