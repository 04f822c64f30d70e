// Package logger provides the engine's structured logging setup: a
// lazily-initialized zerolog singleton plus a SolveLogger that scopes
// fields to one solve.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level aliases zerolog's level type so callers don't import zerolog
// directly just to configure it.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config configures the global logger.
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig returns the logger's documented defaults.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init configures the global logger. Only the first call in a
// process takes effect.
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the global logger, initializing it with DefaultConfig
// if no one has called Init yet.
func Get() *zerolog.Logger {
	Init(DefaultConfig())
	return &logger
}

// WithContext returns a logger carrying the request id found on ctx,
// if any.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}
	return &l
}

type requestIDKey struct{}

// WithRequestID attaches a request id to ctx for WithContext to pick
// up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func Debug() *zerolog.Event { return Get().Debug() }
func Info() *zerolog.Event  { return Get().Info() }
func Warn() *zerolog.Event  { return Get().Warn() }
func Error() *zerolog.Event { return Get().Error() }
func Fatal() *zerolog.Event { return Get().Fatal() }

// WithError returns an error-level event carrying err.
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField returns a logger with one extra structured field.
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields returns a logger with several extra structured fields.
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// SolveLogger scopes solve-lifecycle events under component=scheduler
// (spec §4.5, §9 ambient stack).
type SolveLogger struct {
	base *zerolog.Logger
}

// NewSolveLogger creates a solve-scoped logger.
func NewSolveLogger() *SolveLogger {
	l := Get().With().Str("component", "scheduler").Logger()
	return &SolveLogger{base: &l}
}

// SolveStart logs the start of one solve.
func (l *SolveLogger) SolveStart(employees, requirements int, timeLimit time.Duration) {
	l.base.Info().
		Int("employees", employees).
		Int("requirements", requirements).
		Dur("time_limit", timeLimit).
		Msg("solve started")
}

// SolveComplete logs a finished solve and its headline metrics.
func (l *SolveLogger) SolveComplete(duration time.Duration, objective int64, slotsFilled, slotsRequired int) {
	l.base.Info().
		Dur("duration", duration).
		Int64("objective_value", objective).
		Int("slots_filled", slotsFilled).
		Int("slots_required", slotsRequired).
		Msg("solve complete")
}

// Infeasible logs a solve that produced no feasible assignment.
func (l *SolveLogger) Infeasible(reason string) {
	l.base.Warn().Str("reason", reason).Msg("no feasible solution")
}

// AlternativeGenerated logs a successful alternative-solution solve.
func (l *SolveLogger) AlternativeGenerated(solutionIndex int, excludedCount int) {
	l.base.Info().
		Int("solution_index", solutionIndex).
		Int("excluded_solutions", excludedCount).
		Msg("alternative solution generated")
}

// ConstraintDropped logs a hard constraint the policy relaxed to soft
// (spec §9 Open Question: RelaxCoverageToSoft).
func (l *SolveLogger) ConstraintDropped(constraint, reason string) {
	l.base.Warn().
		Str("constraint", constraint).
		Str("reason", reason).
		Msg("hard constraint relaxed to soft")
}
