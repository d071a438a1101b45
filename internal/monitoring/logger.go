package monitoring

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Logger provides enhanced structured logging with context
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

// NewLogger creates a new enhanced logger writing JSON to stdout
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stdout)
}

// NewLoggerWithWriter creates a logger writing JSON to w
func NewLoggerWithWriter(w io.Writer) *Logger {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Add timestamp in RFC3339 format
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
		level:  level,
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip, userAgent string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"user_agent", userAgent,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// AssessmentLogger logs a completed assessment
func (l *Logger) AssessmentLogger(id, label string, acMinusCE, aeMinusRO int, noise float64, duration time.Duration) {
	l.Info("Assessment Completed",
		"assessment_id", id,
		"prediction", label,
		"ac_ce", acMinusCE,
		"ae_ro", aeMinusRO,
		"noise", noise,
		"duration_ms", duration.Milliseconds(),
	)
}

// ModelLogger logs classifier lifecycle events
func (l *Logger) ModelLogger(path, kind string, classes int, duration time.Duration) {
	l.Info("Model Loaded",
		"path", path,
		"kind", kind,
		"classes", classes,
		"duration_ms", duration.Milliseconds(),
	)
}

// APIErrorLogger logs API errors with context
func (l *Logger) APIErrorLogger(err error, method, path, ip string, statusCode int) {
	l.Error("API Error",
		"error", err.Error(),
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
	)
}

// CacheLogger logs cache operations
func (l *Logger) CacheLogger(operation, key string, hit bool, itemCount int) {
	l.Debug("Cache Operation",
		"operation", operation,
		"key", key,
		"hit", hit,
		"cache_size", itemCount,
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

// SecurityLogger logs security-related events
func (l *Logger) SecurityLogger(event, ip, userAgent string, details map[string]interface{}) {
	attrs := []any{
		"event", event,
		"ip", ip,
		"user_agent", userAgent,
	}

	for key, value := range details {
		attrs = append(attrs, key, value)
	}

	l.Warn("Security Event", attrs...)
}

// PerformanceLogger logs performance metrics
func (l *Logger) PerformanceLogger(metric string, value float64, unit string) {
	l.Log(context.Background(), slog.LevelWarn, "Performance Metric",
		"metric", metric,
		"value", strconv.FormatFloat(value, 'f', 3, 64),
		"unit", unit,
	)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

var startTime = time.Now()
