package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// emit writes one record tagged with component. It bypasses the wrapper
// methods so the component key appears once.
func (sl *StructuredLogger) emit(ctx context.Context, level slog.Level, component, msg string, fields LogFields) {
	sl.logger.Logger.Log(ctx, level, msg, fields.WithComponent(component).ToSlice()...)
}

// LogHTTPStart logs the start of an HTTP request at debug level
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)

	sl.emit(ctx, slog.LevelDebug, ComponentHTTP, "HTTP request started", fields)
}

// LogHTTPEnd logs the completion of an HTTP request
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)

	sl.emit(ctx, level, ComponentHTTP, "HTTP request completed", fields)
}

// LogSummaryComputed logs a successful expense parse and summary
func (sl *StructuredLogger) LogSummaryComputed(ctx context.Context, categories int, total, balance string, shown bool) {
	fields := NewFields().
		WithSummary(categories, total, balance, shown).
		WithOperation(OpSummarize)

	sl.emit(ctx, slog.LevelInfo, ComponentSummary, "Summary computed", fields)
}

// LogAddressLookup logs the outcome of a postal code lookup: "found",
// "not_found" or "failed".
func (sl *StructuredLogger) LogAddressLookup(ctx context.Context, postalCode, city, region, outcome string) {
	fields := NewFields().
		WithAddress(postalCode, city, region).
		WithOperation(OpLookup)
	fields[FieldOutcome] = outcome

	sl.emit(ctx, slog.LevelInfo, ComponentAddress, "Address lookup", fields)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	sl.emit(ctx, slog.LevelError, component, msg, fields.WithError(err).WithOperation(operation))
}
