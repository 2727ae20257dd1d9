// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// SenderKey is the context key for the sender phone number
	SenderKey contextKey = "sender"
	// TaskIDKey is the context key for the background task ID
	TaskIDKey contextKey = "task_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports sender and task_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if sender, ok := ctx.Value(SenderKey).(string); ok && sender != "" {
		newLogger = newLogger.WithSender(sender)
	}

	if taskID, ok := ctx.Value(TaskIDKey).(string); ok && taskID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("task_id", taskID)),
		}
	}

	return newLogger
}

// WithSender returns a logger bound to a sender phone number
func (l *Logger) WithSender(sender string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("sender", sender)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// PipelineStage logs a conversation pipeline stage transition
func (l *Logger) PipelineStage(sender, stage string) {
	l.Info("pipeline_stage",
		slog.String("sender", sender),
		slog.String("stage", stage),
	)
}

// PipelineError logs a failure inside the conversation pipeline
func (l *Logger) PipelineError(sender, stage string, err error) {
	l.Error("pipeline_error",
		slog.String("sender", sender),
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// CatalogError logs a failure against the farm-management catalog API
func (l *Logger) CatalogError(operation string, err error) {
	l.Error("catalog_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// OutboundMessage logs an outbound WhatsApp message
func (l *Logger) OutboundMessage(phone string, chars int) {
	l.Info("whatsapp_sent",
		slog.String("phone", phone),
		slog.Int("chars", chars),
	)
}
