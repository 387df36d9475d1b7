// logging.go: Minimal structured logging facade for the dispatch layer
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"io"
	"log/slog"
	"strings"
)

const redactedPlaceholder = "[redacted]"

// Logger is the subset of slog used by the dispatcher. Applications can
// provide their own implementation for testing or redaction policies.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// NewLogger returns a Logger backed by the provided slog.Logger. Passing nil
// binds to slog.Default().
func NewLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger}
}

// NewTextLogger returns a text Logger writing to w at the named level
// (debug, info, warn, error). Unknown levels fall back to info.
func NewTextLogger(w io.Writer, level string) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &slogLogger{logger: slog.New(handler)}
}

// NopLogger discards every record.
func NopLogger() Logger {
	return &slogLogger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

// Redacted marks an attribute whose value was intentionally removed.
func Redacted(key string) slog.Attr {
	return slog.String(key, redactedPlaceholder)
}

// KeyFingerprint logs a key by its fingerprint, never its bytes. An absent
// key is logged as redacted.
func KeyFingerprint(name string, key []byte) slog.Attr {
	if len(key) == 0 {
		return Redacted(name)
	}
	return slog.String(name, GetKeyFingerprint(key))
}
