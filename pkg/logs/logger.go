package logs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much the logger writes.
type Options struct {
	File      string
	Level     string
	MaxSizeMB int
	MaxFiles  int
}

// Logger writes JSON lines with a timestamp, level and event fields.
// A nil or disabled Logger discards everything.
type Logger struct {
	mu      sync.Mutex
	slog    *slog.Logger
	closer  io.Closer
	enabled bool
}

// New returns a logger writing to a rotating file. An empty File yields a
// disabled logger.
func New(opts Options) (*Logger, error) {
	if opts.File == "" {
		return Disabled(), nil
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 5
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	w := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxFiles,
	}
	l := NewWriter(w, level)
	l.closer = w
	return l, nil
}

// NewWriter returns an enabled logger writing to w.
func NewWriter(w io.Writer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.MessageKey {
				a.Key = "event"
			}
			return a
		},
	})
	return &Logger{slog: slog.New(h), enabled: true}
}

// Disabled returns a logger that writes nothing.
func Disabled() *Logger {
	return &Logger{}
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Enabled reports whether the logger writes anything.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Close flushes and closes the underlying file if enabled.
func (l *Logger) Close() {
	if !l.Enabled() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer != nil {
		_ = l.closer.Close()
		l.closer = nil
	}
}

// Event writes an info line with the event name and fields.
// Common fields: key, action, cursor, graphemes, records, db.
func (l *Logger) Event(event string, fields map[string]any) {
	l.log(slog.LevelInfo, event, fields)
}

// Debug writes a debug line.
func (l *Logger) Debug(event string, fields map[string]any) {
	l.log(slog.LevelDebug, event, fields)
}

// Warn writes a warn line.
func (l *Logger) Warn(event string, fields map[string]any) {
	l.log(slog.LevelWarn, event, fields)
}

// Error writes an error line carrying err under the "error" key.
func (l *Logger) Error(event string, err error, fields map[string]any) {
	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if err != nil {
		merged["error"] = err.Error()
	}
	l.log(slog.LevelError, event, merged)
}

func (l *Logger) log(level slog.Level, event string, fields map[string]any) {
	if !l.Enabled() {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slog.LogAttrs(context.Background(), level, event, attrs...)
}
