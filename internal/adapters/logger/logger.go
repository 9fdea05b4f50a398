// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/slicecache/internal/core/ports"
)

var _ ports.Logger = (*Logger)(nil)

// messager describes an error that can report its own message without the chain.
type messager interface {
	Message() string
}

// metadataer describes an error that carries key-value context.
type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one link of an error chain as rendered in pretty mode.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a new Logger writing pretty output to stderr.
func New() ports.Logger {
	return &Logger{
		logger: slog.New(newHandler(os.Stderr, false)),
		output: os.Stderr,
	}
}

// SetOutput updates the logger's output destination and keeps the current mode.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.logger = slog.New(newHandler(w, l.jsonMode))
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	w := l.output
	if w == nil {
		w = os.Stderr
	}
	l.logger = slog.New(newHandler(w, enable))
}

func newHandler(w io.Writer, jsonMode bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if jsonMode {
		return slog.NewJSONHandler(w, opts)
	}
	return NewPrettyHandler(w, opts)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error together with its cause chain.
// Nil errors are ignored.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err == nil {
		return
	}

	if l.jsonMode {
		args := []any{keyError, err.Error()}
		for _, entry := range collectErrorEntries(err) {
			for _, key := range slices.Sorted(maps.Keys(entry.Metadata)) {
				args = append(args, key, entry.Metadata[key])
			}
		}
		l.logger.Error("operation failed", args...)
		return
	}

	l.logger.Error("", slog.Any(keyError, err))
}

// collectErrorEntries walks the zerr chain and returns one entry per message.
// A standard error ends the walk with its full text. Links without a message
// only carry metadata, which is folded into the next entry that has one.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error(), Metadata: pending})
			break
		}

		var meta map[string]any
		if md, ok := current.(metadataer); ok {
			meta = md.Metadata()
		}
		if m.Message() == "" {
			if pending == nil {
				pending = make(map[string]any)
			}
			maps.Copy(pending, meta)
			current = errors.Unwrap(current)
			continue
		}

		if pending != nil {
			if meta == nil {
				meta = make(map[string]any)
			}
			maps.Copy(meta, pending)
			pending = nil
		}
		entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: meta})
		current = errors.Unwrap(current)
	}

	return entries
}

// formatErrorEntries renders the entries as the main error followed by its
// causes. Each entry lists its location and profile key before the remaining
// metadata.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		indent := "       "
		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
		} else {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			lines = append(lines, "    → "+msgLines[0])
			indent = "      "
		}
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		if loc := location(entry.Metadata); loc != "" {
			lines = append(lines, indent+"at "+loc)
		}
		if profile, ok := entry.Metadata[keyProfile]; ok {
			lines = append(lines, fmt.Sprintf("%sprofile: %v", indent, profile))
		}
		for _, key := range slices.Sorted(maps.Keys(entry.Metadata)) {
			switch key {
			case keyProfile, keySource, keyLine:
				continue
			}
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, entry.Metadata[key]))
		}
	}

	return strings.Join(lines, "\n")
}
