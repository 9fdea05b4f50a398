package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

const (
	colorInfo  = "#667085"
	colorWarn  = "#F59E0B"
	colorError = "#D93025"

	symbolWarn  = "!"
	symbolError = "✗"
)

// Attribute keys the pretty output places instead of listing as key=value.
const (
	keyError   = "error"
	keyProfile = "key"
	keySource  = "source"
	keyLine    = "line"
)

// PrettyHandler is a slog.Handler for terminals. A profile key attribute is
// shown in brackets after the message, source and line become a trailing
// location, and an error attribute is expanded into its cause chain.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
// Colors are disabled when NO_COLOR is set.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   termenv.NewOutput(w, termenv.WithProfile(colorProfile()), termenv.WithTTY(true)),
		level: level,
	}
}

func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	fields = append(fields, h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, attr)
		return true
	})

	var errs []error
	meta := make(map[string]any, len(fields))
	var rest []string
	for _, attr := range fields {
		switch attr.Key {
		case keyError:
			if err, ok := attr.Value.Any().(error); ok {
				errs = append(errs, err)
				continue
			}
		case keyProfile, keySource, keyLine:
			meta[attr.Key] = attr.Value.Any()
			continue
		}
		rest = append(rest, attr.Key+"="+attr.Value.String())
	}

	var b strings.Builder
	if symbol := levelSymbol(r.Level); symbol != "" {
		b.WriteString(symbol + " ")
	}

	head := r.Message
	if profile, ok := meta[keyProfile]; ok {
		head += fmt.Sprintf(" [%v]", profile)
	}
	if len(rest) > 0 {
		head += " " + strings.Join(rest, " ")
	}
	if loc := location(meta); loc != "" {
		head += " (" + loc + ")"
	}

	switch {
	case r.Message == "" && len(errs) > 0:
		// The first error is the record itself.
		b.WriteString(formatErrorEntries(collectErrorEntries(errs[0])))
		errs = errs[1:]
	default:
		b.WriteString(head)
	}
	for _, err := range errs {
		b.WriteString("\n" + formatErrorEntries(collectErrorEntries(err)))
	}

	styled := h.out.String(b.String()).Foreground(termenv.RGBColor(levelColor(r.Level)))
	_, err := h.out.WriteString(styled.String() + "\n")

	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(next.attrs, h.attrs)
	for _, attr := range attrs {
		next.attrs = appendAttr(next.attrs, h.prefix, attr)
	}
	return &next
}

// WithGroup returns a new Handler that qualifies later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// appendAttr flattens groups into dotted keys. Location and error keys are
// only recognized outside of groups.
func appendAttr(dst []slog.Attr, prefix string, attr slog.Attr) []slog.Attr {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			dst = appendAttr(dst, inner, member)
		}
		return dst
	}
	attr.Key = prefix + attr.Key
	return append(dst, attr)
}

// location renders source and line metadata as "source:line".
func location(meta map[string]any) string {
	source, hasSource := meta[keySource]
	line, hasLine := meta[keyLine]
	switch {
	case hasSource && hasLine:
		return fmt.Sprintf("%v:%v", source, line)
	case hasSource:
		return fmt.Sprint(source)
	case hasLine:
		return fmt.Sprintf("line %v", line)
	default:
		return ""
	}
}

func levelSymbol(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return symbolError
	case level >= slog.LevelWarn:
		return symbolWarn
	default:
		return ""
	}
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorError
	case level >= slog.LevelWarn:
		return colorWarn
	default:
		return colorInfo
	}
}
