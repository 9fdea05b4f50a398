package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/slicecache/internal/adapters/logger"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestPrettyHandler_Handle_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		msg        string
		goldenName string
	}{
		{name: "info level", level: slog.LevelInfo, msg: "information message", goldenName: "handler_info"},
		{name: "warn level", level: slog.LevelWarn, msg: "warning message", goldenName: "handler_warn"},
		{name: "error level", level: slog.LevelError, msg: "error message", goldenName: "handler_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(t.Context(), tt.level, tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_DebugFiltered(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil))
	lg.Debug("debug message")

	assert.Empty(t, buf.String())
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).With("bundle", "vendor")
	lg.Info("parsed", slog.Int("profiles", 3))

	g := goldie.New(t)
	g.Assert(t, "handler_attrs", buf.Bytes())
}

func TestPrettyHandler_LocationAndProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil))
	lg.Warn("skipped setting",
		"key", "print:0.20mm",
		"source", "vendor/PrusaResearch.ini",
		"line", 12,
		"setting", "bogus",
	)

	g := goldie.New(t)
	g.Assert(t, "handler_location", buf.Bytes())
}

func TestPrettyHandler_ErrorAttrExpandsChain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	err := zerr.With(zerr.Wrap(domain.ErrMalformedProfile, "invalid line"), "source", "vendor.ini")
	err = zerr.With(err, "line", 7)

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).With("bundle", "vendor")
	lg.Error("refresh failed", slog.Any("error", err))

	g := goldie.New(t)
	g.Assert(t, "handler_error_attr", buf.Bytes())
}

func TestPrettyHandler_GroupedKeysStayPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).WithGroup("fetch")
	lg.Info("fetched", "origin", "https://example.com/a.ini", slog.Group("doc", "source", "a.ini"))

	assert.Equal(t, "fetched fetch.origin=https://example.com/a.ini fetch.doc.source=a.ini\n", buf.String())
}

func TestPrettyHandler_LineWithoutSource(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil))
	lg.Info("parsed", "line", 3)

	assert.Equal(t, "parsed (line 3)\n", buf.String())
}
