// Package shell runs the external slicer and classifies its output.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/shlex"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Slicer = (*Slicer)(nil)

// waitDelay bounds how long output pipes are drained after the slicer is killed.
const waitDelay = 2 * time.Second

var errorMarker = regexp.MustCompile(`(?i)\[error\]`)

// exportedMarker is printed by the slicer once the artifact was written.
const exportedMarker = "slicing result exported"

// Slicer implements ports.Slicer using os/exec.
type Slicer struct {
	logger ports.Logger
}

// NewSlicer creates a new Slicer.
func NewSlicer(logger ports.Logger) *Slicer {
	return &Slicer{logger: logger}
}

// Slice invokes the slicer as `<command> --load <config> -g <geometry> --output <artifact>`.
// On failure the captured output is kept in a log file beside the artifact.
func (s *Slicer) Slice(ctx context.Context, job domain.SliceJob) error {
	argv, err := Command(job.Command)
	if err != nil {
		return err
	}

	args := append(argv[1:],
		"--load", job.ConfigPath,
		"-g", job.GeometryPath,
		"--output", job.OutputPath,
	)

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", job.OutputPath)
	}

	var stdout, stderr bytes.Buffer
	stdoutLog := &logWriter{logger: s.logger, level: "info"}
	stderrLog := &logWriter{logger: s.logger, level: "warn"}

	cmd := exec.CommandContext(ctx, argv[0], args...) //nolint:gosec // Slicer command comes from the settings file
	cmd.Stdout = io.MultiWriter(&stdout, stdoutLog)
	cmd.Stderr = io.MultiWriter(&stderr, stderrLog)
	cmd.WaitDelay = waitDelay

	runErr := cmd.Run()
	_ = stdoutLog.Close()
	_ = stderrLog.Close()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return zerr.Wrap(ctxErr, "slicing canceled")
	}

	if err := Classify(runErr, stdout.String(), stderr.String()); err != nil {
		if logPath, logErr := writeErrorLog(job.OutputPath, stdout.Bytes(), stderr.Bytes()); logErr == nil {
			err = zerr.With(err, "log", logPath)
		}
		return zerr.With(err, "geometry", job.GeometryPath)
	}
	return nil
}

// Command splits a slicer command into arguments. A command naming an
// existing file is used as-is so paths containing spaces need no quoting.
func Command(command string) ([]string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, domain.ErrSlicerCommandEmpty
	}
	if info, err := os.Stat(command); err == nil && !info.IsDir() {
		return []string{command}, nil
	}

	argv, err := shlex.Split(command)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to split slicer command"), "command", command)
	}
	if len(argv) == 0 {
		return nil, domain.ErrSlicerCommandEmpty
	}
	return argv, nil
}

// Classify turns the slicer's exit status and output into a result. A failed
// process reports its stderr. Otherwise the first stdout line carrying an
// error marker or the export confirmation decides.
func Classify(runErr error, stdout, stderr string) error {
	if runErr != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = runErr.Error()
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(domain.ErrSlicingFailed, msg), "exit_code", exitCode)
	}

	for line := range strings.Lines(stdout) {
		if loc := errorMarker.FindStringIndex(line); loc != nil {
			msg := strings.TrimSpace(line[loc[1]:])
			if msg == "" {
				msg = strings.TrimSpace(line)
			}
			return zerr.Wrap(domain.ErrSlicingFailed, msg)
		}
		if strings.Contains(strings.ToLower(line), exportedMarker) {
			return nil
		}
	}

	return zerr.Wrap(domain.ErrSlicingFailed, "slicer did not report an exported result")
}

// ErrorLogPath returns the file that receives the slicer output of a failed job.
func ErrorLogPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
}

func writeErrorLog(outputPath string, stdout, stderr []byte) (string, error) {
	path := ErrorLogPath(outputPath)

	var buf bytes.Buffer
	buf.WriteString("# stdout\n")
	buf.Write(stdout)
	buf.WriteString("\n# stderr\n")
	buf.Write(stderr)

	//nolint:gosec // Path is derived from the artifact path
	if err := os.WriteFile(path, buf.Bytes(), domain.PrivateFilePerm); err != nil {
		return "", err
	}
	return path, nil
}

type logWriter struct {
	logger ports.Logger
	level  string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if strings.TrimSpace(msg) == "" {
		return
	}

	if w.level == "info" {
		w.logger.Info(msg)
	} else {
		w.logger.Warn(msg)
	}
}
