package shell_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/slicecache/internal/adapters/shell"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// fakeSlicer writes an executable script that records its arguments next to itself.
func fakeSlicer(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "slicer.sh")
	script := "#!/bin/sh\necho \"$@\" > \"$(dirname \"$0\")/args\"\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700)) //nolint:gosec // Test script must be executable
	return path
}

func newJob(t *testing.T, command string) domain.SliceJob {
	t.Helper()
	dir := t.TempDir()
	return domain.SliceJob{
		Command:      command,
		ConfigPath:   filepath.Join(dir, "config.ini"),
		GeometryPath: filepath.Join(dir, "model.stl"),
		OutputPath:   filepath.Join(dir, "out", "model.gcode"),
	}
}

func newSlicer(t *testing.T) (*shell.Slicer, *mocks.MockLogger) {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	return shell.NewSlicer(log), log
}

func TestSlicer_Slice_Success(t *testing.T) {
	script := fakeSlicer(t, `echo "Slicing result exported to $6"`)
	job := newJob(t, script)

	s, log := newSlicer(t)
	log.EXPECT().Info("Slicing result exported to " + job.OutputPath)

	require.NoError(t, s.Slice(t.Context(), job))

	args, err := os.ReadFile(filepath.Join(filepath.Dir(script), "args"))
	require.NoError(t, err)
	want := "--load " + job.ConfigPath + " -g " + job.GeometryPath + " --output " + job.OutputPath + "\n"
	assert.Equal(t, want, string(args))
	assert.DirExists(t, filepath.Dir(job.OutputPath))
	assert.NoFileExists(t, shell.ErrorLogPath(job.OutputPath))
}

func TestSlicer_Slice_ErrorLine(t *testing.T) {
	script := fakeSlicer(t, `echo "[ERROR] Object outside print volume"`)
	job := newJob(t, script)

	s, log := newSlicer(t)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	err := s.Slice(t.Context(), job)
	require.ErrorIs(t, err, domain.ErrSlicingFailed)
	assert.Contains(t, err.Error(), "Object outside print volume")

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, shell.ErrorLogPath(job.OutputPath), zErr.Metadata()["log"])

	logged, readErr := os.ReadFile(shell.ErrorLogPath(job.OutputPath))
	require.NoError(t, readErr)
	assert.Contains(t, string(logged), "Object outside print volume")
}

func TestSlicer_Slice_NonZeroExit(t *testing.T) {
	script := fakeSlicer(t, "echo boom >&2\nexit 3")
	job := newJob(t, script)

	s, log := newSlicer(t)
	log.EXPECT().Warn("boom")

	err := s.Slice(t.Context(), job)
	require.ErrorIs(t, err, domain.ErrSlicingFailed)
	assert.Contains(t, err.Error(), "boom")

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, 3, zErr.Metadata()["exit_code"])
}

func TestSlicer_Slice_Canceled(t *testing.T) {
	script := fakeSlicer(t, "exec sleep 5")
	job := newJob(t, script)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	s, _ := newSlicer(t)
	err := s.Slice(ctx, job)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, domain.ErrSlicingFailed))
}

func TestSlicer_Slice_EmptyCommand(t *testing.T) {
	s, _ := newSlicer(t)
	err := s.Slice(t.Context(), newJob(t, "   "))
	require.ErrorIs(t, err, domain.ErrSlicerCommandEmpty)
}

func TestCommand(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "Prusa Slicer")
	require.NoError(t, os.WriteFile(existing, nil, domain.PrivateFilePerm))

	tests := []struct {
		name    string
		command string
		want    []string
		wantErr error
	}{
		{
			name:    "flatpak",
			command: "flatpak run com.prusa3d.PrusaSlicer",
			want:    []string{"flatpak", "run", "com.prusa3d.PrusaSlicer"},
		},
		{
			name:    "quoted path",
			command: `"/opt/Prusa Slicer/prusa-slicer" --loglevel 2`,
			want:    []string{"/opt/Prusa Slicer/prusa-slicer", "--loglevel", "2"},
		},
		{
			name:    "existing file with spaces",
			command: existing,
			want:    []string{existing},
		},
		{
			name:    "empty",
			command: "",
			wantErr: domain.ErrSlicerCommandEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shell.Command(tt.command)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		runErr  error
		stdout  string
		stderr  string
		wantErr bool
		wantMsg string
	}{
		{
			name:   "exported",
			stdout: "Loading model\nSlicing result exported to /tmp/x.gcode\n",
		},
		{
			name:   "exported mixed case",
			stdout: "SLICING RESULT EXPORTED to x\n",
		},
		{
			name:    "error marker",
			stdout:  "Loading\n[error] Nothing to print\nSlicing result exported\n",
			wantErr: true,
			wantMsg: "Nothing to print",
		},
		{
			name:    "error marker upper case",
			stdout:  "[ERROR]   bad layer height\n",
			wantErr: true,
			wantMsg: "bad layer height",
		},
		{
			name:    "no marker",
			stdout:  "Loading model\n",
			wantErr: true,
			wantMsg: "did not report",
		},
		{
			name:    "process failed",
			runErr:  errors.New("exit status 1"),
			stdout:  "Slicing result exported\n",
			stderr:  "segfault\n",
			wantErr: true,
			wantMsg: "segfault",
		},
		{
			name:    "process failed without stderr",
			runErr:  errors.New("executable not found"),
			wantErr: true,
			wantMsg: "executable not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := shell.Classify(tt.runErr, tt.stdout, tt.stderr)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrSlicingFailed)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
