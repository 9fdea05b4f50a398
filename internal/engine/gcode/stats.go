package gcode

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"regexp"
	"unicode/utf8"

	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	printTimeName     = "estimated printing time (normal mode)"
	filamentGramsName = "filament used [g]"
)

var (
	printTimePattern     = statPattern(printTimeName)
	filamentGramsPattern = statPattern(filamentGramsName)
)

func statPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`^;? ?` + regexp.QuoteMeta(name) + ` ?= ?(.+)$`)
}

// ReadStats scans an artifact for the slicer's print time and filament weight
// estimates. Lines that are not valid UTF-8, as in binary G-code, are skipped.
func ReadStats(path string) (domain.GcodeStats, error) {
	f, err := os.Open(path) //nolint:gosec // Artifact path is produced by the memoizer
	if err != nil {
		return domain.GcodeStats{}, zerr.With(zerr.Wrap(err, "failed to open artifact"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	stats, err := ScanStats(f)
	if err != nil {
		return domain.GcodeStats{}, zerr.With(err, "path", path)
	}
	return stats, nil
}

// ScanStats reads estimates from r. The first match of each estimate wins.
func ScanStats(r io.Reader) (domain.GcodeStats, error) {
	var stats domain.GcodeStats
	reader := bufio.NewReader(r)

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimRight(line, "\r\n")
			if utf8.Valid(line) {
				if stats.PrintTime == "" {
					if m := printTimePattern.FindSubmatch(line); m != nil {
						stats.PrintTime = string(m[1])
					}
				}
				if stats.FilamentGrams == "" {
					if m := filamentGramsPattern.FindSubmatch(line); m != nil {
						stats.FilamentGrams = string(m[1])
					}
				}
			}
		}
		if stats.PrintTime != "" && stats.FilamentGrams != "" {
			return stats, nil
		}
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, zerr.Wrap(err, "failed to read artifact")
		}
	}
}
