package memo

import (
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/slicecache/internal/core/domain"
)

const (
	filamentTypeKey = "filament_type"
	printerModelKey = "printer_model"
	binaryGcodeKey  = "binary_gcode"

	unknownPart = "unknown"
)

// duplicateSuffix matches the numeric suffix hosts append to copied object names.
var duplicateSuffix = regexp.MustCompile(`\.\d{0,3}$`)

// BaseName joins object names into an artifact base name. Numeric copy
// suffixes are dropped, repeated names are counted as "Nx_name", and the
// parts are sorted.
func BaseName(objectNames []string) string {
	counts := make(map[string]int, len(objectNames))
	for _, name := range objectNames {
		counts[duplicateSuffix.ReplaceAllString(name, "")]++
	}

	parts := make([]string, 0, len(counts))
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		if n := counts[name]; n > 1 {
			parts = append(parts, strconv.Itoa(n)+"x_"+name)
			continue
		}
		parts = append(parts, name)
	}
	slices.Sort(parts)

	return strings.Join(parts, "-")
}

// ArtifactName returns "<base>-<filament_type>-<printer_model>.<ext>", where
// ext is bgcode when the config asks for binary G-code.
func ArtifactName(base string, cfg domain.ResolvedConfig) string {
	ext := "gcode"
	if cfg[binaryGcodeKey] == "1" {
		ext = "bgcode"
	}
	name := strings.Join([]string{
		sanitize(base),
		sanitize(cfg[filamentTypeKey]),
		sanitize(cfg[printerModelKey]),
	}, "-")
	return name + "." + ext
}

// sanitize keeps a name part from escaping its directory.
func sanitize(part string) string {
	part = strings.TrimSpace(strings.Trim(part, `"`))
	if part == "" {
		return unknownPart
	}
	return strings.NewReplacer("/", "_", `\`, "_").Replace(part)
}
