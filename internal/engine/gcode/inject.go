// Package gcode compiles scripted G-code injections and reads slicer estimates from artifacts.
package gcode

import (
	"math"
	"strconv"
	"strings"

	"go.trai.ch/slicecache/internal/core/domain"
)

const (
	// pausePrintGcodeKey holds the printer's pause command.
	pausePrintGcodeKey = "pause_print_gcode"
	// colorChangeGcodeKey holds the printer's filament change command.
	colorChangeGcodeKey = "color_change_gcode"

	defaultPauseGcode       = "M0"
	defaultColorChangeGcode = "M600"

	// newline is the escaped line break understood inside slicer config values.
	newline = `\n`
)

// Palette is the sequence of extruder colors assigned to successive color changes.
var Palette = []string{
	"#79C543", "#E01A4F", "#FFB000", "#8BC34A", "#808080",
	"#ED1C24", "#A349A4", "#B5E61D", "#26A69A", "#BE1E2D",
	"#39B54A", "#CCCCCC", "#5A4CA2", "#D90F5A", "#A4E100",
	"#B97A57", "#3F48CC", "#F9E300", "#FFFFFF", "#00A2E8",
}

// Inject returns a copy of cfg whose layer_gcode has one conditional block
// appended per valid injection, in order. Injections with an unparsable
// trigger value are skipped, as are custom injections without a command.
func Inject(cfg domain.ResolvedConfig, injections []domain.Injection) domain.ResolvedConfig {
	out := cfg.Clone()
	if len(injections) == 0 {
		return out
	}

	pause := newline + ";PAUSE_PRINT" + newline + orDefault(cfg[pausePrintGcodeKey], defaultPauseGcode)
	colorCommand := orDefault(cfg[colorChangeGcodeKey], defaultColorChangeGcode)

	var b strings.Builder
	b.WriteString(cfg[domain.LayerGcodeKey])

	colorIdx, appended := 0, 0
	for _, inj := range injections {
		layer, ok := LayerIndex(inj, cfg[domain.LayerHeightKey])
		if !ok {
			continue
		}

		var body string
		switch inj.Kind {
		case domain.InjectPause:
			body = pause
		case domain.InjectColorChange:
			color := Palette[colorIdx%len(Palette)]
			colorIdx++
			body = newline + ";COLOR_CHANGE,T0," + color + newline + colorCommand
		case domain.InjectCustomGcode:
			if inj.Command == "" {
				continue
			}
			body = newline + ";CUSTOM GCODE" + newline + inj.Command
		default:
			continue
		}

		b.WriteString("{if layer_num==")
		b.WriteString(strconv.Itoa(layer))
		b.WriteString("}")
		b.WriteString(body)
		b.WriteString("{endif}")
		appended++
	}

	if appended == 0 {
		return out
	}
	out[domain.LayerGcodeKey] = b.String()
	return out
}

// LayerIndex converts an injection trigger into a zero-based layer index.
// Layer triggers must be integers; height triggers are divided by layerHeight
// and rounded up.
func LayerIndex(inj domain.Injection, layerHeight string) (int, bool) {
	value := strings.TrimSpace(inj.Value)

	switch inj.Trigger {
	case domain.TriggerLayer:
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, false
		}
		return n - 1, true
	case domain.TriggerHeight:
		h, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
			return 0, false
		}
		lh, err := strconv.ParseFloat(strings.TrimSpace(layerHeight), 64)
		if err != nil || lh == 0 || math.IsNaN(lh) || math.IsInf(lh, 0) {
			return 0, false
		}
		return int(math.Ceil(h/lh)) - 1, true
	default:
		return 0, false
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
