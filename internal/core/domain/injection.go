package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// InjectionKind selects the G-code emitted by an injection.
type InjectionKind string

const (
	// InjectPause pauses the print.
	InjectPause InjectionKind = "pause"
	// InjectColorChange triggers a filament change.
	InjectColorChange InjectionKind = "color_change"
	// InjectCustomGcode emits a user-supplied command.
	InjectCustomGcode InjectionKind = "custom_gcode"
)

// TriggerKind selects how an injection's value is interpreted.
type TriggerKind string

const (
	// TriggerLayer fires at a one-based layer number.
	TriggerLayer TriggerKind = "layer"
	// TriggerHeight fires at the layer reaching a height in millimetres.
	TriggerHeight TriggerKind = "height"
)

// Injection is one scripted G-code hook. Value is kept as text and parsed when compiled.
type Injection struct {
	Kind    InjectionKind
	Trigger TriggerKind
	Value   string
	Command string
}

// ParseInjection parses "kind:trigger:value" or "kind:trigger:value:command".
func ParseInjection(s string) (Injection, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return Injection{}, invalidInjection(s)
	}

	inj := Injection{
		Kind:    InjectionKind(strings.TrimSpace(parts[0])),
		Trigger: TriggerKind(strings.TrimSpace(parts[1])),
		Value:   strings.TrimSpace(parts[2]),
	}
	if len(parts) == 4 {
		inj.Command = parts[3]
	}

	switch inj.Kind {
	case InjectPause, InjectColorChange, InjectCustomGcode:
	default:
		return Injection{}, invalidInjection(s)
	}
	switch inj.Trigger {
	case TriggerLayer, TriggerHeight:
	default:
		return Injection{}, invalidInjection(s)
	}
	return inj, nil
}

func invalidInjection(s string) error {
	return zerr.With(zerr.Wrap(ErrInvalidInjection, "failed to parse injection"), "injection", s)
}
