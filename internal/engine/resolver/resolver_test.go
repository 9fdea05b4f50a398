package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports/mocks"
	"go.trai.ch/slicecache/internal/engine/resolver"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// newStore returns a profile store mock serving records from a map.
func newStore(t *testing.T, records map[domain.ProfileKey]domain.ProfileRecord) *mocks.MockProfileStore {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockProfileStore(ctrl)
	store.EXPECT().Get(gomock.Any()).DoAndReturn(func(key domain.ProfileKey) (domain.ProfileRecord, error) {
		record, ok := records[key]
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrProfileNotFound, "lookup failed"), "key", key.String())
		}
		return record.Clone(), nil
	}).AnyTimes()
	return store
}

func TestResolve_NoInherits(t *testing.T) {
	store := newStore(t, map[domain.ProfileKey]domain.ProfileRecord{
		"filament:PLA": {
			"temperature":                   "215",
			"compatible_printers_condition": "nozzle_diameter[0]==0.4",
		},
	})

	cfg, err := resolver.New(store).Resolve("filament:PLA")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedConfig{"temperature": "215"}, cfg)
}

func TestResolve_Chain(t *testing.T) {
	store := newStore(t, map[domain.ProfileKey]domain.ProfileRecord{
		"print:A": {"inherits": "B", "a": "A", "shared": "A"},
		"print:B": {"inherits": "C", "b": "B", "shared": "B", "bc": "B"},
		"print:C": {"c": "C", "shared": "C", "bc": "C", "compatible_printers_condition": "x"},
	})

	cfg, err := resolver.New(store).Resolve("print:A")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedConfig{
		"a":      "A",
		"b":      "B",
		"c":      "C",
		"bc":     "B",
		"shared": "A",
	}, cfg)
}

func TestResolve_MultipleInheritanceLaterWins(t *testing.T) {
	store := newStore(t, map[domain.ProfileKey]domain.ProfileRecord{
		"print:A": {"inherits": " B ; C ", "own": "A"},
		"print:B": {"both": "B", "only_b": "B"},
		"print:C": {"both": "C", "only_c": "C"},
	})

	cfg, err := resolver.New(store).Resolve("print:A")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedConfig{
		"own":    "A",
		"both":   "C",
		"only_b": "B",
		"only_c": "C",
	}, cfg)
}

func TestResolve_OverrideWinsOverInherited(t *testing.T) {
	store := newStore(t, map[domain.ProfileKey]domain.ProfileRecord{
		"print:0.20mm":      {"layer_height": "0.2", "perimeters": "2"},
		"print:0.20mm_fast": {"inherits": "0.20mm", "layer_height": "0.24"},
	})

	cfg, err := resolver.New(store).Resolve("print:0.20mm_fast")
	require.NoError(t, err)
	assert.Equal(t, "0.24", cfg["layer_height"])
	assert.Equal(t, "2", cfg["perimeters"])
	assert.NotContains(t, cfg, "inherits")
}

func TestResolve_Idempotent(t *testing.T) {
	store := newStore(t, map[domain.ProfileKey]domain.ProfileRecord{
		"printer:MK4":  {"inherits": "base", "printer_model": "MK4"},
		"printer:base": {"bed_shape": "0x0,250x0,250x210,0x210", "gcode_flavor": "marlin2"},
	})
	r := resolver.New(store)

	first, err := r.Resolve("printer:MK4")
	require.NoError(t, err)
	second, err := r.Resolve("printer:MK4")
	require.NoError(t, err)

	assert.Equal(t, first.Serialize(), second.Serialize())
}

func TestResolve_DiamondIsNotACycle(t *testing.T) {
	store := newStore(t, map[domain.ProfileKey]domain.ProfileRecord{
		"print:A":    {"inherits": "B;C"},
		"print:B":    {"inherits": "base", "b": "1"},
		"print:C":    {"inherits": "base", "c": "1"},
		"print:base": {"x": "1"},
	})

	cfg, err := resolver.New(store).Resolve("print:A")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolvedConfig{"b": "1", "c": "1", "x": "1"}, cfg)
}

func TestResolve_Errors(t *testing.T) {
	records := map[domain.ProfileKey]domain.ProfileRecord{
		"print:self":    {"inherits": "self"},
		"print:A":       {"inherits": "B"},
		"print:B":       {"inherits": "A"},
		"print:orphan":  {"inherits": "missing"},
		"print:ok":      {"k": "v"},
		"print:tail":    {"inherits": "ok;loop"},
		"print:loop":    {"inherits": "tail"},
		"physical_x:pp": {"host": "x"},
	}

	tests := []struct {
		name string
		key  domain.ProfileKey
		want error
		meta map[string]any
	}{
		{name: "self cycle", key: "print:self", want: domain.ErrCyclicInheritance},
		{name: "two cycle", key: "print:A", want: domain.ErrCyclicInheritance},
		{name: "cycle after sibling", key: "print:tail", want: domain.ErrCyclicInheritance},
		{name: "absent key", key: "print:nope", want: domain.ErrProfileNotFound},
		{
			name: "absent parent",
			key:  "print:orphan",
			want: domain.ErrProfileNotFound,
			meta: map[string]any{"inherited_by": "print:orphan", "key": "print:missing"},
		},
		{name: "unknown category", key: "physical_x:pp", want: domain.ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.New(newStore(t, records)).Resolve(tt.key)
			require.Error(t, err)
			require.ErrorIs(t, err, tt.want)

			if tt.meta != nil {
				var zErr *zerr.Error
				require.ErrorAs(t, err, &zErr)
				meta := zErr.Metadata()
				for k, v := range tt.meta {
					assert.Equal(t, v, meta[k], k)
				}
			}
		})
	}
}

func TestResolve_CycleReportsChain(t *testing.T) {
	store := newStore(t, map[domain.ProfileKey]domain.ProfileRecord{
		"print:A": {"inherits": "B"},
		"print:B": {"inherits": "A"},
	})

	_, err := resolver.New(store).Resolve("print:A")

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "print:A -> print:B -> print:A", zErr.Metadata()["chain"])
}

func TestCompose(t *testing.T) {
	printer := domain.ResolvedConfig{"printer_model": "MK4", "temperature": "0", "shared": "printer"}
	filament := domain.ResolvedConfig{"temperature": "215", "shared": "filament"}
	process := domain.ResolvedConfig{"layer_height": "0.2", "shared": "print"}

	got := resolver.Compose(printer, filament, process)
	assert.Equal(t, domain.ResolvedConfig{
		"printer_model": "MK4",
		"temperature":   "215",
		"layer_height":  "0.2",
		"shared":        "print",
	}, got)
	assert.Equal(t, "0", printer["temperature"], "inputs must not be modified")
}
