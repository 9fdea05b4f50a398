package domain

import (
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Category is the kind of configuration a profile describes.
type Category string

const (
	// CategoryPrinter describes machine settings.
	CategoryPrinter Category = "printer"
	// CategoryFilament describes material settings.
	CategoryFilament Category = "filament"
	// CategoryPrint describes process settings.
	CategoryPrint Category = "print"
)

// Categories lists the resolvable categories in the order their configs are composed.
var Categories = []Category{CategoryPrinter, CategoryFilament, CategoryPrint}

// Resolvable reports whether profiles of this category can be resolved.
func (c Category) Resolvable() bool {
	return slices.Contains(Categories, c)
}

const (
	// InheritsKey lists the sibling profiles a profile extends, separated by semicolons.
	InheritsKey = "inherits"

	// CompatiblePrintersConditionKey is profile metadata that never reaches a resolved config.
	CompatiblePrintersConditionKey = "compatible_printers_condition"

	// LayerGcodeKey receives compiled G-code injections.
	LayerGcodeKey = "layer_gcode"

	// LayerHeightKey is used to convert height triggers into layer numbers.
	LayerHeightKey = "layer_height"
)

// ProfileKey identifies a profile as "category:id".
type ProfileKey string

// NewProfileKey joins a category and an id into a key.
func NewProfileKey(category Category, id string) ProfileKey {
	return ProfileKey(string(category) + ":" + id)
}

// ParseProfileKey validates that s has the form category:id with both parts non-empty.
func ParseProfileKey(s string) (ProfileKey, error) {
	category, id, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(category) == "" || strings.TrimSpace(id) == "" {
		return "", zerr.With(zerr.Wrap(ErrInvalidProfileKey, "failed to parse profile key"), "key", s)
	}
	return NewProfileKey(Category(strings.TrimSpace(category)), strings.TrimSpace(id)), nil
}

// Category returns the part of the key before the first colon.
func (k ProfileKey) Category() Category {
	category, _, _ := strings.Cut(string(k), ":")
	return Category(category)
}

// ID returns the part of the key after the first colon.
func (k ProfileKey) ID() string {
	_, id, _ := strings.Cut(string(k), ":")
	return id
}

// Sibling returns the key of id within the same category.
func (k ProfileKey) Sibling(id string) ProfileKey {
	return NewProfileKey(k.Category(), id)
}

// String implements fmt.Stringer.
func (k ProfileKey) String() string {
	return string(k)
}

// CacheEntry is one profile header known to the cache index.
type CacheEntry struct {
	Key      ProfileKey `json:"key"`
	Category Category   `json:"category"`
	ID       string     `json:"id"`
	// SourcePath is the cache file holding the records parsed from Document.
	SourcePath   string `json:"source_path"`
	BundleOrigin string `json:"bundle_origin"`
	// Document is the URL or path of the concrete document the entry was parsed from.
	Document          string `json:"document"`
	HasExplicitHeader bool   `json:"has_explicit_header"`
}

// ProfileRecord is the raw key/value map of one parsed profile.
type ProfileRecord map[string]string

// Clone returns a copy of the record.
func (r ProfileRecord) Clone() ProfileRecord {
	return maps.Clone(r)
}

// Inherits returns the trimmed, non-empty ids listed in the inherits field.
func (r ProfileRecord) Inherits() []string {
	raw, ok := r[InheritsKey]
	if !ok {
		return nil
	}
	var ids []string
	for part := range strings.SplitSeq(raw, ";") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ResolvedConfig is a flat parameter map ready to be written for the slicer.
type ResolvedConfig map[string]string

// Clone returns a copy of the config.
func (c ResolvedConfig) Clone() ResolvedConfig {
	if c == nil {
		return ResolvedConfig{}
	}
	return maps.Clone(c)
}

// Keys returns the parameter names in sorted order.
func (c ResolvedConfig) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Merge copies every entry of other into c, replacing existing keys.
func (c ResolvedConfig) Merge(other map[string]string) {
	maps.Copy(c, other)
}

// ApplyOverrides sets each override in order; later overrides of the same key win.
func (c ResolvedConfig) ApplyOverrides(overrides []Override) {
	for _, o := range overrides {
		c[o.ParamID] = o.Value
	}
}

// Serialize renders the config as "key = value" lines sorted by key.
func (c ResolvedConfig) Serialize() []byte {
	var b strings.Builder
	for _, k := range c.Keys() {
		b.WriteString(k)
		b.WriteString(" = ")
		b.WriteString(c[k])
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Override replaces one parameter of a resolved config.
type Override struct {
	ParamID string
	Value   string
}

// ParseOverride parses a "key=value" pair.
func ParseOverride(s string) (Override, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Override{}, zerr.With(zerr.Wrap(ErrInvalidOverride, "failed to parse override"), "override", s)
	}
	return Override{ParamID: key, Value: strings.TrimSpace(value)}, nil
}
