// Package bundle parses profile bundle text into flat profile records.
package bundle

import (
	"maps"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/zerr"
)

// vendorSection carries bundle metadata rather than a profile.
const vendorSection = "vendor"

// versionKey is the vendor key announcing the bundle version.
const versionKey = "config_version"

// inferenceMarkers are checked in order when a document has no section header.
var inferenceMarkers = []struct {
	key      string
	category domain.Category
}{
	{key: "filament_settings_id", category: domain.CategoryFilament},
	{key: "print_settings_id", category: domain.CategoryPrint},
	{key: "printer_settings_id", category: domain.CategoryPrinter},
}

// ParseOptions describes where a document came from.
type ParseOptions struct {
	// Source is the path or URL of the document, used in errors and to derive
	// the id of a headerless profile.
	Source string
	// Header is the key assumed for a headerless document. It is ignored unless
	// it names a resolvable category.
	Header string
}

// Document is the parsed form of one profile document.
type Document struct {
	Records map[domain.ProfileKey]domain.ProfileRecord
	// Explicit is false when the single record's key was synthesized.
	Explicit bool
	// Version is the vendor config_version, if the document declares one.
	Version string
}

// Keys returns the record keys in sorted order.
func (d *Document) Keys() []domain.ProfileKey {
	return slices.Sorted(maps.Keys(d.Records))
}

type sectionKind uint8

const (
	sectionNone sectionKind = iota
	sectionProfile
	sectionVendor
	sectionOther
)

// Parse converts INI-like profile text into records keyed by category:id.
func Parse(text []byte, opts ParseOptions) (*Document, error) {
	doc := &Document{Records: make(map[domain.ProfileKey]domain.ProfileRecord)}

	var (
		kind       = sectionNone
		current    domain.ProfileRecord
		preamble   = domain.ProfileRecord{}
		sawSection bool
	)

	for i, raw := range strings.Split(string(text), "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))

		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if line[0] == '[' && line[len(line)-1] == ']' {
			sawSection = true
			name := strings.TrimSpace(line[1 : len(line)-1])
			switch {
			case strings.Contains(name, ":"):
				key, err := domain.ParseProfileKey(name)
				if err != nil {
					return nil, malformed(opts.Source, lineNo, err)
				}
				record, ok := doc.Records[key]
				if !ok {
					record = domain.ProfileRecord{}
					doc.Records[key] = record
				}
				current = record
				kind = sectionProfile
			case name == vendorSection:
				kind = sectionVendor
			default:
				kind = sectionOther
			}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, malformed(opts.Source, lineNo, nil)
		}
		value = strings.TrimSpace(value)

		switch kind {
		case sectionProfile:
			current[key] = value
		case sectionVendor:
			if key == versionKey {
				doc.Version = value
			}
		case sectionNone:
			preamble[key] = value
		case sectionOther:
		}
	}

	if len(doc.Records) > 0 {
		doc.Explicit = true
		return doc, nil
	}
	if sawSection {
		return doc, nil
	}

	key, err := headerFor(preamble, opts)
	if err != nil {
		return nil, err
	}
	doc.Records[key] = preamble
	return doc, nil
}

// headerFor picks the key of a headerless document: the hint when it is
// resolvable, otherwise the category of the first marker present with the
// source stem as id.
func headerFor(record domain.ProfileRecord, opts ParseOptions) (domain.ProfileKey, error) {
	if opts.Header != "" {
		if key, err := domain.ParseProfileKey(opts.Header); err == nil && key.Category().Resolvable() {
			return key, nil
		}
	}

	stem := Stem(opts.Source)
	for _, marker := range inferenceMarkers {
		if _, ok := record[marker.key]; ok && stem != "" {
			return domain.NewProfileKey(marker.category, stem), nil
		}
	}

	return "", zerr.With(
		zerr.Wrap(domain.ErrMalformedProfile, "no section header and no category marker"),
		"source", opts.Source,
	)
}

// Stem returns the base name of a path or URL without its extension.
func Stem(source string) string {
	p := source
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		p = path.Base(u.Path)
	} else {
		p = filepath.Base(p)
	}
	if p == "." || p == "/" {
		return ""
	}
	return strings.TrimSuffix(p, path.Ext(p))
}

func malformed(source string, line int, cause error) error {
	err := zerr.Wrap(domain.ErrMalformedProfile, "invalid line")
	if cause != nil {
		err = zerr.With(err, "cause", cause.Error())
	}
	err = zerr.With(err, "source", source)
	return zerr.With(err, "line", line)
}
