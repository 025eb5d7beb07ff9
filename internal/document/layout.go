package document

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultIndexName is the stem of a directory's own document.
const DefaultIndexName = "index"

// DefaultExtensions are the document extensions tried when none are configured.
var DefaultExtensions = []string{"yml"}

// Layout describes how documents are named on disk.
type Layout struct {
	// IndexName is the stem of the document holding a directory's own data.
	IndexName string

	// Extensions are tried in order; the first existing document wins.
	// Entries have no leading dot.
	Extensions []string
}

// DefaultLayout returns the layout used when nothing is configured:
// "index" documents with the "yml" extension.
func DefaultLayout() Layout {
	return Layout{
		IndexName:  DefaultIndexName,
		Extensions: append([]string(nil), DefaultExtensions...),
	}
}

// Normalize fills empty fields with defaults and strips leading dots from
// extensions.
func (l Layout) Normalize() Layout {
	out := Layout{IndexName: strings.TrimSpace(l.IndexName)}
	if out.IndexName == "" {
		out.IndexName = DefaultIndexName
	}
	for _, ext := range l.Extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			out.Extensions = append(out.Extensions, ext)
		}
	}
	if len(out.Extensions) == 0 {
		out.Extensions = append([]string(nil), DefaultExtensions...)
	}
	return out
}

// HasExtension reports whether ext (without dot) is one of the layout's extensions.
func (l Layout) HasExtension(ext string) bool {
	for _, e := range l.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Validate checks the layout against a codec registry.
// Returns all problems found joined into one error.
func (l Layout) Validate(codecs Registry) error {
	var errs []error
	if strings.ContainsAny(l.IndexName, `/\`) {
		errs = append(errs, fmt.Errorf("index name %q must not contain a path separator", l.IndexName))
	}
	if len(l.Extensions) == 0 {
		errs = append(errs, errors.New("at least one extension is required"))
	}
	for _, ext := range l.Extensions {
		if _, ok := codecs.Lookup(ext); !ok {
			errs = append(errs, fmt.Errorf("no codec registered for extension %q", ext))
		}
	}
	return errors.Join(errs...)
}
