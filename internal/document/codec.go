package document

import (
	"sort"
	"strings"

	"github.com/roach88/confql/internal/ir"
)

// Codec decodes the bytes of one document into a Value.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Name identifies the syntax in logs and errors (e.g. "yaml").
	Name() string

	// Decode parses a complete, non-empty document.
	Decode(data []byte) (ir.Value, error)
}

// Registry maps extensions (without dot) to codecs.
type Registry map[string]Codec

// DefaultRegistry returns the built-in codecs: yml/yaml, json and hcl.
func DefaultRegistry() Registry {
	y := YAMLCodec{}
	return Registry{
		"yml":  y,
		"yaml": y,
		"json": JSONCodec{},
		"hcl":  HCLCodec{},
	}
}

// Lookup finds the codec for an extension, ignoring case and a leading dot.
func (r Registry) Lookup(ext string) (Codec, bool) {
	c, ok := r[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return c, ok
}

// Extensions returns the registered extensions in sorted order.
func (r Registry) Extensions() []string {
	exts := make([]string, 0, len(r))
	for ext := range r {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
