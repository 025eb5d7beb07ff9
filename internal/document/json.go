package document

import (
	"github.com/ohler55/ojg/oj"

	"github.com/roach88/confql/internal/ir"
)

// JSONCodec decodes JSON documents with ojg.
type JSONCodec struct{}

// Name implements Codec.
func (JSONCodec) Name() string { return "json" }

// Decode implements Codec.
func (JSONCodec) Decode(data []byte) (ir.Value, error) {
	native, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	return ir.FromNative(native)
}
