package document

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/confql/internal/ir"
)

// YAMLCodec decodes YAML documents.
//
// Decoding goes through yaml.Node rather than interface{} so that every
// resolved tag maps onto exactly one Value variant: !!int and !!float
// become Number, !!timestamp stays a String, aliases are followed and
// merge keys ("<<") supply defaults that explicit keys override.
type YAMLCodec struct{}

// Name implements Codec.
func (YAMLCodec) Name() string { return "yaml" }

// Decode implements Codec. Only the first document of a stream is read.
func (YAMLCodec) Decode(data []byte) (ir.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromYAMLNode(&doc)
}

// FromYAMLNode converts a node that is already parsed, for instance a
// field of a larger YAML file. The zero node is Null.
func FromYAMLNode(n *yaml.Node) (ir.Value, error) {
	return fromYAMLNode(n)
}

func fromYAMLNode(n *yaml.Node) (ir.Value, error) {
	switch n.Kind {
	case 0:
		return ir.Null{}, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return ir.Null{}, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias", n.Line)
		}
		return fromYAMLNode(n.Alias)
	case yaml.SequenceNode:
		seq := make(ir.Sequence, 0, len(n.Content))
		for i, child := range n.Content {
			v, err := fromYAMLNode(child)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.MappingNode:
		return fromYAMLMapping(n)
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

func fromYAMLMapping(n *yaml.Node) (ir.Value, error) {
	out := make(ir.Mapping, len(n.Content)/2)
	var defaults []ir.Value

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
			keyNode = keyNode.Alias
		}
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}

		v, err := fromYAMLNode(valNode)
		if err != nil {
			return nil, fmt.Errorf("[%q]: %w", keyNode.Value, err)
		}

		if keyNode.ShortTag() == "!!merge" {
			switch merged := v.(type) {
			case ir.Mapping:
				defaults = append(defaults, merged)
			case ir.Sequence:
				defaults = append(defaults, merged...)
			default:
				return nil, fmt.Errorf("line %d: merge key needs a mapping", keyNode.Line)
			}
			continue
		}
		out[keyNode.Value] = v
	}

	if len(defaults) == 0 {
		return out, nil
	}

	// Earlier merge sources win over later ones, explicit keys win over all.
	var base ir.Value = ir.Null{}
	for i := len(defaults) - 1; i >= 0; i-- {
		merged, err := ir.Merge(base, ir.Clone(defaults[i]))
		if err != nil {
			return nil, err
		}
		base = merged
	}
	m, ok := base.(ir.Mapping)
	if !ok {
		return nil, fmt.Errorf("line %d: merge key needs a mapping", n.Line)
	}
	for k, v := range out {
		m[k] = v
	}
	return m, nil
}

func fromYAMLScalar(n *yaml.Node) (ir.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return ir.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return ir.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return ir.Number(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return ir.Number(u), nil
		}
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
		return ir.Number(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return ir.Number(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return ir.String(n.Value), nil
	}
}
