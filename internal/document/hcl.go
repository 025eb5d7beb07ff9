package document

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/roach88/confql/internal/ir"
)

// HCLCodec decodes HCL native-syntax documents.
//
// Attributes become mapping entries. A block becomes a nested mapping
// keyed by its type and then by each label, so
//
//	service "web" { port = 80 }
//
// decodes to {service: {web: {port: 80}}}. Repeated blocks with the same
// type and labels are merged. Expressions are evaluated without variables
// or functions; references fail to decode.
type HCLCodec struct{}

// Name implements Codec.
func (HCLCodec) Name() string { return "hcl" }

// Decode implements Codec.
func (HCLCodec) Decode(data []byte) (ir.Value, error) {
	file, diags := hclsyntax.ParseConfig(data, "document.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected HCL body type %T", file.Body)
	}
	return fromHCLBody(body)
}

func fromHCLBody(body *hclsyntax.Body) (ir.Value, error) {
	out := make(ir.Mapping, len(body.Attributes))

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		attr := body.Attributes[name]
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		v, err := fromCty(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = v
	}

	var merged ir.Value = out
	for _, block := range body.Blocks {
		inner, err := fromHCLBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", block.Type, err)
		}
		for i := len(block.Labels) - 1; i >= 0; i-- {
			inner = ir.Mapping{block.Labels[i]: inner}
		}
		merged, err = ir.MergeAt(merged, block.Type, inner)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", block.Type, err)
		}
	}
	return merged, nil
}

// fromCty converts an evaluated HCL expression value.
func fromCty(v cty.Value) (ir.Value, error) {
	if v.IsNull() {
		return ir.Null{}, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known without evaluation context")
	}

	t := v.Type()
	switch {
	case t == cty.String:
		return ir.String(v.AsString()), nil
	case t == cty.Bool:
		return ir.Bool(v.True()), nil
	case t == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return ir.Number(f), nil
	case t.IsObjectType() || t.IsMapType():
		out := make(ir.Mapping)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			converted, err := fromCty(ev)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k.AsString(), err)
			}
			out[k.AsString()] = converted
		}
		return out, nil
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		out := make(ir.Sequence, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			converted, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported HCL type %s", t.FriendlyName())
	}
}
