package expression

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ToCty converts a JSON-compatible Go value to a cty value.
func ToCty(value any) (cty.Value, error) {
	if value == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return cty.NilVal, fmt.Errorf("value is not JSON compatible: %w", err)
	}

	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}

	return ctyjson.Unmarshal(raw, ty)
}

// FromCty converts a cty value to its natural Go form: string, float64, bool, []any or
// map[string]any. Null and unknown values become nil.
func FromCty(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}

		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())

		it := v.ElementIterator()
		for it.Next() {
			_, element := it.Element()

			native, err := FromCty(element)
			if err != nil {
				return nil, err
			}

			out = append(out, native)
		}

		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)

		it := v.ElementIterator()
		for it.Next() {
			key, element := it.Element()

			native, err := FromCty(element)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}

			out[key.AsString()] = native
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
