package interp

import (
	"github.com/goccy/go-yaml"

	"github.com/ardnew/nia/value"
)

// ToNative converts a Value into the closest native Go representation:
// int64, float64, bool, string, []any for a proper list, map[string]any for
// an object, and nil for the canonical nil symbol. Any other symbol
// converts to its printed name. This is the bridge host code uses to read a
// script's result without walking arena handles itself.
func (i *Interpreter) ToNative(v value.Value) (any, *Error) {
	switch v.Kind() {
	case value.Integer:
		return v.AsInt(), nil

	case value.Float:
		return v.AsFloat(), nil

	case value.Boolean:
		return v.AsBool(), nil

	case value.Symbol:
		if i.IsNil(v) {
			return nil, nil
		}

		return i.SymbolName(v.AsHandle())

	case value.Keyword:
		rec, err := i.keywords.Arena().Get(v.AsHandle())
		if err != nil {
			return nil, New(Failure, err.Error())
		}

		return rec.Name, nil

	case value.String:
		rec, err := i.strings.Arena().Get(v.AsHandle())
		if err != nil {
			return nil, New(Failure, err.Error())
		}

		return rec.Bytes, nil

	case value.Cons:
		elems, err := i.ListToVec(v)
		if err != nil {
			return nil, err
		}

		out := make([]any, len(elems))

		for idx, e := range elems {
			n, err := i.ToNative(e)
			if err != nil {
				return nil, err
			}

			out[idx] = n
		}

		return out, nil

	case value.Object:
		return i.objectToNative(v.AsHandle())

	case value.Function:
		rec, err := i.functions.Get(v.AsHandle())
		if err != nil {
			return nil, New(Failure, err.Error())
		}

		return "#<function:" + rec.Name + ">", nil

	default:
		return nil, Newf(Failure, "unknown value kind %v", v.Kind())
	}
}

func (i *Interpreter) objectToNative(id value.ObjectID) (any, *Error) {
	slots, err := i.enumerableSlots(id)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(slots))

	for _, s := range slots {
		name, err := i.SymbolName(s.Sym)
		if err != nil {
			return nil, err
		}

		n, err := i.ToNative(s.Slot.Value)
		if err != nil {
			return nil, err
		}

		out[name] = n
	}

	return out, nil
}

// MarshalYAML renders v as YAML text, by way of its native Go
// representation, for host diagnostics.
func (i *Interpreter) MarshalYAML(v value.Value) ([]byte, *Error) {
	native, err := i.ToNative(v)
	if err != nil {
		return nil, err
	}

	out, merr := yaml.Marshal(native)
	if merr != nil {
		return nil, New(Failure, merr.Error())
	}

	return out, nil
}
