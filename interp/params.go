package interp

import "github.com/ardnew/nia/value"

// parseParamSpec reads a flat parameter-list form (as written after fn/defn's
// name) into a ParamSpec. The list is ordinary parameters, then optionally
// "#opt" followed by optional parameters and at most one "#rest" parameter,
// or "#rest" alone, or "#keys" followed by keyword parameters — never both
// #opt/#rest and #keys (spec §4.5).
func (i *Interpreter) parseParamSpec(params []value.Value) (ParamSpec, *Error) {
	var spec ParamSpec

	mode := "ordinary"

	for _, p := range params {
		if p.Kind() == value.Symbol {
			if name, err := i.SymbolName(p.AsHandle()); err == nil {
				switch name {
				case OptName:
					mode = "optional"

					continue
				case RestName:
					mode = "rest"

					continue
				case KeysName:
					mode = "keys"

					continue
				}
			}
		}

		switch mode {
		case "ordinary":
			if p.Kind() != value.Symbol {
				return spec, New(ParseError, "ordinary parameter must be a symbol")
			}

			spec.Ordinary = append(spec.Ordinary, p.AsHandle())

		case "rest":
			if p.Kind() != value.Symbol {
				return spec, New(ParseError, "rest parameter must be a symbol")
			}

			if spec.HasRest {
				return spec, New(ParseError, "only one rest parameter is allowed")
			}

			spec.Rest = p.AsHandle()
			spec.HasRest = true

		case "optional":
			pd, err := i.parseParamDefault(p)
			if err != nil {
				return spec, err
			}

			spec.Optional = append(spec.Optional, pd)

		case "keys":
			pd, err := i.parseParamDefault(p)
			if err != nil {
				return spec, err
			}

			spec.Keys = append(spec.Keys, pd)
		}
	}

	if (len(spec.Optional) > 0 || spec.HasRest) && len(spec.Keys) > 0 {
		return spec, New(ParseError, "a parameter list cannot mix #opt/#rest and #keys")
	}

	return spec, nil
}

// parseParamDefault reads one #opt/#keys entry: either a bare symbol, or a
// list (name), (name default), or (name default provided-p).
func (i *Interpreter) parseParamDefault(p value.Value) (ParamDefault, *Error) {
	if p.Kind() == value.Symbol {
		return ParamDefault{Name: p.AsHandle()}, nil
	}

	elems, err := i.ListToVec(p)
	if err != nil {
		return ParamDefault{}, New(ParseError, "optional/key parameter must be a symbol or a (name [default [provided?]]) list")
	}

	if len(elems) < 1 || len(elems) > 3 {
		return ParamDefault{}, New(ParseError, "optional/key parameter list must have 1 to 3 elements")
	}

	if elems[0].Kind() != value.Symbol {
		return ParamDefault{}, New(ParseError, "parameter name must be a symbol")
	}

	pd := ParamDefault{Name: elems[0].AsHandle()}

	if len(elems) >= 2 {
		pd.Default = elems[1]
		pd.HasDefault = true
	}

	if len(elems) == 3 {
		if elems[2].Kind() != value.Symbol {
			return ParamDefault{}, New(ParseError, "provided-p name must be a symbol")
		}

		pd.ProvidedSym = elems[2].AsHandle()
		pd.HasProvided = true
	}

	return pd, nil
}
