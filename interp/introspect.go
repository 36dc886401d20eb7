package interp

import (
	"strings"

	"github.com/ardnew/nia/value"
)

// Signature renders name and the formal parameter list of the function bound
// to name in env's function namespace, e.g. "(f x y #opt z #rest more)" for
// f, and also returns the parameter entries as a slice. It returns
// false if name is unbound or is not a function with a ParamSpec (a builtin
// or special form has no ParamSpec to render). Hosts use this for REPL
// argument hints.
func (i *Interpreter) Signature(env value.EnvironmentID, name string) (string, []string, bool) {
	sym := i.internSymbol(name)

	v, err := i.lookupFunction(env, sym)
	if err != nil || v.Kind() != value.Function {
		return "", nil, false
	}

	rec, gerr := i.functions.Get(v.AsHandle())
	if gerr != nil || (rec.Kind != FuncInterpreted && rec.Kind != FuncMacro) {
		return "", nil, false
	}

	var params []string

	for _, sym := range rec.Params.Ordinary {
		n, _ := i.SymbolName(sym)
		params = append(params, n)
	}

	if len(rec.Params.Optional) > 0 {
		params = append(params, OptName)

		for _, pd := range rec.Params.Optional {
			n, _ := i.SymbolName(pd.Name)
			params = append(params, n)
		}
	}

	if rec.Params.HasRest {
		params = append(params, RestName)

		n, _ := i.SymbolName(rec.Params.Rest)
		params = append(params, n)
	}

	if len(rec.Params.Keys) > 0 {
		params = append(params, KeysName)

		for _, pd := range rec.Params.Keys {
			n, _ := i.SymbolName(pd.Name)
			params = append(params, n)
		}
	}

	return "(" + name + " " + strings.Join(params, " ") + ")", params, true
}
