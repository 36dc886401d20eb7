package interp

import (
	"context"

	"github.com/ardnew/nia/value"
)

// BindArguments binds args into fnEnv according to spec, implementing the
// ordinary/optional/rest/keys parameter protocol (spec §4.5). Ordinary
// parameters are required and positional. After them, a function accepts
// either an optional list (with an optional trailing rest parameter) or a
// keys list, never both — ParamSpec values are only ever built by the
// special forms that parse parameter lists, so that exclusivity is already
// guaranteed by construction here, not re-checked.
//
// Optional and key defaults are expressions, not values: each is evaluated
// in fnEnv only when its argument is missing, after every preceding
// parameter has already been bound, so a later default may reference an
// earlier parameter by name.
func (i *Interpreter) BindArguments(ctx context.Context, fnEnv value.EnvironmentID, spec ParamSpec, args []value.Value) *Error {
	if len(args) < len(spec.Ordinary) {
		return Newf(InvalidArgumentCount, "expected at least %d argument(s), got %d", len(spec.Ordinary), len(args))
	}

	for idx, sym := range spec.Ordinary {
		if err := i.defineVariable(fnEnv, sym, args[idx], DefaultBindingFlags); err != nil {
			return err
		}
	}

	rest := args[len(spec.Ordinary):]

	if len(spec.Keys) > 0 {
		return i.bindKeys(ctx, fnEnv, spec.Keys, rest)
	}

	return i.bindOptionalAndRest(ctx, fnEnv, spec, rest)
}

func (i *Interpreter) bindOptionalAndRest(ctx context.Context, fnEnv value.EnvironmentID, spec ParamSpec, rest []value.Value) *Error {
	consumed := 0

	for _, pd := range spec.Optional {
		var (
			provided value.Value
			has      bool
		)

		if consumed < len(rest) {
			provided = rest[consumed]
			has = true
			consumed++
		}

		if err := i.bindParamDefault(ctx, fnEnv, pd, provided, has); err != nil {
			return err
		}
	}

	remainder := rest[consumed:]

	switch {
	case spec.HasRest:
		if err := i.defineVariable(fnEnv, spec.Rest, i.VecToList(remainder), DefaultBindingFlags); err != nil {
			return err
		}
	case len(remainder) > 0:
		return Newf(InvalidArgumentCount, "too many arguments: %d unconsumed", len(remainder))
	}

	return nil
}

func (i *Interpreter) bindKeys(ctx context.Context, fnEnv value.EnvironmentID, keys []ParamDefault, rest []value.Value) *Error {
	if len(rest)%2 != 0 {
		return New(InvalidArgumentCount, "keyword arguments must be supplied in :key value pairs")
	}

	supplied := make(map[string]value.Value, len(rest)/2)

	for idx := 0; idx < len(rest); idx += 2 {
		keyForm := rest[idx]
		if keyForm.Kind() != value.Keyword {
			return New(InvalidArgument, "keyword argument name must be a keyword")
		}

		rec, err := i.keywords.Arena().Get(keyForm.AsHandle())
		if err != nil {
			return New(Failure, err.Error())
		}

		supplied[rec.Name] = rest[idx+1]
	}

	for _, pd := range keys {
		name, err := i.SymbolName(pd.Name)
		if err != nil {
			return err
		}

		provided, has := supplied[name]
		delete(supplied, name)

		if err := i.bindParamDefault(ctx, fnEnv, pd, provided, has); err != nil {
			return err
		}
	}

	if len(supplied) > 0 {
		for name := range supplied {
			return Newf(InvalidArgument, "unknown keyword argument :%s", name)
		}
	}

	return nil
}

func (i *Interpreter) bindParamDefault(ctx context.Context, fnEnv value.EnvironmentID, pd ParamDefault, provided value.Value, has bool) *Error {
	v := provided

	if !has {
		if pd.HasDefault {
			dv, err := i.evaluate(ctx, fnEnv, pd.Default)
			if err != nil {
				return err
			}

			v = dv
		} else {
			v = i.NilValue()
		}
	}

	if err := i.defineVariable(fnEnv, pd.Name, v, DefaultBindingFlags); err != nil {
		return err
	}

	if pd.HasProvided {
		if err := i.defineVariable(fnEnv, pd.ProvidedSym, value.Bool(has), DefaultBindingFlags); err != nil {
			return err
		}
	}

	return nil
}
