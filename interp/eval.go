package interp

import (
	"context"

	"github.com/ardnew/nia/value"
)

// evaluate is the single dispatch point for every Value kind (spec §4.3).
// Integers, floats, booleans, strings, keywords, objects, and functions are
// self-evaluating. Symbols look themselves up as variables, except the
// canonical nil symbol, which evaluates to itself. Cons cells are function
// calls, dispatched on the callee's FunctionKind.
func (i *Interpreter) evaluate(ctx context.Context, env value.EnvironmentID, v value.Value) (value.Value, *Error) {
	if err := ctx.Err(); err != nil {
		return value.Value{}, New(GenericExecution, err.Error())
	}

	switch v.Kind() {
	case value.Symbol:
		if i.IsNil(v) {
			return v, nil
		}

		return i.lookupVariable(env, v.AsHandle())

	case value.Cons:
		return i.evalCons(ctx, env, v.AsHandle())

	default:
		return v, nil
	}
}

func (i *Interpreter) evalCons(ctx context.Context, env value.EnvironmentID, id value.ConsID) (value.Value, *Error) {
	rec, err := i.cons.Get(id)
	if err != nil {
		return value.Value{}, New(Failure, err.Error())
	}

	head := rec.Car

	argForms, err := i.ListToVec(rec.Cdr)
	if err != nil {
		return value.Value{}, err
	}

	fnID, err := i.resolveCallee(ctx, env, head)
	if err != nil {
		return value.Value{}, err
	}

	frec, gerr := i.functions.Get(fnID)
	if gerr != nil {
		return value.Value{}, New(Failure, gerr.Error())
	}

	if i.callStack.Len() >= i.maxCallDepth {
		return value.Value{}, New(GenericExecution, "stack overflow: maximum call depth exceeded")
	}

	if head.Kind() == value.Symbol && !i.IsNil(head) {
		i.callStack.PushNamed(fnID, head.AsHandle(), argForms)
	} else {
		i.callStack.PushAnonymous(fnID, argForms)
	}

	defer i.callStack.Pop()

	switch frec.Kind {
	case FuncSpecialForm:
		return frec.NativeForm(i, env, argForms)

	case FuncMacro:
		return i.expandAndEvalMacro(ctx, env, frec, argForms)

	case FuncBuiltin:
		args, err := i.evalForms(ctx, env, argForms)
		if err != nil {
			return value.Value{}, err
		}

		return frec.Native(i, env, args)

	case FuncInterpreted:
		args, err := i.evalForms(ctx, env, argForms)
		if err != nil {
			return value.Value{}, err
		}

		return i.callInterpreted(ctx, frec, args)

	default:
		return value.Value{}, New(Failure, "unknown function kind")
	}
}

// resolveCallee finds the Function handle a call's head form names. A
// symbol head is looked up in the function namespace first (Lisp-2
// discipline, spec §3); if that namespace has no binding for it, the head is
// evaluated as an ordinary expression instead, so a variable holding a
// function value can be called directly, e.g. ((lambda holding var) ...).
func (i *Interpreter) resolveCallee(ctx context.Context, env value.EnvironmentID, head value.Value) (value.FunctionID, *Error) {
	if head.Kind() == value.Symbol && !i.IsNil(head) {
		if v, err := i.lookupFunction(env, head.AsHandle()); err == nil {
			if v.Kind() != value.Function {
				return 0, New(InvalidArgument, "function-namespace binding is not a function")
			}

			return v.AsHandle(), nil
		}
	}

	v, err := i.evaluate(ctx, env, head)
	if err != nil {
		return 0, err
	}

	if v.Kind() != value.Function {
		return 0, New(InvalidArgument, "value is not callable")
	}

	return v.AsHandle(), nil
}

func (i *Interpreter) evalForms(ctx context.Context, env value.EnvironmentID, forms []value.Value) ([]value.Value, *Error) {
	out := make([]value.Value, len(forms))

	for idx, f := range forms {
		v, err := i.evaluate(ctx, env, f)
		if err != nil {
			return nil, err
		}

		out[idx] = v
	}

	return out, nil
}

func (i *Interpreter) callInterpreted(ctx context.Context, frec FunctionRecord, args []value.Value) (value.Value, *Error) {
	fnEnv := i.newEnvironment(frec.ParentEnv)

	if err := i.BindArguments(ctx, fnEnv, frec.Params, args); err != nil {
		return value.Value{}, err
	}

	return i.evalBody(ctx, fnEnv, frec.Body)
}

// expandAndEvalMacro binds argForms unevaluated (macros see syntax, not
// values), evaluates the macro body to produce an expansion, then evaluates
// that expansion back in the call site's environment.
func (i *Interpreter) expandAndEvalMacro(ctx context.Context, env value.EnvironmentID, frec FunctionRecord, argForms []value.Value) (value.Value, *Error) {
	macroEnv := i.newEnvironment(frec.ParentEnv)

	if err := i.BindArguments(ctx, macroEnv, frec.Params, argForms); err != nil {
		return value.Value{}, err
	}

	expansion, err := i.evalBody(ctx, macroEnv, frec.Body)
	if err != nil {
		return value.Value{}, err
	}

	return i.evaluate(ctx, env, expansion)
}

// CallFunction invokes a function value directly with already-evaluated
// arguments, bypassing form evaluation. Host built-ins use this to call
// back into user code (list:map, list:filter, list:fold).
func (i *Interpreter) CallFunction(fnID value.FunctionID, args []value.Value) (value.Value, *Error) {
	ctx := context.Background()

	frec, err := i.functions.Get(fnID)
	if err != nil {
		return value.Value{}, New(Failure, err.Error())
	}

	if i.callStack.Len() >= i.maxCallDepth {
		return value.Value{}, New(GenericExecution, "stack overflow: maximum call depth exceeded")
	}

	i.callStack.PushAnonymous(fnID, args)
	defer i.callStack.Pop()

	switch frec.Kind {
	case FuncBuiltin:
		return frec.Native(i, i.rootEnv, args)
	case FuncInterpreted:
		return i.callInterpreted(ctx, frec, args)
	default:
		return value.Value{}, New(InvalidArgument, "cannot call a special form or macro as a value")
	}
}

// evalBody evaluates forms in sequence (progn semantics), returning the last
// result, or nil for an empty body.
func (i *Interpreter) evalBody(ctx context.Context, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	result := i.NilValue()

	for _, f := range forms {
		v, err := i.evaluate(ctx, env, f)
		if err != nil {
			return value.Value{}, err
		}

		result = v
	}

	return result, nil
}
