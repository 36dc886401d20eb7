package interp

import (
	"context"

	"github.com/ardnew/nia/value"
)

// registerStandardForms installs every special form spec §4.3 names. Special
// forms receive their argument forms unevaluated; each decides for itself
// which of them to evaluate and in which environment.
func (i *Interpreter) registerStandardForms() {
	i.RegisterSpecialForm("quote", sfQuote)
	i.RegisterSpecialForm("cond", sfCond)
	i.RegisterSpecialForm("progn", sfProgn)
	i.RegisterSpecialForm("set!", sfSetBang)
	i.RegisterSpecialForm("let", sfLet)
	i.RegisterSpecialForm("let*", sfLetStar)
	i.RegisterSpecialForm("fn", sfLambda)
	i.RegisterSpecialForm("lambda", sfLambda)
	i.RegisterSpecialForm("function", sfFunction)
	i.RegisterSpecialForm("flookup", sfFlookup)
	i.RegisterSpecialForm("try", sfTry)
	i.RegisterSpecialForm("define-variable", sfDefineVariable)
	i.RegisterSpecialForm("defv", sfDefineVariable)
	i.RegisterSpecialForm("define-function", sfDefineFunction)
	i.RegisterSpecialForm("defn", sfDefineFunction)
	i.RegisterSpecialForm("define-macro", sfDefineMacro)
	i.RegisterSpecialForm("defm", sfDefineMacro)
	i.RegisterSpecialForm("while", sfWhile)
	i.RegisterSpecialForm("dotimes", sfDotimes)
	i.RegisterSpecialForm("dokeys", sfDokeys)
	i.RegisterSpecialForm("dovalues", sfDovalues)
	i.RegisterSpecialForm("doitems", sfDoitems)
	i.RegisterSpecialForm("and", sfAnd)
	i.RegisterSpecialForm("or", sfOr)
	i.RegisterSpecialForm("when", sfWhen)
	i.RegisterSpecialForm("unless", sfUnless)
	i.RegisterSpecialForm("break", sfBreak)
	i.RegisterSpecialForm("continue", sfContinue)
}

func sfQuote(_ *Interpreter, _ value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) != 1 {
		return value.Value{}, Newf(InvalidArgumentCount, "quote expects exactly 1 form, got %d", len(forms))
	}

	return forms[0], nil
}

func sfProgn(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	return i.evalBody(context.Background(), env, forms)
}

// sfCond evaluates (test body...) clauses in order, returning the body of
// the first clause whose test is truthy. The bare symbol "else" always
// matches, conventionally used as a clause's test to provide a default.
func sfCond(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	ctx := context.Background()

	for _, clauseForm := range forms {
		clause, err := i.ListToVec(clauseForm)
		if err != nil {
			return value.Value{}, Newf(ParseError, "cond clause must be a list: %v", err)
		}

		if len(clause) == 0 {
			return value.Value{}, New(ParseError, "cond clause must not be empty")
		}

		matched := false

		if name, ok := i.symbolNameOf(clause[0]); ok && name == "else" {
			matched = true
		} else {
			test, terr := i.evaluate(ctx, env, clause[0])
			if terr != nil {
				return value.Value{}, terr
			}

			matched = !i.IsFalsy(test)
		}

		if matched {
			return i.evalBody(ctx, env, clause[1:])
		}
	}

	return i.NilValue(), nil
}

func sfSetBang(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) != 2 {
		return value.Value{}, Newf(InvalidArgumentCount, "set! expects (set! symbol value), got %d form(s)", len(forms))
	}

	if forms[0].Kind() != value.Symbol {
		return value.Value{}, New(InvalidArgument, "set! target must be a symbol")
	}

	v, err := i.evaluate(context.Background(), env, forms[1])
	if err != nil {
		return value.Value{}, err
	}

	if err := i.setVariable(env, forms[0].AsHandle(), v); err != nil {
		return value.Value{}, err
	}

	return v, nil
}

func sfLet(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	return i.letImpl(env, forms, false)
}

func sfLetStar(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	return i.letImpl(env, forms, true)
}

func (i *Interpreter) letImpl(env value.EnvironmentID, forms []value.Value, sequential bool) (value.Value, *Error) {
	if len(forms) == 0 {
		return value.Value{}, New(InvalidArgumentCount, "let requires a binding list")
	}

	ctx := context.Background()

	bindingForms, err := i.ListToVec(forms[0])
	if err != nil {
		return value.Value{}, Newf(ParseError, "let binding list must be a list: %v", err)
	}

	letEnv := i.newEnvironment(env)

	for _, bf := range bindingForms {
		sym, expr, err := i.parseLetBinding(bf)
		if err != nil {
			return value.Value{}, err
		}

		evalEnv := env
		if sequential {
			evalEnv = letEnv
		}

		v, err := i.evaluate(ctx, evalEnv, expr)
		if err != nil {
			return value.Value{}, err
		}

		if err := i.defineVariable(letEnv, sym, v, DefaultBindingFlags); err != nil {
			return value.Value{}, err
		}
	}

	return i.evalBody(ctx, letEnv, forms[1:])
}

// parseLetBinding reads either a bare symbol (bound to nil) or a (symbol
// expr) pair.
func (i *Interpreter) parseLetBinding(bf value.Value) (value.SymbolID, value.Value, *Error) {
	if bf.Kind() == value.Symbol {
		return bf.AsHandle(), i.NilValue(), nil
	}

	pair, err := i.ListToVec(bf)
	if err != nil || len(pair) != 2 || pair[0].Kind() != value.Symbol {
		return 0, value.Value{}, New(ParseError, "let binding must be a symbol or a (symbol expr) pair")
	}

	return pair[0].AsHandle(), pair[1], nil
}

func sfLambda(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) < 1 {
		return value.Value{}, New(InvalidArgumentCount, "fn requires a parameter list")
	}

	return i.makeFunctionValue(env, FuncInterpreted, "", forms[0], forms[1:])
}

// sfFunction resolves its single argument to a function value: a symbol is
// looked up in the function namespace, any other form is evaluated and must
// already produce a function (e.g. a nested lambda expression).
func sfFunction(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) != 1 {
		return value.Value{}, Newf(InvalidArgumentCount, "function expects exactly 1 form, got %d", len(forms))
	}

	if forms[0].Kind() == value.Symbol && !i.IsNil(forms[0]) {
		if v, err := i.lookupFunction(env, forms[0].AsHandle()); err == nil {
			return v, nil
		}
	}

	v, err := i.evaluate(context.Background(), env, forms[0])
	if err != nil {
		return value.Value{}, err
	}

	if v.Kind() != value.Function {
		return value.Value{}, New(InvalidArgument, "function expects a function-valued expression")
	}

	return v, nil
}

func sfFlookup(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) != 1 || forms[0].Kind() != value.Symbol {
		return value.Value{}, New(InvalidArgument, "flookup expects exactly 1 symbol")
	}

	return i.lookupFunction(env, forms[0].AsHandle())
}

// sfTry evaluates its first form and, on error, dispatches to the first
// matching catch clause: (catch sym handler...). sym is evaluated, so a
// quoted symbol like 'zero-division-error yields the symbol itself; its
// printed name is compared against the total-cause error's SymbolName. A
// match binds CaughtErrorName to an object describing the error
// ({:kind :message :symbol}) and evaluates handler... in that environment.
func sfTry(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) < 1 {
		return value.Value{}, New(InvalidArgumentCount, "try requires a protected expression")
	}

	ctx := context.Background()

	result, evalErr := i.evaluate(ctx, env, forms[0])
	if evalErr == nil {
		return result, nil
	}

	cause := evalErr.TotalCause()

	for _, clauseForm := range forms[1:] {
		clause, err := i.ListToVec(clauseForm)
		if err != nil || len(clause) == 0 {
			return value.Value{}, New(ParseError, "try clause must be a non-empty list")
		}

		if name, ok := i.symbolNameOf(clause[0]); !ok || name != "catch" {
			return value.Value{}, New(ParseError, "try clauses must start with catch")
		}

		rest := clause[1:]
		if len(rest) == 0 {
			return value.Value{}, New(ParseError, "catch clause requires a target form")
		}

		target, terr := i.evaluate(ctx, env, rest[0])
		if terr != nil {
			return value.Value{}, terr
		}

		targetName, ok := i.symbolNameOf(target)
		if !ok {
			return value.Value{}, New(ParseError, "catch target must evaluate to a symbol")
		}

		if targetName != cause.SymbolName {
			continue
		}

		body := rest[1:]

		catchEnv := i.newEnvironment(env)

		errObj, objErr := i.errorToObject(evalErr)
		if objErr != nil {
			return value.Value{}, objErr
		}

		caughtSym := i.internSymbol(CaughtErrorName)
		if err := i.defineVariable(catchEnv, caughtSym, errObj, DefaultBindingFlags); err != nil {
			return value.Value{}, err
		}

		return i.evalBody(ctx, catchEnv, body)
	}

	return value.Value{}, evalErr
}

// errorToObject renders an *Error as a frozen object for catch bindings.
func (i *Interpreter) errorToObject(e *Error) (value.Value, *Error) {
	objID := i.objects.Allocate(ObjectRecord{Slots: make(map[value.SymbolID]PropertySlot), Frozen: true})

	kindSym := i.internSymbol("kind")
	msgSym := i.internSymbol("message")
	symSym := i.internSymbol("symbol")

	rec, err := i.objects.GetPtr(objID)
	if err != nil {
		return value.Value{}, New(Failure, err.Error())
	}

	rec.Slots[kindSym] = PropertySlot{Value: value.Kwd(i.internKeyword(e.Kind.String())), Flags: DefaultSlotFlags}
	rec.Slots[msgSym] = PropertySlot{Value: value.Str(i.internString(e.Message)), Flags: DefaultSlotFlags}
	rec.Slots[symSym] = PropertySlot{Value: value.Str(i.internString(e.SymbolName)), Flags: DefaultSlotFlags}

	return value.Obj(objID), nil
}

func sfDefineVariable(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) != 2 || forms[0].Kind() != value.Symbol {
		return value.Value{}, New(InvalidArgumentCount, "define-variable expects (define-variable symbol expr)")
	}

	v, err := i.evaluate(context.Background(), env, forms[1])
	if err != nil {
		return value.Value{}, err
	}

	if err := i.defineVariable(env, forms[0].AsHandle(), v, DefaultBindingFlags); err != nil {
		return value.Value{}, err
	}

	return v, nil
}

func sfDefineFunction(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	return i.defineNamed(env, forms, FuncInterpreted)
}

func sfDefineMacro(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	return i.defineNamed(env, forms, FuncMacro)
}

func (i *Interpreter) defineNamed(env value.EnvironmentID, forms []value.Value, kind FunctionKind) (value.Value, *Error) {
	if len(forms) < 2 || forms[0].Kind() != value.Symbol {
		return value.Value{}, New(InvalidArgumentCount, "expected (name (params...) body...)")
	}

	name, _ := i.SymbolName(forms[0].AsHandle())

	fnVal, err := i.makeFunctionValue(env, kind, name, forms[1], forms[2:])
	if err != nil {
		return value.Value{}, err
	}

	if err := i.defineFunction(env, forms[0].AsHandle(), fnVal, DefaultBindingFlags); err != nil {
		return value.Value{}, err
	}

	return fnVal, nil
}

func (i *Interpreter) makeFunctionValue(env value.EnvironmentID, kind FunctionKind, name string, paramsForm value.Value, body []value.Value) (value.Value, *Error) {
	paramList, err := i.ListToVec(paramsForm)
	if err != nil {
		return value.Value{}, Newf(ParseError, "parameter list must be a list: %v", err)
	}

	spec, perr := i.parseParamSpec(paramList)
	if perr != nil {
		return value.Value{}, perr
	}

	fnID := i.functions.Allocate(FunctionRecord{
		Kind:      kind,
		ParentEnv: env,
		Params:    spec,
		Body:      body,
		Name:      name,
	})

	return value.Fn(fnID), nil
}

func sfWhile(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) < 1 {
		return value.Value{}, New(InvalidArgumentCount, "while requires a test expression")
	}

	ctx := context.Background()
	test, body := forms[0], forms[1:]

	for {
		c, err := i.evaluate(ctx, env, test)
		if err != nil {
			return value.Value{}, err
		}

		if i.IsFalsy(c) {
			return i.NilValue(), nil
		}

		_, bodyErr := i.evalBody(ctx, env, body)
		if bodyErr != nil {
			if stop, _ := loopControl(bodyErr); stop {
				return i.NilValue(), nil
			} else if bodyErr.Kind != Continue {
				return value.Value{}, bodyErr
			}
		}
	}
}

// loopControl inspects an error returned from a loop body: Break stops the
// loop (the caller returns nil), Continue advances to the next iteration,
// and anything else must propagate. It reports stop=true only for Break.
func loopControl(e *Error) (stop bool, nilValue value.Value) {
	if e.Kind == Break {
		return true, value.Value{}
	}

	return false, value.Value{}
}

func sfDotimes(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) < 1 {
		return value.Value{}, New(InvalidArgumentCount, "dotimes requires a (var count) binding")
	}

	ctx := context.Background()

	binding, err := i.ListToVec(forms[0])
	if err != nil || len(binding) != 2 || binding[0].Kind() != value.Symbol {
		return value.Value{}, New(ParseError, "dotimes binding must be (var count-expr)")
	}

	countVal, err := i.evaluate(ctx, env, binding[1])
	if err != nil {
		return value.Value{}, err
	}

	if countVal.Kind() != value.Integer {
		return value.Value{}, New(InvalidArgument, "dotimes count must be an integer")
	}

	body := forms[1:]

	for n := int64(0); n < countVal.AsInt(); n++ {
		iterEnv := i.newEnvironment(env)
		if err := i.defineVariable(iterEnv, binding[0].AsHandle(), value.Int(n), DefaultBindingFlags); err != nil {
			return value.Value{}, err
		}

		_, bodyErr := i.evalBody(ctx, iterEnv, body)
		if bodyErr != nil {
			if stop, _ := loopControl(bodyErr); stop {
				break
			} else if bodyErr.Kind != Continue {
				return value.Value{}, bodyErr
			}
		}
	}

	return i.NilValue(), nil
}

func sfDokeys(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	return i.doObjectLoop(env, forms, func(sym value.SymbolID, _ PropertySlot) []value.Value {
		return []value.Value{value.Sym(sym)}
	})
}

func sfDovalues(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	return i.doObjectLoop(env, forms, func(_ value.SymbolID, slot PropertySlot) []value.Value {
		return []value.Value{slot.Value}
	})
}

func sfDoitems(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	return i.doObjectLoop(env, forms, func(sym value.SymbolID, slot PropertySlot) []value.Value {
		return []value.Value{value.Sym(sym), slot.Value}
	})
}

// doObjectLoop backs dokeys/dovalues/doitems: each binds one or more
// variables (decided by project) from every enumerable slot of an object,
// in a stable order, evaluating the loop body once per slot.
func (i *Interpreter) doObjectLoop(
	env value.EnvironmentID,
	forms []value.Value,
	project func(value.SymbolID, PropertySlot) []value.Value,
) (value.Value, *Error) {
	if len(forms) < 1 {
		return value.Value{}, New(InvalidArgumentCount, "do-loop requires a binding form")
	}

	ctx := context.Background()

	binding, err := i.ListToVec(forms[0])
	if err != nil || len(binding) < 2 {
		return value.Value{}, New(ParseError, "do-loop binding must be (var... obj-expr)")
	}

	vars := binding[:len(binding)-1]
	for _, v := range vars {
		if v.Kind() != value.Symbol {
			return value.Value{}, New(ParseError, "do-loop binding variables must be symbols")
		}
	}

	objVal, err := i.evaluate(ctx, env, binding[len(binding)-1])
	if err != nil {
		return value.Value{}, err
	}

	if objVal.Kind() != value.Object {
		return value.Value{}, New(InvalidArgument, "do-loop expects an object expression")
	}

	slots, err := i.enumerableSlots(objVal.AsHandle())
	if err != nil {
		return value.Value{}, err
	}

	body := forms[1:]

	for _, s := range slots {
		vals := project(s.Sym, s.Slot)

		iterEnv := i.newEnvironment(env)

		for idx, v := range vars {
			bindVal := i.NilValue()
			if idx < len(vals) {
				bindVal = vals[idx]
			}

			if err := i.defineVariable(iterEnv, v.AsHandle(), bindVal, DefaultBindingFlags); err != nil {
				return value.Value{}, err
			}
		}

		_, bodyErr := i.evalBody(ctx, iterEnv, body)
		if bodyErr != nil {
			if stop, _ := loopControl(bodyErr); stop {
				break
			} else if bodyErr.Kind != Continue {
				return value.Value{}, bodyErr
			}
		}
	}

	return i.NilValue(), nil
}

func sfAnd(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	ctx := context.Background()
	result := value.Bool(true)

	for _, f := range forms {
		v, err := i.evaluate(ctx, env, f)
		if err != nil {
			return value.Value{}, err
		}

		if i.IsFalsy(v) {
			return v, nil
		}

		result = v
	}

	return result, nil
}

func sfOr(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	ctx := context.Background()
	result := i.NilValue()

	for _, f := range forms {
		v, err := i.evaluate(ctx, env, f)
		if err != nil {
			return value.Value{}, err
		}

		if !i.IsFalsy(v) {
			return v, nil
		}

		result = v
	}

	return result, nil
}

func sfWhen(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) < 1 {
		return value.Value{}, New(InvalidArgumentCount, "when requires a test expression")
	}

	ctx := context.Background()

	test, err := i.evaluate(ctx, env, forms[0])
	if err != nil {
		return value.Value{}, err
	}

	if i.IsFalsy(test) {
		return i.NilValue(), nil
	}

	return i.evalBody(ctx, env, forms[1:])
}

func sfUnless(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error) {
	if len(forms) < 1 {
		return value.Value{}, New(InvalidArgumentCount, "unless requires a test expression")
	}

	ctx := context.Background()

	test, err := i.evaluate(ctx, env, forms[0])
	if err != nil {
		return value.Value{}, err
	}

	if !i.IsFalsy(test) {
		return i.NilValue(), nil
	}

	return i.evalBody(ctx, env, forms[1:])
}

func sfBreak(_ *Interpreter, _ value.EnvironmentID, _ []value.Value) (value.Value, *Error) {
	return value.Value{}, New(Break, "break outside a loop")
}

func sfContinue(_ *Interpreter, _ value.EnvironmentID, _ []value.Value) (value.Value, *Error) {
	return value.Value{}, New(Continue, "continue outside a loop")
}

// symbolNameOf reports the printed name of v if it is a symbol.
func (i *Interpreter) symbolNameOf(v value.Value) (string, bool) {
	if v.Kind() != value.Symbol {
		return "", false
	}

	name, err := i.SymbolName(v.AsHandle())
	if err != nil {
		return "", false
	}

	return name, true
}
