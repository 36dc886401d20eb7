package interp

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ardnew/nia/value"
)

// registerStandardBuiltins installs every built-in procedure spec §4.3
// names. Built-ins receive already-evaluated arguments.
func (i *Interpreter) registerStandardBuiltins() {
	i.RegisterBuiltin("+", biAdd)
	i.RegisterBuiltin("-", biSub)
	i.RegisterBuiltin("*", biMul)
	i.RegisterBuiltin("/", biDiv)
	i.RegisterBuiltin("%", biMod)
	i.RegisterBuiltin("mod", biMod)

	i.RegisterBuiltin("=", biNumEq)
	i.RegisterBuiltin("/=", biNumNeq)
	i.RegisterBuiltin("<", biLt)
	i.RegisterBuiltin(">", biGt)
	i.RegisterBuiltin("<=", biLe)
	i.RegisterBuiltin(">=", biGe)

	i.RegisterBuiltin("inc", biInc)
	i.RegisterBuiltin("dec", biDec)
	i.RegisterBuiltin("abs", biAbs)
	i.RegisterBuiltin("min", biMin)
	i.RegisterBuiltin("max", biMax)

	i.RegisterBuiltin("eq?", biEq)
	i.RegisterBuiltin("equal?", biEqual)

	i.RegisterBuiltin("nil?", biIsNil)
	i.RegisterBuiltin("symbol?", biTypePredicate(value.Symbol))
	i.RegisterBuiltin("keyword?", biTypePredicate(value.Keyword))
	i.RegisterBuiltin("string?", biTypePredicate(value.String))
	i.RegisterBuiltin("integer?", biTypePredicate(value.Integer))
	i.RegisterBuiltin("float?", biTypePredicate(value.Float))
	i.RegisterBuiltin("boolean?", biTypePredicate(value.Boolean))
	i.RegisterBuiltin("cons?", biTypePredicate(value.Cons))
	i.RegisterBuiltin("object?", biTypePredicate(value.Object))
	i.RegisterBuiltin("function?", biTypePredicate(value.Function))
	i.RegisterBuiltin("list?", biIsList)

	i.RegisterBuiltin("cons", biCons)
	i.RegisterBuiltin("car", biCar)
	i.RegisterBuiltin("cdr", biCdr)
	i.RegisterBuiltin("set-car!", biSetCar)
	i.RegisterBuiltin("set-cdr!", biSetCdr)
	i.RegisterBuiltin("list:new", biListNew)
	i.RegisterBuiltin("list:new*", biListNewStar)
	i.RegisterBuiltin("list:length", biListLength)
	i.RegisterBuiltin("list:reverse", biListReverse)
	i.RegisterBuiltin("list:nth", biListNth)
	i.RegisterBuiltin("list:map", biListMap)
	i.RegisterBuiltin("list:filter", biListFilter)
	i.RegisterBuiltin("list:fold", biListFold)

	i.RegisterBuiltin("string:length", biStringLength)
	i.RegisterBuiltin("string:concat", biStringConcat)
	i.RegisterBuiltin("string:upcase", biStringUpcase)
	i.RegisterBuiltin("string:downcase", biStringDowncase)
	i.RegisterBuiltin("string:substring", biStringSubstring)

	i.RegisterBuiltin("object:new", biObjectNew)
	i.RegisterBuiltin("object:get", biObjectGet)
	i.RegisterBuiltin("object:set!", biObjectSet)
	i.RegisterBuiltin("object:delete!", biObjectDelete)
	i.RegisterBuiltin("object:has?", biObjectHas)
	i.RegisterBuiltin("object:keys", biObjectKeys)
	i.RegisterBuiltin("object:freeze!", biObjectFreeze)
	i.RegisterBuiltin("object:frozen?", biObjectFrozen)
	i.RegisterBuiltin("object:set-proto!", biObjectSetProto)
	i.RegisterBuiltin("object:proto", biObjectProto)

	i.RegisterBuiltin("gensym", biGensym)
	i.RegisterBuiltin("print", biPrint)
	i.RegisterBuiltin("println", biPrintln)
	i.RegisterBuiltin("gc:collect", biGCCollect)
}

func wrongArgCount(name string, want string, got int) *Error {
	return Newf(InvalidArgumentCount, "%s expects %s argument(s), got %d", name, want, got)
}

func notANumber(name string, v value.Value) *Error {
	return Newf(InvalidArgument, "%s expects a number, got %s", name, v.Kind())
}

func asInt(name string, v value.Value) (int64, *Error) {
	if v.Kind() != value.Integer {
		return 0, notANumber(name, v)
	}

	return v.AsInt(), nil
}

func asFloat(name string, v value.Value) (float64, bool, *Error) {
	switch v.Kind() {
	case value.Integer:
		return float64(v.AsInt()), false, nil
	case value.Float:
		return v.AsFloat(), true, nil
	default:
		return 0, false, notANumber(name, v)
	}
}

// numericFold reduces args pairwise with intOp when every argument is an
// integer, promoting to floatOp the moment a float appears, matching the
// spec's integer-by-default arithmetic (spec §4.3).
func numericFold(
	name string,
	args []value.Value,
	identity int64,
	intOp func(a, b int64) (int64, *Error),
	floatOp func(a, b float64) float64,
) (value.Value, *Error) {
	if len(args) == 0 {
		return value.Int(identity), nil
	}

	isFloat := false

	for _, a := range args {
		if a.Kind() == value.Float {
			isFloat = true

			break
		}

		if a.Kind() != value.Integer {
			return value.Value{}, notANumber(name, a)
		}
	}

	if !isFloat {
		acc, err := asInt(name, args[0])
		if err != nil {
			return value.Value{}, err
		}

		for _, a := range args[1:] {
			n, err := asInt(name, a)
			if err != nil {
				return value.Value{}, err
			}

			acc, err = intOp(acc, n)
			if err != nil {
				return value.Value{}, err
			}
		}

		return value.Int(acc), nil
	}

	accF, _, err := asFloat(name, args[0])
	if err != nil {
		return value.Value{}, err
	}

	for _, a := range args[1:] {
		f, _, err := asFloat(name, a)
		if err != nil {
			return value.Value{}, err
		}

		accF = floatOp(accF, f)
	}

	return value.Flt(accF), nil
}

func biAdd(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return numericFold("+", args, 0,
		func(a, b int64) (int64, *Error) {
			sum := a + b
			if (b > 0 && sum < a) || (b < 0 && sum > a) {
				return 0, New(Overflow, "integer addition overflow")
			}

			return sum, nil
		},
		func(a, b float64) float64 { return a + b })
}

func biSub(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) == 1 {
		switch args[0].Kind() {
		case value.Integer:
			return value.Int(-args[0].AsInt()), nil
		case value.Float:
			return value.Flt(-args[0].AsFloat()), nil
		default:
			return value.Value{}, notANumber("-", args[0])
		}
	}

	return numericFold("-", args, 0,
		func(a, b int64) (int64, *Error) {
			diff := a - b
			if (b < 0 && diff < a) || (b > 0 && diff > a) {
				return 0, New(Overflow, "integer subtraction overflow")
			}

			return diff, nil
		},
		func(a, b float64) float64 { return a - b })
}

func biMul(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return numericFold("*", args, 1,
		func(a, b int64) (int64, *Error) {
			if a == 0 || b == 0 {
				return 0, nil
			}

			p := a * b
			if p/b != a {
				return 0, New(Overflow, "integer multiplication overflow")
			}

			return p, nil
		},
		func(a, b float64) float64 { return a * b })
}

func biDiv(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) < 2 {
		return value.Value{}, wrongArgCount("/", "at least 2", len(args))
	}

	isFloat := false

	for _, a := range args {
		if a.Kind() == value.Float {
			isFloat = true
		} else if a.Kind() != value.Integer {
			return value.Value{}, notANumber("/", a)
		}
	}

	if !isFloat {
		acc, err := asInt("/", args[0])
		if err != nil {
			return value.Value{}, err
		}

		for _, a := range args[1:] {
			n, err := asInt("/", a)
			if err != nil {
				return value.Value{}, err
			}

			if n == 0 {
				return value.Value{}, New(ZeroDivision, "division by zero")
			}

			if acc == math.MinInt64 && n == -1 {
				return value.Value{}, New(Overflow, "integer division overflow")
			}

			acc /= n
		}

		return value.Int(acc), nil
	}

	accF, _, err := asFloat("/", args[0])
	if err != nil {
		return value.Value{}, err
	}

	for _, a := range args[1:] {
		f, _, err := asFloat("/", a)
		if err != nil {
			return value.Value{}, err
		}

		if f == 0 {
			return value.Value{}, New(ZeroDivision, "division by zero")
		}

		accF /= f
	}

	return value.Flt(accF), nil
}

func biMod(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 {
		return value.Value{}, wrongArgCount("%", "2", len(args))
	}

	a, err := asInt("%", args[0])
	if err != nil {
		return value.Value{}, err
	}

	b, err := asInt("%", args[1])
	if err != nil {
		return value.Value{}, err
	}

	if b == 0 {
		return value.Value{}, New(ZeroDivision, "modulo by zero")
	}

	return value.Int(a % b), nil
}

func numericCompare(name string, args []value.Value, pass func(a, b float64) bool) (value.Value, *Error) {
	if len(args) < 2 {
		return value.Value{}, wrongArgCount(name, "at least 2", len(args))
	}

	for idx := 0; idx < len(args)-1; idx++ {
		a, _, err := asFloat(name, args[idx])
		if err != nil {
			return value.Value{}, err
		}

		b, _, err := asFloat(name, args[idx+1])
		if err != nil {
			return value.Value{}, err
		}

		if !pass(a, b) {
			return value.Bool(false), nil
		}
	}

	return value.Bool(true), nil
}

func biNumEq(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return numericCompare("=", args, func(a, b float64) bool { return a == b })
}

func biNumNeq(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	v, err := numericCompare("/=", args, func(a, b float64) bool { return a == b })
	if err != nil {
		return value.Value{}, err
	}

	return value.Bool(!v.AsBool()), nil
}

func biLt(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return numericCompare("<", args, func(a, b float64) bool { return a < b })
}

func biGt(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return numericCompare(">", args, func(a, b float64) bool { return a > b })
}

func biLe(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return numericCompare("<=", args, func(a, b float64) bool { return a <= b })
}

func biGe(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return numericCompare(">=", args, func(a, b float64) bool { return a >= b })
}

func biInc(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("inc", "1", len(args))
	}

	if args[0].Kind() == value.Integer {
		return value.Int(args[0].AsInt() + 1), nil
	}

	f, _, err := asFloat("inc", args[0])
	if err != nil {
		return value.Value{}, err
	}

	return value.Flt(f + 1), nil
}

func biDec(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("dec", "1", len(args))
	}

	if args[0].Kind() == value.Integer {
		return value.Int(args[0].AsInt() - 1), nil
	}

	f, _, err := asFloat("dec", args[0])
	if err != nil {
		return value.Value{}, err
	}

	return value.Flt(f - 1), nil
}

func biAbs(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("abs", "1", len(args))
	}

	if args[0].Kind() == value.Integer {
		n := args[0].AsInt()
		if n < 0 {
			n = -n
		}

		return value.Int(n), nil
	}

	f, _, err := asFloat("abs", args[0])
	if err != nil {
		return value.Value{}, err
	}

	return value.Flt(math.Abs(f)), nil
}

func biMin(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return extremum("min", args, func(a, b float64) bool { return a < b })
}

func biMax(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return extremum("max", args, func(a, b float64) bool { return a > b })
}

func extremum(name string, args []value.Value, better func(a, b float64) bool) (value.Value, *Error) {
	if len(args) == 0 {
		return value.Value{}, wrongArgCount(name, "at least 1", len(args))
	}

	best := args[0]

	bestF, _, err := asFloat(name, best)
	if err != nil {
		return value.Value{}, err
	}

	for _, a := range args[1:] {
		f, _, err := asFloat(name, a)
		if err != nil {
			return value.Value{}, err
		}

		if better(f, bestF) {
			best = a
			bestF = f
		}
	}

	return best, nil
}

// biEq is identity comparison: primitives compare by value, composites by
// handle (spec §3).
func biEq(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 {
		return value.Value{}, wrongArgCount("eq?", "2", len(args))
	}

	return value.Bool(valueIdentityEqual(args[0], args[1])), nil
}

func valueIdentityEqual(a, b value.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	switch a.Kind() {
	case value.Integer:
		return a.AsInt() == b.AsInt()
	case value.Float:
		return a.AsFloat() == b.AsFloat()
	case value.Boolean:
		return a.AsBool() == b.AsBool()
	default:
		return a.AsHandle() == b.AsHandle()
	}
}

// biEqual is structural/deep comparison, walking Cons cells and Object slots.
func biEqual(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 {
		return value.Value{}, wrongArgCount("equal?", "2", len(args))
	}

	eq, err := i.DeepEqual(args[0], args[1])
	if err != nil {
		return value.Value{}, err
	}

	return value.Bool(eq), nil
}

func biIsNil(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("nil?", "1", len(args))
	}

	return value.Bool(i.IsNil(args[0])), nil
}

func biTypePredicate(k value.Kind) BuiltinFunc {
	return func(_ *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
		if len(args) != 1 {
			return value.Value{}, wrongArgCount(k.String()+"?", "1", len(args))
		}

		return value.Bool(args[0].Kind() == k), nil
	}
}

func biIsList(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("list?", "1", len(args))
	}

	if i.IsNil(args[0]) {
		return value.Bool(true), nil
	}

	if args[0].Kind() != value.Cons {
		return value.Bool(false), nil
	}

	_, err := i.ListToVec(args[0])

	return value.Bool(err == nil), nil
}

func biCons(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 {
		return value.Value{}, wrongArgCount("cons", "2", len(args))
	}

	return value.ConsOf(i.MakeCons(args[0], args[1])), nil
}

func biCar(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	rec, err := consArg(i, "car", args)
	if err != nil {
		return value.Value{}, err
	}

	return rec.Car, nil
}

func biCdr(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	rec, err := consArg(i, "cdr", args)
	if err != nil {
		return value.Value{}, err
	}

	return rec.Cdr, nil
}

func consArg(i *Interpreter, name string, args []value.Value) (ConsRecord, *Error) {
	if len(args) != 1 {
		return ConsRecord{}, wrongArgCount(name, "1", len(args))
	}

	if args[0].Kind() != value.Cons {
		return ConsRecord{}, New(InvalidCons, name+" expects a cons")
	}

	rec, err := i.cons.Get(args[0].AsHandle())
	if err != nil {
		return ConsRecord{}, New(Failure, err.Error())
	}

	return rec, nil
}

func biSetCar(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 || args[0].Kind() != value.Cons {
		return value.Value{}, New(InvalidCons, "set-car! expects (cons value)")
	}

	rec, err := i.cons.Get(args[0].AsHandle())
	if err != nil {
		return value.Value{}, New(Failure, err.Error())
	}

	rec.Car = args[1]

	if err := i.cons.Set(args[0].AsHandle(), rec); err != nil {
		return value.Value{}, New(Failure, err.Error())
	}

	return args[1], nil
}

func biSetCdr(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 || args[0].Kind() != value.Cons {
		return value.Value{}, New(InvalidCons, "set-cdr! expects (cons value)")
	}

	rec, err := i.cons.Get(args[0].AsHandle())
	if err != nil {
		return value.Value{}, New(Failure, err.Error())
	}

	rec.Cdr = args[1]

	if err := i.cons.Set(args[0].AsHandle(), rec); err != nil {
		return value.Value{}, New(Failure, err.Error())
	}

	return args[1], nil
}

func biListNew(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	return i.VecToList(args), nil
}

// biListNewStar builds a list from all but the last argument, consed onto
// the last argument as the tail (analogous to Lisp's list*/cons*).
func biListNewStar(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) == 0 {
		return i.NilValue(), nil
	}

	result := args[len(args)-1]
	for idx := len(args) - 2; idx >= 0; idx-- {
		result = value.ConsOf(i.MakeCons(args[idx], result))
	}

	return result, nil
}

func biListLength(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("list:length", "1", len(args))
	}

	elems, err := i.ListToVec(args[0])
	if err != nil {
		return value.Value{}, err
	}

	return value.Int(int64(len(elems))), nil
}

func biListReverse(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("list:reverse", "1", len(args))
	}

	elems, err := i.ListToVec(args[0])
	if err != nil {
		return value.Value{}, err
	}

	for l, r := 0, len(elems)-1; l < r; l, r = l+1, r-1 {
		elems[l], elems[r] = elems[r], elems[l]
	}

	return i.VecToList(elems), nil
}

func biListNth(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 {
		return value.Value{}, wrongArgCount("list:nth", "2", len(args))
	}

	elems, err := i.ListToVec(args[0])
	if err != nil {
		return value.Value{}, err
	}

	n, err := asInt("list:nth", args[1])
	if err != nil {
		return value.Value{}, err
	}

	if n < 0 || int(n) >= len(elems) {
		return value.Value{}, Newf(InvalidArgument, "list:nth index %d out of range [0,%d)", n, len(elems))
	}

	return elems[n], nil
}

func biListMap(i *Interpreter, env value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 || args[0].Kind() != value.Function {
		return value.Value{}, New(InvalidArgument, "list:map expects (function list)")
	}

	elems, err := i.ListToVec(args[1])
	if err != nil {
		return value.Value{}, err
	}

	out := make([]value.Value, len(elems))

	for idx, e := range elems {
		v, err := i.CallFunction(args[0].AsHandle(), []value.Value{e})
		if err != nil {
			return value.Value{}, err
		}

		out[idx] = v
	}

	return i.VecToList(out), nil
}

func biListFilter(i *Interpreter, env value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 || args[0].Kind() != value.Function {
		return value.Value{}, New(InvalidArgument, "list:filter expects (function list)")
	}

	elems, err := i.ListToVec(args[1])
	if err != nil {
		return value.Value{}, err
	}

	var out []value.Value

	for _, e := range elems {
		keep, err := i.CallFunction(args[0].AsHandle(), []value.Value{e})
		if err != nil {
			return value.Value{}, err
		}

		if !i.IsFalsy(keep) {
			out = append(out, e)
		}
	}

	return i.VecToList(out), nil
}

func biListFold(i *Interpreter, env value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 3 || args[0].Kind() != value.Function {
		return value.Value{}, New(InvalidArgument, "list:fold expects (function initial list)")
	}

	elems, err := i.ListToVec(args[2])
	if err != nil {
		return value.Value{}, err
	}

	acc := args[1]

	for _, e := range elems {
		v, err := i.CallFunction(args[0].AsHandle(), []value.Value{acc, e})
		if err != nil {
			return value.Value{}, err
		}

		acc = v
	}

	return acc, nil
}

func asString(name string, v value.Value, i *Interpreter) (string, *Error) {
	if v.Kind() != value.String {
		return "", Newf(InvalidArgument, "%s expects a string, got %s", name, v.Kind())
	}

	rec, err := i.strings.Arena().Get(v.AsHandle())
	if err != nil {
		return "", New(Failure, err.Error())
	}

	return rec.Bytes, nil
}

func biStringLength(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("string:length", "1", len(args))
	}

	s, err := asString("string:length", args[0], i)
	if err != nil {
		return value.Value{}, err
	}

	return value.Int(int64(len([]rune(s)))), nil
}

func biStringConcat(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	var b strings.Builder

	for _, a := range args {
		s, err := asString("string:concat", a, i)
		if err != nil {
			return value.Value{}, err
		}

		b.WriteString(s)
	}

	return value.Str(i.internString(b.String())), nil
}

func biStringUpcase(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("string:upcase", "1", len(args))
	}

	s, err := asString("string:upcase", args[0], i)
	if err != nil {
		return value.Value{}, err
	}

	return value.Str(i.internString(strings.ToUpper(s))), nil
}

func biStringDowncase(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("string:downcase", "1", len(args))
	}

	s, err := asString("string:downcase", args[0], i)
	if err != nil {
		return value.Value{}, err
	}

	return value.Str(i.internString(strings.ToLower(s))), nil
}

func biStringSubstring(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 3 {
		return value.Value{}, wrongArgCount("string:substring", "3", len(args))
	}

	s, err := asString("string:substring", args[0], i)
	if err != nil {
		return value.Value{}, err
	}

	start, err := asInt("string:substring", args[1])
	if err != nil {
		return value.Value{}, err
	}

	end, err := asInt("string:substring", args[2])
	if err != nil {
		return value.Value{}, err
	}

	runes := []rune(s)
	if start < 0 || end > int64(len(runes)) || start > end {
		return value.Value{}, Newf(InvalidArgument, "string:substring range [%d,%d) out of bounds for length %d", start, end, len(runes))
	}

	return value.Str(i.internString(string(runes[start:end]))), nil
}

func biObjectNew(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 0 {
		return value.Value{}, wrongArgCount("object:new", "0", len(args))
	}

	id := i.objects.Allocate(ObjectRecord{Slots: make(map[value.SymbolID]PropertySlot)})

	return value.Obj(id), nil
}

func objectArg(i *Interpreter, name string, v value.Value) (value.ObjectID, *ObjectRecord, *Error) {
	if v.Kind() != value.Object {
		return 0, nil, Newf(InvalidArgument, "%s expects an object, got %s", name, v.Kind())
	}

	rec, err := i.objects.GetPtr(v.AsHandle())
	if err != nil {
		return 0, nil, New(Failure, err.Error())
	}

	return v.AsHandle(), rec, nil
}

func keywordOrSymbolArg(i *Interpreter, name string, v value.Value) (value.SymbolID, *Error) {
	switch v.Kind() {
	case value.Keyword:
		rec, err := i.keywords.Arena().Get(v.AsHandle())
		if err != nil {
			return 0, New(Failure, err.Error())
		}

		return i.internSymbol(rec.Name), nil
	case value.Symbol:
		return v.AsHandle(), nil
	default:
		return 0, Newf(InvalidArgument, "%s expects a keyword or symbol key", name)
	}
}

func biObjectGet(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 {
		return value.Value{}, wrongArgCount("object:get", "2", len(args))
	}

	_, rec, err := objectArg(i, "object:get", args[0])
	if err != nil {
		return value.Value{}, err
	}

	key, err := keywordOrSymbolArg(i, "object:get", args[1])
	if err != nil {
		return value.Value{}, err
	}

	for cur := rec; ; {
		if slot, ok := cur.Slots[key]; ok {
			return slot.Value, nil
		}

		if !cur.HasProto {
			return i.NilValue(), nil
		}

		_, next, err := objectArg(i, "object:get", value.Obj(cur.Proto))
		if err != nil {
			return value.Value{}, err
		}

		cur = next
	}
}

func biObjectSet(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 3 {
		return value.Value{}, wrongArgCount("object:set!", "3", len(args))
	}

	_, rec, err := objectArg(i, "object:set!", args[0])
	if err != nil {
		return value.Value{}, err
	}

	key, err := keywordOrSymbolArg(i, "object:set!", args[1])
	if err != nil {
		return value.Value{}, err
	}

	if existing, ok := rec.Slots[key]; ok {
		if rec.Frozen || !existing.Flags.Has(Writable) {
			return value.Value{}, New(GenericExecution, "cannot write a frozen or non-writable slot")
		}

		existing.Value = args[2]
		rec.Slots[key] = existing

		return args[2], nil
	}

	if rec.Frozen {
		return value.Value{}, New(GenericExecution, "cannot add a slot to a frozen object")
	}

	rec.Slots[key] = PropertySlot{Value: args[2], Flags: DefaultSlotFlags}

	return args[2], nil
}

func biObjectDelete(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 {
		return value.Value{}, wrongArgCount("object:delete!", "2", len(args))
	}

	_, rec, err := objectArg(i, "object:delete!", args[0])
	if err != nil {
		return value.Value{}, err
	}

	key, err := keywordOrSymbolArg(i, "object:delete!", args[1])
	if err != nil {
		return value.Value{}, err
	}

	if slot, ok := rec.Slots[key]; ok {
		if rec.Frozen || !slot.Flags.Has(Configurable) {
			return value.Value{}, New(GenericExecution, "cannot delete a frozen or non-configurable slot")
		}

		delete(rec.Slots, key)
	}

	return i.NilValue(), nil
}

func biObjectHas(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 {
		return value.Value{}, wrongArgCount("object:has?", "2", len(args))
	}

	_, rec, err := objectArg(i, "object:has?", args[0])
	if err != nil {
		return value.Value{}, err
	}

	key, err := keywordOrSymbolArg(i, "object:has?", args[1])
	if err != nil {
		return value.Value{}, err
	}

	_, ok := rec.Slots[key]

	return value.Bool(ok), nil
}

func biObjectKeys(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("object:keys", "1", len(args))
	}

	if args[0].Kind() != value.Object {
		return value.Value{}, Newf(InvalidArgument, "object:keys expects an object, got %s", args[0].Kind())
	}

	slots, err := i.enumerableSlots(args[0].AsHandle())
	if err != nil {
		return value.Value{}, err
	}

	out := make([]value.Value, len(slots))
	for idx, s := range slots {
		out[idx] = value.Sym(s.Sym)
	}

	return i.VecToList(out), nil
}

func biObjectFreeze(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("object:freeze!", "1", len(args))
	}

	_, rec, err := objectArg(i, "object:freeze!", args[0])
	if err != nil {
		return value.Value{}, err
	}

	rec.Frozen = true

	return args[0], nil
}

func biObjectFrozen(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("object:frozen?", "1", len(args))
	}

	_, rec, err := objectArg(i, "object:frozen?", args[0])
	if err != nil {
		return value.Value{}, err
	}

	return value.Bool(rec.Frozen), nil
}

func biObjectSetProto(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 2 {
		return value.Value{}, wrongArgCount("object:set-proto!", "2", len(args))
	}

	_, rec, err := objectArg(i, "object:set-proto!", args[0])
	if err != nil {
		return value.Value{}, err
	}

	if rec.Frozen {
		return value.Value{}, New(GenericExecution, "cannot reassign the prototype of a frozen object")
	}

	if i.IsNil(args[1]) {
		rec.HasProto = false
		rec.Proto = 0

		return args[0], nil
	}

	if args[1].Kind() != value.Object {
		return value.Value{}, New(InvalidArgument, "object:set-proto! expects an object or nil")
	}

	rec.Proto = args[1].AsHandle()
	rec.HasProto = true

	return args[0], nil
}

func biObjectProto(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 1 {
		return value.Value{}, wrongArgCount("object:proto", "1", len(args))
	}

	_, rec, err := objectArg(i, "object:proto", args[0])
	if err != nil {
		return value.Value{}, err
	}

	if !rec.HasProto {
		return i.NilValue(), nil
	}

	return value.Obj(rec.Proto), nil
}

func biGensym(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	hint := "g"

	if len(args) == 1 {
		s, err := asString("gensym", args[0], i)
		if err != nil {
			return value.Value{}, err
		}

		hint = s
	} else if len(args) > 1 {
		return value.Value{}, wrongArgCount("gensym", "0 or 1", len(args))
	}

	return value.Sym(i.Gensym(hint)), nil
}

func biPrint(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	var b strings.Builder

	for idx, a := range args {
		if idx > 0 {
			b.WriteByte(' ')
		}

		s, err := i.Print(a)
		if err != nil {
			return value.Value{}, err
		}

		b.WriteString(s)
	}

	fmt.Fprint(i.stdout(), b.String())

	return i.NilValue(), nil
}

func biPrintln(i *Interpreter, env value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if _, err := biPrint(i, env, args); err != nil {
		return value.Value{}, err
	}

	fmt.Fprintln(i.stdout())

	return i.NilValue(), nil
}

func biGCCollect(i *Interpreter, _ value.EnvironmentID, args []value.Value) (value.Value, *Error) {
	if len(args) != 0 {
		return value.Value{}, wrongArgCount("gc:collect", "0", len(args))
	}

	stats := i.CollectGarbage()

	return value.Int(int64(stats.Freed())), nil
}

// enumSlot pairs a property key with its slot for ordered traversal.
type enumSlot struct {
	Sym  value.SymbolID
	Slot PropertySlot
}

// enumerableSlots returns an object's enumerable slots ordered by symbol
// name, giving dokeys/dovalues/doitems and object:keys a deterministic
// iteration order despite Go's randomized map order.
func (i *Interpreter) enumerableSlots(id value.ObjectID) ([]enumSlot, *Error) {
	rec, err := i.objects.Get(id)
	if err != nil {
		return nil, New(Failure, err.Error())
	}

	out := make([]enumSlot, 0, len(rec.Slots))

	for sym, slot := range rec.Slots {
		if slot.Flags.Has(Enumerable) {
			out = append(out, enumSlot{Sym: sym, Slot: slot})
		}
	}

	names := make(map[value.SymbolID]string, len(out))
	for _, e := range out {
		name, _ := i.SymbolName(e.Sym)
		names[e.Sym] = name
	}

	sort.Slice(out, func(a, b int) bool {
		return names[out[a].Sym] < names[out[b].Sym]
	})

	return out, nil
}
