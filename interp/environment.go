package interp

import (
	"sort"

	"github.com/ardnew/nia/value"
)

// newEnvironment allocates a child environment of parent.
func (i *Interpreter) newEnvironment(parent value.EnvironmentID) value.EnvironmentID {
	return i.environments.Allocate(EnvironmentRecord{
		Variables: make(map[value.SymbolID]Binding),
		Functions: make(map[value.SymbolID]Binding),
		Parent:    parent,
		HasParent: true,
	})
}

func (i *Interpreter) env(id value.EnvironmentID) (*EnvironmentRecord, *Error) {
	rec, err := i.environments.GetPtr(id)
	if err != nil {
		return nil, New(Failure, err.Error())
	}

	return rec, nil
}

// lookupVariable walks the environment chain from env, returning the first
// GETTABLE variable binding for sym (spec §4.4).
func (i *Interpreter) lookupVariable(env value.EnvironmentID, sym value.SymbolID) (value.Value, *Error) {
	return i.lookupIn(env, sym, func(r *EnvironmentRecord) map[value.SymbolID]Binding { return r.Variables })
}

// lookupFunction is lookupVariable against the function namespace.
func (i *Interpreter) lookupFunction(env value.EnvironmentID, sym value.SymbolID) (value.Value, *Error) {
	return i.lookupIn(env, sym, func(r *EnvironmentRecord) map[value.SymbolID]Binding { return r.Functions })
}

func (i *Interpreter) lookupIn(
	env value.EnvironmentID,
	sym value.SymbolID,
	ns func(*EnvironmentRecord) map[value.SymbolID]Binding,
) (value.Value, *Error) {
	cur := env

	for {
		rec, err := i.env(cur)
		if err != nil {
			return value.Value{}, err
		}

		if b, ok := ns(rec)[sym]; ok {
			if b.Flags&Gettable != 0 {
				return b.Value, nil
			}

			return value.Value{}, New(GenericExecution, "cannot read ungettable binding")
		}

		if !rec.HasParent {
			return value.Value{}, New(GenericExecution, "unbound symbol")
		}

		cur = rec.Parent
	}
}

// defineVariable creates a new binding in exactly env; redefining an
// existing binding fails with "cannot define already-defined binding".
func (i *Interpreter) defineVariable(env value.EnvironmentID, sym value.SymbolID, v value.Value, flags BindingFlags) *Error {
	return i.defineIn(env, sym, v, flags, func(r *EnvironmentRecord) map[value.SymbolID]Binding { return r.Variables })
}

func (i *Interpreter) defineFunction(env value.EnvironmentID, sym value.SymbolID, v value.Value, flags BindingFlags) *Error {
	return i.defineIn(env, sym, v, flags, func(r *EnvironmentRecord) map[value.SymbolID]Binding { return r.Functions })
}

func (i *Interpreter) defineIn(
	env value.EnvironmentID,
	sym value.SymbolID,
	v value.Value,
	flags BindingFlags,
	ns func(*EnvironmentRecord) map[value.SymbolID]Binding,
) *Error {
	rec, err := i.env(env)
	if err != nil {
		return err
	}

	m := ns(rec)
	if _, exists := m[sym]; exists {
		return New(GenericExecution, "cannot define already-defined binding")
	}

	m[sym] = Binding{Value: v, Flags: flags}

	return nil
}

// setVariable walks the chain like lookupVariable but writes to the
// environment that actually defines the binding, observing SETTABLE.
func (i *Interpreter) setVariable(env value.EnvironmentID, sym value.SymbolID, v value.Value) *Error {
	return i.setIn(env, sym, v, func(r *EnvironmentRecord) map[value.SymbolID]Binding { return r.Variables })
}

func (i *Interpreter) setFunction(env value.EnvironmentID, sym value.SymbolID, v value.Value) *Error {
	return i.setIn(env, sym, v, func(r *EnvironmentRecord) map[value.SymbolID]Binding { return r.Functions })
}

func (i *Interpreter) setIn(
	env value.EnvironmentID,
	sym value.SymbolID,
	v value.Value,
	ns func(*EnvironmentRecord) map[value.SymbolID]Binding,
) *Error {
	cur := env

	for {
		rec, err := i.env(cur)
		if err != nil {
			return err
		}

		m := ns(rec)
		if b, ok := m[sym]; ok {
			if b.Flags&Settable == 0 {
				return New(GenericExecution, "cannot set unsettable binding")
			}

			b.Value = v
			m[sym] = b

			return nil
		}

		if !rec.HasParent {
			return New(InvalidArgument, "cannot set undefined place")
		}

		cur = rec.Parent
	}
}

// DefineVariable exposes defineVariable with default flags for host builtins.
func (i *Interpreter) DefineVariable(env value.EnvironmentID, name string, v value.Value) *Error {
	return i.defineVariable(env, i.internSymbol(name), v, DefaultBindingFlags)
}

// LookupVariable exposes lookupVariable for host builtins.
func (i *Interpreter) LookupVariable(env value.EnvironmentID, name string) (value.Value, *Error) {
	return i.lookupVariable(env, i.internSymbol(name))
}

// BindingNames returns the sorted variable and function names bound directly
// in env (not its ancestors), for host introspection such as a REPL's
// "list" command or completion candidates.
func (i *Interpreter) BindingNames(env value.EnvironmentID) (vars, funcs []string, err *Error) {
	rec, gerr := i.env(env)
	if gerr != nil {
		return nil, nil, gerr
	}

	for sym := range rec.Variables {
		name, nerr := i.SymbolName(sym)
		if nerr != nil {
			return nil, nil, nerr
		}

		vars = append(vars, name)
	}

	for sym := range rec.Functions {
		name, nerr := i.SymbolName(sym)
		if nerr != nil {
			return nil, nil, nerr
		}

		funcs = append(funcs, name)
	}

	sort.Strings(vars)
	sort.Strings(funcs)

	return vars, funcs, nil
}
