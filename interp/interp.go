// Package interp implements the evaluation engine: arenas, the Value-tree
// evaluator, the lexical environment chain, the argument binder, the
// mark-and-sweep garbage collector, and the reader that turns source text
// into Values. It is the embeddable core of a scripting host; device I/O,
// OS command execution, and the host-specific standard library are not part
// of this package (see SPEC_FULL.md §1).
package interp

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/ardnew/nia/arena"
	"github.com/ardnew/nia/log"
	"github.com/ardnew/nia/value"
)

// DefaultMaxCallDepth bounds evaluator recursion to protect the native Go
// stack; exceeding it raises a GenericExecution error (spec §4.3, §5).
const DefaultMaxCallDepth = 256

// Canonical interned names established at construction (spec §6).
const (
	NilName   = "nil"
	OptName   = "#opt"
	RestName  = "#rest"
	KeysName  = "#keys"
	ThisName  = "this"
	SuperName = "super"

	// CaughtErrorName is the conventional binding a catch clause's handler
	// forms see the caught error under (spec §4.3).
	CaughtErrorName = "caught-error"
)

// Root variable names the host contract in spec §6 establishes. This module
// only reserves the bindings (all start out as nil); a separate host package
// supplies the device/action standard library that mutates them.
const (
	RootPrimitiveActions = "nia-primitive-actions"
	RootDefinedDevices   = "nia-defined-devices"
	RootDefinedModifiers = "nia-defined-modifiers"
	RootDefinedMappings  = "nia-defined-mappings"
	RootGlobalMap        = "global-map"
	RootDefinedActions   = "nia-defined-actions"
)

// Interpreter is the opaque handle spec §6 describes. It owns every arena,
// the root environment, the call stack, and the GC's context-value root set.
// It is not safe for concurrent mutation: the host may run other threads
// (e.g. an event loop feeding input), but only one goroutine may hold a
// Value-evaluating reference to an Interpreter at a time (spec §5).
type Interpreter struct {
	mu sync.Mutex // guards nothing evaluation-critical; documents single-writer intent

	symbols      *arena.Interned[SymbolRecord]
	keywords     *arena.Interned[KeywordRecord]
	strings      *arena.Interned[StringRecord]
	cons         *arena.Arena[ConsRecord]
	objects      *arena.Arena[ObjectRecord]
	functions    *arena.Arena[FunctionRecord]
	environments *arena.Arena[EnvironmentRecord]

	rootEnv value.EnvironmentID
	nilSym  value.SymbolID

	exemptSymbols   map[value.SymbolID]bool
	exemptFunctions map[value.FunctionID]bool

	callStack     *CallStack
	maxCallDepth  int
	contextValues []value.Value

	gensymCounter uint64

	logger log.Logger
	out    io.Writer

	parseCache *parseCache
}

// Option configures a new Interpreter.
type Option func(*Interpreter)

// WithMaxCallDepth overrides DefaultMaxCallDepth.
func WithMaxCallDepth(n int) Option {
	return func(i *Interpreter) { i.maxCallDepth = n }
}

// WithLogger attaches a structured logger used for parse/eval/GC trace
// events.
func WithLogger(l log.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithOutput sets the writer "print"/"println" write to; the default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

func (i *Interpreter) stdout() io.Writer {
	if i.out == nil {
		return os.Stdout
	}

	return i.out
}

// New constructs an interpreter: allocates the arenas, creates the root
// environment, interns the canonical symbols, registers the core special
// forms and built-ins, and reserves the host root variables (spec §6).
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		symbols:      arena.NewInterned[SymbolRecord]("symbol"),
		keywords:     arena.NewInterned[KeywordRecord]("keyword"),
		strings:      arena.NewInterned[StringRecord]("string"),
		cons:         arena.New[ConsRecord]("cons"),
		objects:      arena.New[ObjectRecord]("object"),
		functions:    arena.New[FunctionRecord]("function"),
		environments: arena.New[EnvironmentRecord]("environment"),

		exemptSymbols:   make(map[value.SymbolID]bool),
		exemptFunctions: make(map[value.FunctionID]bool),

		maxCallDepth: DefaultMaxCallDepth,
		callStack:    NewCallStack(),
		logger:       log.Make(nil),
	}

	for _, opt := range opts {
		opt(i)
	}

	i.nilSym = i.internSymbol(NilName)
	i.exemptSymbols[i.nilSym] = true

	for _, name := range []string{OptName, RestName, KeysName, ThisName, SuperName, CaughtErrorName} {
		i.exemptSymbols[i.internSymbol(name)] = true
	}

	i.rootEnv = i.environments.Allocate(EnvironmentRecord{
		Variables: make(map[value.SymbolID]Binding),
		Functions: make(map[value.SymbolID]Binding),
	})

	i.registerStandardForms()
	i.registerStandardBuiltins()
	i.initRootBindings()

	return i
}

// NilValue returns the canonical nil symbol value: the empty list and the
// conditionally-false value are both this symbol (spec §3).
func (i *Interpreter) NilValue() value.Value { return value.Sym(i.nilSym) }

// NilSymbolID returns the handle of the canonical nil symbol.
func (i *Interpreter) NilSymbolID() value.SymbolID { return i.nilSym }

// IsNil reports whether v is the canonical nil symbol.
func (i *Interpreter) IsNil(v value.Value) bool {
	return v.Kind() == value.Symbol && v.AsHandle() == i.nilSym
}

// IsFalsy reports whether v counts as false in a conditional context: nil or
// the boolean false. Every other value, including 0 and "", is truthy.
func (i *Interpreter) IsFalsy(v value.Value) bool {
	if v.Kind() == value.Boolean {
		return !v.AsBool()
	}

	return i.IsNil(v)
}

// RootEnvironment returns the root environment id.
func (i *Interpreter) RootEnvironment() value.EnvironmentID { return i.rootEnv }

func (i *Interpreter) initRootBindings() {
	for _, name := range []string{
		RootPrimitiveActions,
		RootDefinedDevices,
		RootDefinedModifiers,
		RootDefinedMappings,
		RootGlobalMap,
		RootDefinedActions,
	} {
		sym := i.internSymbol(name)
		if _, err := i.lookupVariable(i.rootEnv, sym); err != nil {
			_ = i.defineVariable(i.rootEnv, sym, i.NilValue(), DefaultBindingFlags)
		}
	}
}

// Execute reads source, evaluates each resulting form in the root
// environment sequentially, and returns the last value (spec §6).
func (i *Interpreter) Execute(source string) (value.Value, *Error) {
	return i.ExecuteIn(i.rootEnv, source)
}

// ExecuteIn is Execute against an explicit environment.
func (i *Interpreter) ExecuteIn(env value.EnvironmentID, source string) (value.Value, *Error) {
	forms, err := i.Read(source)
	if err != nil {
		return value.Value{}, err
	}

	result := i.NilValue()

	for _, form := range forms {
		v, evalErr := i.ExecuteValue(env, form)
		if evalErr != nil {
			return value.Value{}, evalErr
		}

		result = v
	}

	return result, nil
}

// ExecuteValue evaluates an already-parsed value in env.
func (i *Interpreter) ExecuteValue(env value.EnvironmentID, v value.Value) (value.Value, *Error) {
	return i.evaluate(context.Background(), env, v)
}

// RegisterBuiltin installs a host-provided native function in the root
// environment's function namespace (spec §6).
func (i *Interpreter) RegisterBuiltin(name string, fn BuiltinFunc) {
	i.registerNative(name, FunctionRecord{Kind: FuncBuiltin, Native: fn, Name: name})
}

// RegisterSpecialForm installs a host-provided special form.
func (i *Interpreter) RegisterSpecialForm(name string, fn SpecialFormFunc) {
	i.registerNative(name, FunctionRecord{Kind: FuncSpecialForm, NativeForm: fn, Name: name})
}

func (i *Interpreter) registerNative(name string, rec FunctionRecord) {
	sym := i.internSymbol(name)
	fnID := i.functions.Allocate(rec)
	i.exemptFunctions[fnID] = true

	_ = i.defineFunction(i.rootEnv, sym, value.Fn(fnID), DefaultBindingFlags)
}

// Intern returns the handle for the interned symbol named name, allocating
// one if this is the first use (spec §4.1).
func (i *Interpreter) Intern(name string) value.SymbolID { return i.internSymbol(name) }

// Gensym allocates a fresh, never-interned symbol whose printed name is
// hint itself, the same as an interned symbol named hint. Its handle is guaranteed
// distinct from every symbol produced by this interpreter, interned or not
// (spec §3, §9).
func (i *Interpreter) Gensym(hint string) value.SymbolID {
	i.gensymCounter++

	return i.symbols.Arena().Allocate(SymbolRecord{Name: hint, GensymID: i.gensymCounter})
}

// MakeCons allocates a new cons cell.
func (i *Interpreter) MakeCons(car, cdr value.Value) value.ConsID {
	return i.cons.Allocate(ConsRecord{Car: car, Cdr: cdr})
}

// VecToList builds a proper list from vs, terminated by nil.
func (i *Interpreter) VecToList(vs []value.Value) value.Value {
	result := i.NilValue()
	for idx := len(vs) - 1; idx >= 0; idx-- {
		result = value.ConsOf(i.MakeCons(vs[idx], result))
	}

	return result
}

// ListToVec flattens a proper list into a slice. It fails with InvalidCons
// if v is not nil-terminated.
func (i *Interpreter) ListToVec(v value.Value) ([]value.Value, *Error) {
	var out []value.Value

	cur := v
	for {
		if i.IsNil(cur) {
			return out, nil
		}

		if cur.Kind() != value.Cons {
			return nil, New(InvalidCons, "value is not a proper list")
		}

		rec, err := i.cons.Get(cur.AsHandle())
		if err != nil {
			return nil, New(Failure, err.Error())
		}

		out = append(out, rec.Car)
		cur = rec.Cdr
	}
}

// SetContextValue stashes a host-side GC root: a value that must survive
// collection even though it is not reachable from the root environment
// (spec §4.6). Called by host built-ins that hold onto a Value between
// evaluations (e.g. a pending callback).
func (i *Interpreter) SetContextValue(v value.Value) {
	i.contextValues = append(i.contextValues, v)
}

// ClearContextValues drops every stashed context root.
func (i *Interpreter) ClearContextValues() {
	i.contextValues = i.contextValues[:0]
}

// internSymbol interns name without allocating a gensym id.
func (i *Interpreter) internSymbol(name string) value.SymbolID {
	return i.symbols.Intern(name, func() SymbolRecord {
		return SymbolRecord{Name: name}
	})
}

func (i *Interpreter) internKeyword(name string) value.KeywordID {
	return i.keywords.Intern(name, func() KeywordRecord {
		return KeywordRecord{Name: name}
	})
}

func (i *Interpreter) internString(s string) value.StringID {
	return i.strings.Intern(s, func() StringRecord {
		return StringRecord{Bytes: s}
	})
}

// SymbolName returns the printed name of a symbol handle.
func (i *Interpreter) SymbolName(id value.SymbolID) (string, *Error) {
	rec, err := i.symbols.Arena().Get(id)
	if err != nil {
		return "", New(Failure, err.Error())
	}

	return rec.Name, nil
}
