package interp

import "github.com/ardnew/nia/value"

// SymbolRecord backs a value.Symbol handle. Interned symbols (GensymID == 0)
// share one handle per distinct Name; gensyms (GensymID > 0) are always
// freshly allocated, giving macro hygiene a handle-identity guarantee that
// never depends on the printed name.
type SymbolRecord struct {
	Name     string
	GensymID uint64
}

// KeywordRecord backs a value.Keyword handle. Keywords self-evaluate and are
// interned by Name, like symbols but without a gensym escape hatch.
type KeywordRecord struct {
	Name string
}

// StringRecord backs a value.String handle. Strings are interned by content:
// two string literals with equal bytes share one handle.
type StringRecord struct {
	Bytes string
}

// ConsRecord backs a value.Cons handle: the classic car/cdr pair. A proper
// list is nil or a Cons whose Cdr is itself a proper list.
type ConsRecord struct {
	Car value.Value
	Cdr value.Value
}

// PropertySlot is one named value on an Object, with the four independent
// descriptor bits from spec §3 (mirroring ECMAScript property descriptors).
type PropertySlot struct {
	Value value.Value
	Flags SlotFlags
}

// SlotFlags are the bits on a PropertySlot.
type SlotFlags uint8

const (
	Internable SlotFlags = 1 << iota
	Writable
	Enumerable
	Configurable
)

// DefaultSlotFlags is the flag set new properties receive unless told
// otherwise.
const DefaultSlotFlags = Internable | Writable | Enumerable | Configurable

// Has reports whether every bit in want is set.
func (f SlotFlags) Has(want SlotFlags) bool { return f&want == want }

// ObjectRecord backs a value.Object handle: a map of symbol-keyed property
// slots, an optional prototype for chained lookup, and a frozen flag. Once
// Frozen is true no slot may be added, removed, or have its value or flags
// changed — freezing is append-only-before, immutable-after.
type ObjectRecord struct {
	Slots   map[value.SymbolID]PropertySlot
	Proto   value.ObjectID
	HasProto bool
	Frozen  bool
}

// ParamSpec is the formal-parameter protocol a Function's argument binder
// enforces (spec §3/§4.5). After Ordinary may come either (Optional, then
// an optional Rest) or Keys — never both; the argument binder treats that as
// an interpreter-construction invariant, not a runtime check, since ParamSpec
// values are only built by the reader/special forms that already enforce it.
type ParamSpec struct {
	Ordinary []value.SymbolID
	Optional []ParamDefault
	Rest     value.SymbolID
	HasRest  bool
	Keys     []ParamDefault
}

// ParamDefault is one optional or keyword parameter: a name, a default-value
// expression (evaluated lazily, in the binding environment, each call, so it
// may close over preceding parameters), and an optional "was it provided"
// flag symbol.
type ParamDefault struct {
	Name        value.SymbolID
	Default     value.Value
	HasDefault  bool
	ProvidedSym value.SymbolID
	HasProvided bool
}

// FunctionKind tags which of the four Function shapes a FunctionRecord is.
type FunctionKind uint8

const (
	FuncBuiltin FunctionKind = iota
	FuncInterpreted
	FuncMacro
	FuncSpecialForm
)

// BuiltinFunc is a native callback receiving already-evaluated arguments.
type BuiltinFunc func(i *Interpreter, env value.EnvironmentID, args []value.Value) (value.Value, *Error)

// SpecialFormFunc is a native callback receiving unevaluated argument forms.
type SpecialFormFunc func(i *Interpreter, env value.EnvironmentID, forms []value.Value) (value.Value, *Error)

// FunctionRecord backs a value.Function handle.
type FunctionRecord struct {
	Kind FunctionKind

	// Builtin / SpecialForm.
	Native     BuiltinFunc
	NativeForm SpecialFormFunc
	Name       string // diagnostic name for builtins/special forms

	// Interpreted / Macro.
	ParentEnv value.EnvironmentID
	Params    ParamSpec
	Body      []value.Value
}

// EnvironmentRecord backs a value.EnvironmentID handle: the Lisp-2 pair of
// variable and function namespaces plus a parent link. The root environment
// has HasParent == false.
type EnvironmentRecord struct {
	Variables map[value.SymbolID]Binding
	Functions map[value.SymbolID]Binding
	Parent    value.EnvironmentID
	HasParent bool
}

// Binding is one variable or function slot in an EnvironmentRecord.
type Binding struct {
	Value value.Value
	Flags BindingFlags
}

// BindingFlags are the bits on an environment Binding. Configurable is its
// own bit, never aliased to Gettable.
type BindingFlags uint8

const (
	Gettable BindingFlags = 1 << iota
	Settable
	BindingConfigurable
)

// DefaultBindingFlags is the flag set ordinary define-variable/define-function
// bindings receive.
const DefaultBindingFlags = Gettable | Settable | BindingConfigurable

// ConstBindingFlags is the flag set a constant binding receives: readable,
// not writable, not reconfigurable.
const ConstBindingFlags = Gettable
