package interp

import "github.com/ardnew/nia/value"

// GCStats reports how many records a CollectGarbage pass reclaimed from each
// arena.
type GCStats struct {
	SymbolFreed      int
	KeywordFreed     int
	StringFreed      int
	ConsFreed        int
	ObjectFreed      int
	FunctionFreed    int
	EnvironmentFreed int
}

// Freed is the total record count reclaimed across every arena.
func (s GCStats) Freed() int {
	return s.SymbolFreed + s.KeywordFreed + s.StringFreed +
		s.ConsFreed + s.ObjectFreed + s.FunctionFreed + s.EnvironmentFreed
}

// gcMarks tracks the reachable set discovered by a mark pass across all
// seven arena kinds (spec §4.6): symbols, keywords, and strings are interned
// but still subject to sweep once nothing reaches them anymore.
type gcMarks struct {
	sym  map[value.SymbolID]bool
	kw   map[value.KeywordID]bool
	str  map[value.StringID]bool
	cons map[value.ConsID]bool
	obj  map[value.ObjectID]bool
	fn   map[value.FunctionID]bool
	env  map[value.EnvironmentID]bool
}

// CollectGarbage runs one mark-and-sweep cycle (spec §4.6): mark from the
// root environment and every stashed context value, then free every
// unmarked record in every arena, including the interned symbol, keyword,
// and string arenas. Freeing an interned record also Forgets its reverse
// name index entry so a later Intern of the same text allocates fresh
// rather than resurrecting the freed id.
// The active call stack is deliberately not a root: the evaluator already
// holds every live argument Value in a Go local for the duration of a call
// (see CallStack's doc comment), so nothing reachable only through it can
// be prematurely collected.
func (i *Interpreter) CollectGarbage() GCStats {
	marks := &gcMarks{
		sym:  make(map[value.SymbolID]bool),
		kw:   make(map[value.KeywordID]bool),
		str:  make(map[value.StringID]bool),
		cons: make(map[value.ConsID]bool),
		obj:  make(map[value.ObjectID]bool),
		fn:   make(map[value.FunctionID]bool),
		env:  make(map[value.EnvironmentID]bool),
	}

	i.markEnvironment(marks, i.rootEnv)

	for _, v := range i.contextValues {
		i.markValue(marks, v)
	}

	for fnID := range i.exemptFunctions {
		marks.fn[fnID] = true
	}

	for symID := range i.exemptSymbols {
		marks.sym[symID] = true
	}

	var stats GCStats

	for _, id := range i.symbols.Arena().IDs() {
		if marks.sym[id] {
			continue
		}

		if rec, err := i.symbols.Arena().Get(id); err == nil && rec.GensymID == 0 {
			i.symbols.Forget(rec.Name)
		}

		if i.symbols.Arena().Free(id) == nil {
			stats.SymbolFreed++
		}
	}

	for _, id := range i.keywords.Arena().IDs() {
		if marks.kw[id] {
			continue
		}

		if rec, err := i.keywords.Arena().Get(id); err == nil {
			i.keywords.Forget(rec.Name)
		}

		if i.keywords.Arena().Free(id) == nil {
			stats.KeywordFreed++
		}
	}

	for _, id := range i.strings.Arena().IDs() {
		if marks.str[id] {
			continue
		}

		if rec, err := i.strings.Arena().Get(id); err == nil {
			i.strings.Forget(rec.Bytes)
		}

		if i.strings.Arena().Free(id) == nil {
			stats.StringFreed++
		}
	}

	for _, id := range i.cons.IDs() {
		if !marks.cons[id] {
			if i.cons.Free(id) == nil {
				stats.ConsFreed++
			}
		}
	}

	for _, id := range i.objects.IDs() {
		if !marks.obj[id] {
			if i.objects.Free(id) == nil {
				stats.ObjectFreed++
			}
		}
	}

	for _, id := range i.functions.IDs() {
		if !marks.fn[id] {
			if i.functions.Free(id) == nil {
				stats.FunctionFreed++
			}
		}
	}

	for _, id := range i.environments.IDs() {
		if id == i.rootEnv || marks.env[id] {
			continue
		}

		if i.environments.Free(id) == nil {
			stats.EnvironmentFreed++
		}
	}

	return stats
}

func (i *Interpreter) markValue(marks *gcMarks, v value.Value) {
	switch v.Kind() {
	case value.Symbol:
		marks.sym[v.AsHandle()] = true
	case value.Keyword:
		marks.kw[v.AsHandle()] = true
	case value.String:
		marks.str[v.AsHandle()] = true
	case value.Cons:
		i.markCons(marks, v.AsHandle())
	case value.Object:
		i.markObject(marks, v.AsHandle())
	case value.Function:
		i.markFunction(marks, v.AsHandle())
	}
}

func (i *Interpreter) markCons(marks *gcMarks, id value.ConsID) {
	if marks.cons[id] {
		return
	}

	marks.cons[id] = true

	rec, err := i.cons.Get(id)
	if err != nil {
		return
	}

	i.markValue(marks, rec.Car)
	i.markValue(marks, rec.Cdr)
}

func (i *Interpreter) markObject(marks *gcMarks, id value.ObjectID) {
	if marks.obj[id] {
		return
	}

	marks.obj[id] = true

	rec, err := i.objects.Get(id)
	if err != nil {
		return
	}

	if rec.HasProto {
		i.markObject(marks, rec.Proto)
	}

	for sym, slot := range rec.Slots {
		marks.sym[sym] = true
		i.markValue(marks, slot.Value)
	}
}

func (i *Interpreter) markFunction(marks *gcMarks, id value.FunctionID) {
	if marks.fn[id] {
		return
	}

	marks.fn[id] = true

	rec, err := i.functions.Get(id)
	if err != nil {
		return
	}

	if rec.Kind != FuncInterpreted && rec.Kind != FuncMacro {
		return
	}

	i.markEnvironment(marks, rec.ParentEnv)

	for _, form := range rec.Body {
		i.markValue(marks, form)
	}

	for _, sym := range rec.Params.Ordinary {
		marks.sym[sym] = true
	}

	for _, pd := range rec.Params.Optional {
		marks.sym[pd.Name] = true

		if pd.HasDefault {
			i.markValue(marks, pd.Default)
		}

		if pd.HasProvided {
			marks.sym[pd.ProvidedSym] = true
		}
	}

	if rec.Params.HasRest {
		marks.sym[rec.Params.Rest] = true
	}

	for _, pd := range rec.Params.Keys {
		marks.sym[pd.Name] = true

		if pd.HasDefault {
			i.markValue(marks, pd.Default)
		}

		if pd.HasProvided {
			marks.sym[pd.ProvidedSym] = true
		}
	}
}

func (i *Interpreter) markEnvironment(marks *gcMarks, id value.EnvironmentID) {
	if marks.env[id] {
		return
	}

	marks.env[id] = true

	rec, err := i.env(id)
	if err != nil {
		return
	}

	for sym, b := range rec.Variables {
		marks.sym[sym] = true
		i.markValue(marks, b.Value)
	}

	for sym, b := range rec.Functions {
		marks.sym[sym] = true
		i.markValue(marks, b.Value)
	}

	if rec.HasParent {
		i.markEnvironment(marks, rec.Parent)
	}
}
