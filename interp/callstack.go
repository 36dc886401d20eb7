package interp

import "github.com/ardnew/nia/value"

// Frame records one active function/macro/special-form invocation: enough
// to print a diagnostic backtrace and to bound recursion (spec §4.7). The
// call stack is exposed to host diagnostics only; it is not a GC root — the
// evaluator already holds every live argument Value in a local variable for
// the duration of the call (spec §3's Lifecycle, §4.7).
type Frame struct {
	FunctionID value.FunctionID
	Name       value.SymbolID
	HasName    bool
	Arguments  []value.Value
}

// CallStack is a simple pushdown of Frames, grounded on the reference
// implementation's CallStack (push named/anonymous invocation, pop, clear).
type CallStack struct {
	frames []Frame
}

// NewCallStack returns an empty call stack.
func NewCallStack() *CallStack { return &CallStack{} }

// PushNamed records entry into a function bound to a symbol (the common
// case: calling something found via function-namespace lookup).
func (s *CallStack) PushNamed(fn value.FunctionID, name value.SymbolID, args []value.Value) {
	s.frames = append(s.frames, Frame{FunctionID: fn, Name: name, HasName: true, Arguments: args})
}

// PushAnonymous records entry into a function value that was not resolved
// through a symbol (e.g. an immediately-invoked lambda expression).
func (s *CallStack) PushAnonymous(fn value.FunctionID, args []value.Value) {
	s.frames = append(s.frames, Frame{FunctionID: fn, Arguments: args})
}

// Pop removes and returns the most recent frame. It is safe to call on an
// empty stack; ok reports whether a frame was present.
func (s *CallStack) Pop() (frame Frame, ok bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}

	last := len(s.frames) - 1
	frame = s.frames[last]
	s.frames = s.frames[:last]

	return frame, true
}

// Len reports the current stack depth.
func (s *CallStack) Len() int { return len(s.frames) }

// Clear empties the stack. The evaluator does not call it: every push is
// paired with a deferred Pop, so the stack is empty again once an error has
// unwound out of Execute.
func (s *CallStack) Clear() { s.frames = s.frames[:0] }

// Frames returns a snapshot of the current stack, outermost first, for host
// diagnostics (e.g. a REPL ":backtrace" command).
func (s *CallStack) Frames() []Frame {
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)

	return out
}
