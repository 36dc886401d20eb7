package interp_test

import (
	"testing"

	"github.com/ardnew/nia/interp"
)

func TestFrozenObjectRejectsDelete(t *testing.T) {
	i := interp.New()

	mustExec(t, i, "(define-variable o (object:new))")
	mustExec(t, i, "(object:set! o :x 1)")
	mustExec(t, i, "(object:freeze! o)")

	if _, err := i.Execute("(object:delete! o :x)"); err == nil {
		t.Fatalf("expected error deleting a slot from a frozen object")
	}

	v := mustExec(t, i, "(object:get o :x)")
	if v.AsInt() != 1 {
		t.Fatalf("got %v, want 1 (delete on frozen object must not apply)", v)
	}
}

func TestFrozenObjectRejectsSetProto(t *testing.T) {
	i := interp.New()

	mustExec(t, i, "(define-variable o (object:new))")
	mustExec(t, i, "(define-variable p (object:new))")
	mustExec(t, i, "(object:freeze! o)")

	if _, err := i.Execute("(object:set-proto! o p)"); err == nil {
		t.Fatalf("expected error reassigning the prototype of a frozen object")
	}
}

func TestGensymProducesDistinctSymbolsForSameHint(t *testing.T) {
	i := interp.New()

	a := i.Gensym("tmp")
	b := i.Gensym("tmp")

	if a == b {
		t.Fatalf("gensym with the same hint twice returned the same id: %v", a)
	}
}

// TestStringLiteralInterningBijection confirms that reading the same string
// literal twice yields the same interned handle, while distinct literals get
// distinct handles.
func TestStringLiteralInterningBijection(t *testing.T) {
	i := interp.New()

	a := mustExec(t, i, `"hello"`)
	b := mustExec(t, i, `"hello"`)
	c := mustExec(t, i, `"world"`)

	if a != b {
		t.Fatalf("distinct reads of the same string literal got different handles: %v, %v", a, b)
	}

	if a == c {
		t.Fatalf("distinct string literals shared a handle: %v", a)
	}
}
