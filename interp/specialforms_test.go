package interp_test

import (
	"testing"

	"github.com/ardnew/nia/interp"
	"github.com/ardnew/nia/value"
)

// TestMacroHygieneGensymAvoidsCapture builds a macro that introduces its own
// let-binding named "tmp" via gensym. Because the gensym'd symbol and the
// caller's literal "tmp" are distinct handles despite sharing a printed
// name, the caller's binding must survive unshadowed.
func TestMacroHygieneGensymAvoidsCapture(t *testing.T) {
	i := interp.New()

	mustExec(t, i, `
		(defm hygienic-let (body)
		  (list:new (quote let) (list:new (list:new (gensym "tmp") 99)) body))
	`)
	mustExec(t, i, "(define-variable tmp 7)")

	v := mustExec(t, i, "(hygienic-let tmp)")
	if v.Kind() != value.Integer || v.AsInt() != 7 {
		t.Fatalf("got %v, want 7: macro's internal \"tmp\" binding captured the caller's tmp", v)
	}
}

// TestTryCatchFrozenObjectWrite exercises catch against a builtin-raised
// error symbol: writing a frozen object's slot raises generic-execution-error,
// which a catch clause can target directly.
func TestTryCatchFrozenObjectWrite(t *testing.T) {
	i := interp.New()

	mustExec(t, i, "(define-variable o {:a 1 :b 2})")
	mustExec(t, i, "(object:freeze! o)")

	v := mustExec(t, i, "(try (object:set! o :a 3) (catch 'generic-execution-error :ok))")
	if v.Kind() != value.Keyword {
		t.Fatalf("got %v, want the :ok keyword from the catch handler", v)
	}

	a := mustExec(t, i, "(object:get o :a)")
	if a.Kind() != value.Integer || a.AsInt() != 1 {
		t.Fatalf("got %v, want 1: the rejected write must not have applied", a)
	}
}

// TestTryCatchNonMatchingSymbolPropagates confirms a catch clause whose
// target symbol doesn't match the raised error's total-cause symbol lets the
// error propagate uncaught.
func TestTryCatchNonMatchingSymbolPropagates(t *testing.T) {
	i := interp.New()

	_, err := i.Execute("(try (/ 1 0) (catch 'assertion-error :caught))")
	if err == nil {
		t.Fatalf("expected the zero-division error to propagate past a non-matching catch clause")
	}
}
