package interp_test

import (
	"testing"

	"github.com/ardnew/nia/interp"
	"github.com/ardnew/nia/value"
)

func mustExec(t *testing.T, i *interp.Interpreter, source string) value.Value {
	t.Helper()

	v, err := i.Execute(source)
	if err != nil {
		t.Fatalf("Execute(%q) failed: %s", source, err)
	}

	return v
}

func TestArithmetic(t *testing.T) {
	i := interp.New()

	v := mustExec(t, i, "(+ 1 2 3)")
	if v.Kind() != value.Integer || v.AsInt() != 6 {
		t.Fatalf("got %v, want 6", v)
	}
}

func TestDefineFunctionAndCall(t *testing.T) {
	i := interp.New()

	mustExec(t, i, "(defn sq (x) (* x x))")

	v := mustExec(t, i, "(sq 5)")
	if v.Kind() != value.Integer || v.AsInt() != 25 {
		t.Fatalf("got %v, want 25", v)
	}
}

func TestClosureCapturesByReference(t *testing.T) {
	i := interp.New()

	mustExec(t, i, `
		(defn make-counter ()
		  (let ((n 0))
		    (fn () (set! n (+ n 1)) n)))
	`)
	mustExec(t, i, "(define-variable counter (make-counter))")
	mustExec(t, i, "(counter)")
	mustExec(t, i, "(counter)")

	v := mustExec(t, i, "(counter)")
	if v.Kind() != value.Integer || v.AsInt() != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestWhenMacroLikeForm(t *testing.T) {
	i := interp.New()

	v := mustExec(t, i, "(when (> 5 1) 1 2 3)")
	if v.Kind() != value.Integer || v.AsInt() != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestUserMacro(t *testing.T) {
	i := interp.New()

	mustExec(t, i, "(defm my-when (test #rest body) (list:new* (quote cond) (list:new (list:new* test body))))")

	v := mustExec(t, i, "(my-when (> 5 1) 1 2 3)")
	if v.Kind() != value.Integer || v.AsInt() != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestTryCatchZeroDivision(t *testing.T) {
	i := interp.New()

	v := mustExec(t, i, "(try (/ 1 0) (catch 'zero-division-error :caught))")
	if v.Kind() != value.Keyword {
		t.Fatalf("got %v, want keyword", v)
	}
}

func TestFrozenObjectRejectsWrite(t *testing.T) {
	i := interp.New()

	mustExec(t, i, "(define-variable o (object:new))")
	mustExec(t, i, "(object:set! o :x 1)")
	mustExec(t, i, "(object:freeze! o)")

	_, err := i.Execute("(object:set! o :x 2)")
	if err == nil {
		t.Fatalf("expected error writing to frozen object")
	}

	v := mustExec(t, i, "(object:get o :x)")
	if v.Kind() != value.Integer || v.AsInt() != 1 {
		t.Fatalf("got %v, want 1 (write to frozen object must not apply)", v)
	}
}

func TestReaderRoundTrip(t *testing.T) {
	i := interp.New()

	forms, err := i.Read(`(1 2.5 #t #f "hi" :kw sym (a . b))`)
	if err != nil {
		t.Fatalf("Read failed: %s", err)
	}

	if len(forms) != 1 {
		t.Fatalf("expected 1 top-level form, got %d", len(forms))
	}

	printed, perr := i.Print(forms[0])
	if perr != nil {
		t.Fatalf("Print failed: %s", perr)
	}

	reparsed, err := i.Read(printed)
	if err != nil {
		t.Fatalf("Read(printed) failed: %s", err)
	}

	eq, eerr := i.DeepEqual(forms[0], reparsed[0])
	if eerr != nil {
		t.Fatalf("DeepEqual failed: %s", eerr)
	}

	if !eq {
		t.Fatalf("round-trip mismatch: printed as %q", printed)
	}
}

func TestDeepEqual(t *testing.T) {
	i := interp.New()

	a := mustExec(t, i, "(list:new 1 2 (list:new 3 4))")
	b := mustExec(t, i, "(list:new 1 2 (list:new 3 4))")

	eq, err := i.DeepEqual(a, b)
	if err != nil {
		t.Fatalf("DeepEqual failed: %s", err)
	}

	if !eq {
		t.Fatalf("expected structurally equal lists to be DeepEqual")
	}
}

func TestObjectLiteralDesugar(t *testing.T) {
	i := interp.New()

	v := mustExec(t, i, `{:a 1 :b 2}`)
	if v.Kind() != value.Object {
		t.Fatalf("got %v, want object", v)
	}

	mustExec(t, i, "(define-variable obj {:a 1 :b 2})")

	av := mustExec(t, i, "(object:get obj :a)")
	if av.Kind() != value.Integer || av.AsInt() != 1 {
		t.Fatalf("got %v, want 1", av)
	}
}

func TestShortFnAutoParams(t *testing.T) {
	i := interp.New()

	mustExec(t, i, "(define-variable add2 #(+ %1 %2))")

	v := mustExec(t, i, "(add2 3 4)")
	if v.Kind() != value.Integer || v.AsInt() != 7 {
		t.Fatalf("got %v, want 7", v)
	}
}

func TestGCPreservesReachableReclaimsUnreachable(t *testing.T) {
	i := interp.New()

	mustExec(t, i, "(define-variable kept (list:new 1 2 3))")
	mustExec(t, i, "(list:new 4 5 6)") // unreachable after this statement

	stats := i.CollectGarbage()
	if stats.ConsFreed == 0 {
		t.Fatalf("expected at least one cons cell to be reclaimed")
	}

	v := mustExec(t, i, "(list:length kept)")
	if v.Kind() != value.Integer || v.AsInt() != 3 {
		t.Fatalf("kept value corrupted by GC: got %v", v)
	}
}

func TestBreakContinueInWhile(t *testing.T) {
	i := interp.New()

	mustExec(t, i, `
		(define-variable i 0)
		(define-variable sum 0)
		(while (< i 10)
		  (set! i (+ i 1))
		  (when (= (% i 2) 0) (continue))
		  (when (> i 7) (break))
		  (set! sum (+ sum i)))
	`)

	v := mustExec(t, i, "sum")
	if v.Kind() != value.Integer || v.AsInt() != 16 {
		t.Fatalf("got %v, want 16 (1+3+5+7)", v)
	}
}
