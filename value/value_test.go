package value

import "testing"

func TestIntRoundTrip(t *testing.T) {
	v := Int(42)

	if v.Kind() != Integer {
		t.Fatalf("Kind() = %v, want Integer", v.Kind())
	}

	if got := v.AsInt(); got != 42 {
		t.Fatalf("AsInt() = %d, want 42", got)
	}
}

func TestFltRoundTrip(t *testing.T) {
	v := Flt(3.5)

	if v.Kind() != Float {
		t.Fatalf("Kind() = %v, want Float", v.Kind())
	}

	if got := v.AsFloat(); got != 3.5 {
		t.Fatalf("AsFloat() = %v, want 3.5", got)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   bool
	}{
		{"true", true},
		{"false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Bool(tt.in)

			if v.Kind() != Boolean {
				t.Fatalf("Kind() = %v, want Boolean", v.Kind())
			}

			if got := v.AsBool(); got != tt.in {
				t.Fatalf("AsBool() = %v, want %v", got, tt.in)
			}
		})
	}
}

func TestHandleKindsRoundTripAsHandle(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want Kind
	}{
		{"symbol", Sym(7), Symbol},
		{"keyword", Kwd(7), Keyword},
		{"string", Str(7), String},
		{"cons", ConsOf(7), Cons},
		{"object", Obj(7), Object},
		{"function", Fn(7), Function},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Kind() != tt.want {
				t.Fatalf("Kind() = %v, want %v", tt.v.Kind(), tt.want)
			}

			if tt.v.AsHandle() != 7 {
				t.Fatalf("AsHandle() = %d, want 7", tt.v.AsHandle())
			}
		})
	}
}

func TestIsNumber(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"integer", Int(1), true},
		{"float", Flt(1.5), true},
		{"boolean", Bool(true), false},
		{"symbol", Sym(1), false},
		{"string", Str(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsNumber(); got != tt.want {
				t.Fatalf("IsNumber() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueEqualityIsByKindAndPayload(t *testing.T) {
	if Int(1) != Int(1) {
		t.Fatalf("Int(1) != Int(1)")
	}

	if Int(1) == Int(2) {
		t.Fatalf("Int(1) == Int(2)")
	}

	// Distinct kinds with the same underlying payload bits must not compare
	// equal: a Symbol and a Keyword sharing handle 5 are different values.
	if Sym(5) == Kwd(5) {
		t.Fatalf("Sym(5) == Kwd(5): Kind must participate in equality")
	}

	// Handle-kind values compare by id (pointer-style identity), not by
	// whatever the arena happens to store at that id.
	if ConsOf(3) != ConsOf(3) {
		t.Fatalf("ConsOf(3) != ConsOf(3)")
	}
}
