// Package value defines the tagged-union Value type shared by every
// interpreter subsystem: the reader produces Values, the evaluator consumes
// and produces them, and the arenas store the records Values point at.
package value

import (
	"math"

	"github.com/ardnew/nia/arena"
)

// SymbolID, KeywordID, StringID, ConsID, ObjectID, FunctionID, and
// EnvironmentID are aliases of arena.ID that name which arena a handle
// belongs to. Being aliases they are interchangeable: the Go type checker
// does not catch a handle used against the wrong arena.
type (
	SymbolID      = arena.ID
	KeywordID     = arena.ID
	StringID      = arena.ID
	ConsID        = arena.ID
	ObjectID      = arena.ID
	FunctionID    = arena.ID
	EnvironmentID = arena.ID
)

// Kind tags the variant a Value currently holds.
//
//go:generate go tool stringer -type Kind -output kind_string.go
type Kind uint8

const (
	Integer Kind = iota
	Float
	Boolean
	Symbol
	Keyword
	String
	Cons
	Object
	Function
)

// Value is a 16-byte plain-old-data sum type: a Kind tag plus a single
// 8-byte payload reinterpreted according to Kind. Primitive variants
// (Integer, Float, Boolean) store their bits directly in the payload;
// handle variants (Symbol, Keyword, String, Cons, Object, Function) store
// their arena.ID. Values are comparable with ==, which gives primitives
// by-value equality and handle variants pointer-style identity equality for
// free. A separate DeepEqual walks structure for composite values.
type Value struct {
	kind    Kind
	payload uint64
}

// Int returns an Integer value.
func Int(i int64) Value { return Value{kind: Integer, payload: uint64(i)} }

// Flt returns a Float value.
func Flt(f float64) Value { return Value{kind: Float, payload: math.Float64bits(f)} }

// Bool returns a Boolean value.
func Bool(b bool) Value {
	if b {
		return Value{kind: Boolean, payload: 1}
	}

	return Value{kind: Boolean, payload: 0}
}

// Sym returns a Symbol value wrapping id.
func Sym(id SymbolID) Value { return Value{kind: Symbol, payload: uint64(id)} }

// Kwd returns a Keyword value wrapping id.
func Kwd(id KeywordID) Value { return Value{kind: Keyword, payload: uint64(id)} }

// Str returns a String value wrapping id.
func Str(id StringID) Value { return Value{kind: String, payload: uint64(id)} }

// ConsOf returns a Cons value wrapping id.
func ConsOf(id ConsID) Value { return Value{kind: Cons, payload: uint64(id)} }

// Obj returns an Object value wrapping id.
func Obj(id ObjectID) Value { return Value{kind: Object, payload: uint64(id)} }

// Fn returns a Function value wrapping id.
func Fn(id FunctionID) Value { return Value{kind: Function, payload: uint64(id)} }

// Kind reports the variant held.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the Integer payload. Callers must check Kind first.
func (v Value) AsInt() int64 { return int64(v.payload) }

// AsFloat returns the Float payload.
func (v Value) AsFloat() float64 { return math.Float64frombits(v.payload) }

// AsBool returns the Boolean payload.
func (v Value) AsBool() bool { return v.payload != 0 }

// AsHandle returns the arena.ID payload for any handle-kind Value.
func (v Value) AsHandle() arena.ID { return arena.ID(v.payload) }

// IsNumber reports whether v is an Integer or a Float.
func (v Value) IsNumber() bool { return v.kind == Integer || v.kind == Float }
