package interp

import (
	"strconv"
	"strings"

	"github.com/ardnew/nia/value"
)

// Print renders v in read syntax: the result, fed back through Read,
// reproduces an equal? value for every Value kind except Function and
// Object. Functions print as an opaque tag since there is no literal syntax
// for one; an object prints as a {...} literal, which Read turns into the
// let form that builds such an object, not into an object.
func (i *Interpreter) Print(v value.Value) (string, *Error) {
	var b strings.Builder
	if err := i.writeValue(&b, v); err != nil {
		return "", err
	}

	return b.String(), nil
}

func (i *Interpreter) writeValue(b *strings.Builder, v value.Value) *Error {
	switch v.Kind() {
	case value.Integer:
		b.WriteString(strconv.FormatInt(v.AsInt(), 10))

	case value.Float:
		b.WriteString(formatFloat(v.AsFloat()))

	case value.Boolean:
		if v.AsBool() {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}

	case value.Symbol:
		name, err := i.SymbolName(v.AsHandle())
		if err != nil {
			return err
		}

		b.WriteString(name)

	case value.Keyword:
		rec, err := i.keywords.Arena().Get(v.AsHandle())
		if err != nil {
			return New(Failure, err.Error())
		}

		b.WriteByte(':')
		b.WriteString(rec.Name)

	case value.String:
		rec, err := i.strings.Arena().Get(v.AsHandle())
		if err != nil {
			return New(Failure, err.Error())
		}

		b.WriteString(strconv.Quote(rec.Bytes))

	case value.Cons:
		return i.writeCons(b, v.AsHandle())

	case value.Object:
		return i.writeObject(b, v.AsHandle())

	case value.Function:
		return i.writeFunction(b, v.AsHandle())

	default:
		return Newf(Failure, "unknown value kind %v", v.Kind())
	}

	return nil
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}

	return s
}

func (i *Interpreter) writeCons(b *strings.Builder, id value.ConsID) *Error {
	b.WriteByte('(')

	cur := value.ConsOf(id)
	first := true

	for {
		if cur.Kind() == value.Cons {
			rec, err := i.cons.Get(cur.AsHandle())
			if err != nil {
				return New(Failure, err.Error())
			}

			if !first {
				b.WriteByte(' ')
			}

			first = false

			if err := i.writeValue(b, rec.Car); err != nil {
				return err
			}

			cur = rec.Cdr

			continue
		}

		if i.IsNil(cur) {
			break
		}

		b.WriteString(" #. ")

		if err := i.writeValue(b, cur); err != nil {
			return err
		}

		break
	}

	b.WriteByte(')')

	return nil
}

func (i *Interpreter) writeObject(b *strings.Builder, id value.ObjectID) *Error {
	slots, err := i.enumerableSlots(id)
	if err != nil {
		return err
	}

	b.WriteByte('{')

	for idx, s := range slots {
		if idx > 0 {
			b.WriteByte(' ')
		}

		name, nerr := i.SymbolName(s.Sym)
		if nerr != nil {
			return nerr
		}

		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte(' ')

		if err := i.writeValue(b, s.Slot.Value); err != nil {
			return err
		}
	}

	b.WriteByte('}')

	return nil
}

func (i *Interpreter) writeFunction(b *strings.Builder, id value.FunctionID) *Error {
	rec, err := i.functions.Get(id)
	if err != nil {
		return New(Failure, err.Error())
	}

	kind := "function"

	switch rec.Kind {
	case FuncBuiltin:
		kind = "builtin"
	case FuncSpecialForm:
		kind = "special-form"
	case FuncMacro:
		kind = "macro"
	}

	b.WriteString("#<")
	b.WriteString(kind)

	if rec.Name != "" {
		b.WriteByte(':')
		b.WriteString(rec.Name)
	}

	b.WriteByte('>')

	return nil
}

// DeepEqual reports whether a and b are structurally equivalent: equal by
// value for primitives, and by recursive structural comparison for cons and
// object trees. Functions compare only by handle identity, since two
// distinct closures are never interchangeable regardless of their bodies.
func (i *Interpreter) DeepEqual(a, b value.Value) (bool, *Error) {
	if a.Kind() != b.Kind() {
		return false, nil
	}

	switch a.Kind() {
	case value.Integer:
		return a.AsInt() == b.AsInt(), nil

	case value.Float:
		return a.AsFloat() == b.AsFloat(), nil

	case value.Boolean:
		return a.AsBool() == b.AsBool(), nil

	case value.Symbol:
		an, err := i.SymbolName(a.AsHandle())
		if err != nil {
			return false, err
		}

		bn, err := i.SymbolName(b.AsHandle())
		if err != nil {
			return false, err
		}

		return an == bn, nil

	case value.Keyword:
		ar, err := i.keywords.Arena().Get(a.AsHandle())
		if err != nil {
			return false, New(Failure, err.Error())
		}

		br, err := i.keywords.Arena().Get(b.AsHandle())
		if err != nil {
			return false, New(Failure, err.Error())
		}

		return ar.Name == br.Name, nil

	case value.String:
		ar, err := i.strings.Arena().Get(a.AsHandle())
		if err != nil {
			return false, New(Failure, err.Error())
		}

		br, err := i.strings.Arena().Get(b.AsHandle())
		if err != nil {
			return false, New(Failure, err.Error())
		}

		return ar.Bytes == br.Bytes, nil

	case value.Cons:
		return i.deepEqualCons(a.AsHandle(), b.AsHandle())

	case value.Object:
		return i.deepEqualObject(a.AsHandle(), b.AsHandle())

	case value.Function:
		return a.AsHandle() == b.AsHandle(), nil

	default:
		return false, Newf(Failure, "unknown value kind %v", a.Kind())
	}
}

func (i *Interpreter) deepEqualCons(a, b value.ConsID) (bool, *Error) {
	if a == b {
		return true, nil
	}

	ra, err := i.cons.Get(a)
	if err != nil {
		return false, New(Failure, err.Error())
	}

	rb, err := i.cons.Get(b)
	if err != nil {
		return false, New(Failure, err.Error())
	}

	carEq, err := i.DeepEqual(ra.Car, rb.Car)
	if err != nil || !carEq {
		return false, err
	}

	return i.DeepEqual(ra.Cdr, rb.Cdr)
}

func (i *Interpreter) deepEqualObject(a, b value.ObjectID) (bool, *Error) {
	if a == b {
		return true, nil
	}

	ra, err := i.objects.Get(a)
	if err != nil {
		return false, New(Failure, err.Error())
	}

	rb, err := i.objects.Get(b)
	if err != nil {
		return false, New(Failure, err.Error())
	}

	if len(ra.Slots) != len(rb.Slots) {
		return false, nil
	}

	for key, slotA := range ra.Slots {
		slotB, ok := rb.Slots[key]
		if !ok {
			return false, nil
		}

		eq, err := i.DeepEqual(slotA.Value, slotB.Value)
		if err != nil || !eq {
			return false, err
		}
	}

	return true, nil
}
