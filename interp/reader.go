package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardnew/nia/value"
)

// DefaultMaxReadDepth caps nested list/object/quote recursion while reading,
// guarding against runaway recursive input.
const DefaultMaxReadDepth = 512

// ReaderOption configures a read.
type ReaderOption func(*reader)

// WithMaxReadDepth overrides DefaultMaxReadDepth.
func WithMaxReadDepth(n int) ReaderOption {
	return func(r *reader) { r.maxDepth = n }
}

// Read parses source into an ordered sequence of Values (spec §4.2).
func (i *Interpreter) Read(source string, opts ...ReaderOption) ([]value.Value, *Error) {
	r := &reader{i: i, src: []rune(source), maxDepth: DefaultMaxReadDepth}
	for _, opt := range opts {
		opt(r)
	}

	return r.program()
}

type reader struct {
	i        *Interpreter
	src      []rune
	pos      int
	depth    int
	maxDepth int
}

func (r *reader) atEOF() bool { return r.pos >= len(r.src) }
func (r *reader) peek() rune  { return r.src[r.pos] }
func (r *reader) peekAt(off int) (rune, bool) {
	idx := r.pos + off
	if idx < 0 || idx >= len(r.src) {
		return 0, false
	}

	return r.src[idx], true
}
func (r *reader) next() rune {
	c := r.src[r.pos]
	r.pos++

	return c
}

func (r *reader) remainder() string {
	const maxShown = 40

	rest := string(r.src[r.pos:])
	if len(rest) > maxShown {
		rest = rest[:maxShown] + "..."
	}

	return rest
}

func (r *reader) errorf(format string, args ...any) *Error {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...)) + ": unconsumed input " + strconv.Quote(r.remainder())

	return New(ParseError, msg)
}

func isDelim(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '{', '}', '\'', '"', ';':
		return true
	default:
		return false
	}
}

func (r *reader) skipWS() {
	for !r.atEOF() {
		c := r.peek()
		switch {
		case c == ';':
			for !r.atEOF() && r.peek() != '\n' {
				r.pos++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			r.pos++
		default:
			return
		}
	}
}

func (r *reader) program() ([]value.Value, *Error) {
	var forms []value.Value

	for {
		r.skipWS()
		if r.atEOF() {
			return forms, nil
		}

		v, err := r.form()
		if err != nil {
			return nil, err
		}

		forms = append(forms, v)
	}
}

func (r *reader) enter() *Error {
	r.depth++
	if r.depth > r.maxDepth {
		return New(ParseError, "maximum read depth exceeded")
	}

	return nil
}

func (r *reader) leave() { r.depth-- }

func (r *reader) form() (value.Value, *Error) {
	r.skipWS()

	if r.atEOF() {
		return value.Value{}, r.errorf("unexpected end of input")
	}

	switch c := r.peek(); c {
	case '(':
		return r.list()
	case '\'':
		return r.quoteForm()
	case '{':
		return r.objectForm()
	case '"':
		return r.stringLiteral()
	case ':':
		return r.keywordLiteral()
	case '#':
		return r.hashForm()
	default:
		return r.atom()
	}
}

func (r *reader) scanToken() string {
	start := r.pos
	for !r.atEOF() && !isDelim(r.peek()) {
		r.pos++
	}

	return string(r.src[start:r.pos])
}

func (r *reader) list() (value.Value, *Error) {
	if err := r.enter(); err != nil {
		return value.Value{}, err
	}
	defer r.leave()

	r.next() // consume '('

	var items []value.Value

	tail := r.i.NilValue()

	for {
		r.skipWS()

		if r.atEOF() {
			return value.Value{}, r.errorf("unterminated list")
		}

		if r.peek() == ')' {
			r.next()

			break
		}

		if r.matchCdrMarker() {
			r.skipWS()

			v, err := r.form()
			if err != nil {
				return value.Value{}, err
			}

			tail = v

			r.skipWS()

			if r.atEOF() || r.peek() != ')' {
				return value.Value{}, r.errorf("expected ')' after #. tail form")
			}

			r.next()

			break
		}

		v, err := r.form()
		if err != nil {
			return value.Value{}, err
		}

		items = append(items, v)
	}

	result := tail
	for idx := len(items) - 1; idx >= 0; idx-- {
		result = value.ConsOf(r.i.MakeCons(items[idx], result))
	}

	return result, nil
}

// matchCdrMarker recognizes the "#." explicit-cdr token only when it forms a
// complete token (the next rune is a delimiter or EOF), so symbols that
// merely start with "#." are never misread.
func (r *reader) matchCdrMarker() bool {
	c0, ok0 := r.peekAt(0)
	c1, ok1 := r.peekAt(1)

	if !ok0 || !ok1 || c0 != '#' || c1 != '.' {
		return false
	}

	if c2, ok2 := r.peekAt(2); ok2 && !isDelim(c2) {
		return false
	}

	r.pos += 2

	return true
}

func (r *reader) quoteForm() (value.Value, *Error) {
	if err := r.enter(); err != nil {
		return value.Value{}, err
	}
	defer r.leave()

	r.next() // consume '\''

	inner, err := r.form()
	if err != nil {
		return value.Value{}, err
	}

	quoteSym := value.Sym(r.i.internSymbol("quote"))

	return value.ConsOf(r.i.MakeCons(quoteSym, value.ConsOf(r.i.MakeCons(inner, r.i.NilValue())))), nil
}

// objectForm parses "{" (keyword form)* "}" and desugars it into a sequence
// of object:set! calls on a freshly made object (spec §4.2):
//
//	(let ((#g1 (object:new))) (object:set! #g1 :k1 v1) ... #g1)
func (r *reader) objectForm() (value.Value, *Error) {
	if err := r.enter(); err != nil {
		return value.Value{}, err
	}
	defer r.leave()

	r.next() // consume '{'

	var pairs []value.Value

	for {
		r.skipWS()

		if r.atEOF() {
			return value.Value{}, r.errorf("unterminated object literal")
		}

		if r.peek() == '}' {
			r.next()

			break
		}

		if r.peek() != ':' {
			return value.Value{}, r.errorf("object literal keys must be keywords")
		}

		key, err := r.keywordLiteral()
		if err != nil {
			return value.Value{}, err
		}

		r.skipWS()

		val, err := r.form()
		if err != nil {
			return value.Value{}, err
		}

		pairs = append(pairs, key, val)
	}

	tmp := value.Sym(r.i.Gensym("obj"))

	letBinding := r.i.VecToList([]value.Value{tmp, r.i.VecToList([]value.Value{value.Sym(r.i.internSymbol("object:new"))})})
	bindings := r.i.VecToList([]value.Value{letBinding})

	body := []value.Value{value.Sym(r.i.internSymbol("let")), bindings}

	for idx := 0; idx < len(pairs); idx += 2 {
		setCall := r.i.VecToList([]value.Value{
			value.Sym(r.i.internSymbol("object:set!")),
			tmp,
			pairs[idx],
			pairs[idx+1],
		})
		body = append(body, setCall)
	}

	body = append(body, tmp)

	return r.i.VecToList(body), nil
}

func (r *reader) stringLiteral() (value.Value, *Error) {
	r.next() // consume opening quote

	var b strings.Builder

	for {
		if r.atEOF() {
			return value.Value{}, r.errorf("unterminated string literal")
		}

		c := r.next()

		if c == '"' {
			break
		}

		if c == '\\' {
			if r.atEOF() {
				return value.Value{}, r.errorf("unterminated escape sequence")
			}

			esc := r.next()

			switch esc {
			case '\\':
				b.WriteRune('\\')
			case '"':
				b.WriteRune('"')
			case 'n':
				b.WriteRune('\n')
			case 'r':
				b.WriteRune('\r')
			case 't':
				b.WriteRune('\t')
			default:
				return value.Value{}, r.errorf("unknown escape sequence \\%c", esc)
			}

			continue
		}

		b.WriteRune(c)
	}

	return value.Str(r.i.internString(b.String())), nil
}

func (r *reader) keywordLiteral() (value.Value, *Error) {
	r.next() // consume ':'

	name := r.scanToken()
	if name == "" {
		return value.Value{}, r.errorf("empty keyword")
	}

	return value.Kwd(r.i.internKeyword(name)), nil
}

func (r *reader) hashForm() (value.Value, *Error) {
	if next, ok := r.peekAt(1); ok && next == '(' {
		r.next() // '#'
		r.next() // '('

		return r.shortFn()
	}

	r.next() // consume '#'

	name := "#" + r.scanToken()

	switch name {
	case "#t":
		return value.Bool(true), nil
	case "#f":
		return value.Bool(false), nil
	default:
		return value.Sym(r.i.internSymbol(name)), nil
	}
}

func (r *reader) shortFn() (value.Value, *Error) {
	if err := r.enter(); err != nil {
		return value.Value{}, err
	}
	defer r.leave()

	var body []value.Value

	for {
		r.skipWS()

		if r.atEOF() {
			return value.Value{}, r.errorf("unterminated shorthand function literal")
		}

		if r.peek() == ')' {
			r.next()

			break
		}

		v, err := r.form()
		if err != nil {
			return value.Value{}, err
		}

		body = append(body, v)
	}

	maxParam := 0
	for _, v := range body {
		r.i.walkAutoParams(v, &maxParam)
	}

	params := make([]value.Value, maxParam)
	for n := 1; n <= maxParam; n++ {
		params[n-1] = value.Sym(r.i.internSymbol("%" + strconv.Itoa(n)))
	}

	lambdaBody := append([]value.Value{
		value.Sym(r.i.internSymbol("lambda")),
		r.i.VecToList(params),
	}, body...)

	lambda := r.i.VecToList(lambdaBody)

	return r.i.VecToList([]value.Value{value.Sym(r.i.internSymbol("function")), lambda}), nil
}

// walkAutoParams recursively scans a parsed form for symbols named "%N" and
// tracks the maximum N seen, used by shortFn to size the implicit parameter
// list.
func (i *Interpreter) walkAutoParams(v value.Value, max *int) {
	switch v.Kind() {
	case value.Symbol:
		name, err := i.SymbolName(v.AsHandle())
		if err != nil || len(name) < 2 || name[0] != '%' {
			return
		}

		n, convErr := strconv.Atoi(name[1:])
		if convErr == nil && n > *max {
			*max = n
		}
	case value.Cons:
		rec, err := i.cons.Get(v.AsHandle())
		if err != nil {
			return
		}

		i.walkAutoParams(rec.Car, max)
		i.walkAutoParams(rec.Cdr, max)
	}
}

func (r *reader) atom() (value.Value, *Error) {
	c := r.peek()

	if isDigitStart(r) {
		return r.number()
	}

	token := r.scanToken()
	if token == "" {
		return value.Value{}, r.errorf("unexpected character %q", c)
	}

	return value.Sym(r.i.internSymbol(token)), nil
}

func isDigitStart(r *reader) bool {
	c := r.peek()
	if c >= '0' && c <= '9' {
		return true
	}

	if c == '+' || c == '-' {
		if next, ok := r.peekAt(1); ok && next >= '0' && next <= '9' {
			return true
		}
	}

	return false
}

func (r *reader) number() (value.Value, *Error) {
	token := r.scanToken()

	if strings.ContainsAny(token, ".eE") {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return value.Value{}, r.errorf("invalid float literal %q", token)
		}

		return value.Flt(f), nil
	}

	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return value.Value{}, r.errorf("invalid integer literal %q (overflow or malformed)", token)
	}

	return value.Int(n), nil
}
