// Package arena implements the small-integer-handle memory model used by the
// interpreter: every kind of heap record (symbols, keywords, strings, cons
// cells, objects, functions, environments) lives in its own Arena, indexed by
// an opaque monotonically increasing ID. Separating identity (the ID) from
// storage lets callers copy a handle freely while the owning Arena centralizes
// the record's lifetime; the garbage collector reclaims records with a single
// sweep per arena rather than per-kind reference counting.
package arena

import "fmt"

// ID is an opaque handle into an Arena. The zero value never refers to a live
// record; Arena ids start at 1 so a zero ID can double as "absent" in structs
// that embed one.
type ID uint32

// String implements fmt.Stringer for diagnostics.
func (id ID) String() string {
	return fmt.Sprintf("#%d", uint32(id))
}

// NotFoundError reports that an ID does not name a live record in an Arena.
// Arena callers in the interp package wrap this into the interpreter's own
// Failure-kind Error; it exists here, dependency-free, so arena stays
// reusable outside the interpreter.
type NotFoundError struct {
	Kind string
	ID   ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("arena(%s): unknown id %s", e.Kind, e.ID)
}

// Arena owns every live record of one kind. Ids are never reused within an
// Arena's lifetime: free marks a slot as tombstoned rather than reclaiming
// the index, so a stale ID captured before a free reliably fails Get instead
// of silently aliasing an unrelated record allocated later.
type Arena[T any] struct {
	kind    string
	records []T
	live    []bool
	nextID  ID
}

// New creates an empty Arena. kind is used only for error messages (e.g.
// "cons", "object").
func New[T any](kind string) *Arena[T] {
	return &Arena[T]{kind: kind}
}

// Allocate appends a new record and returns its fresh id.
func (a *Arena[T]) Allocate(record T) ID {
	a.nextID++
	id := a.nextID

	idx := int(id) - 1
	if idx == len(a.records) {
		a.records = append(a.records, record)
		a.live = append(a.live, true)
	} else {
		// Should not happen given the monotonic counter, but keep Allocate
		// total rather than panicking on an internal inconsistency.
		for len(a.records) <= idx {
			var zero T

			a.records = append(a.records, zero)
			a.live = append(a.live, false)
		}

		a.records[idx] = record
		a.live[idx] = true
	}

	return id
}

func (a *Arena[T]) index(id ID) (int, bool) {
	if id == 0 {
		return 0, false
	}

	idx := int(id) - 1
	if idx < 0 || idx >= len(a.records) || !a.live[idx] {
		return 0, false
	}

	return idx, true
}

// Get returns a copy of the record named by id.
func (a *Arena[T]) Get(id ID) (T, error) {
	idx, ok := a.index(id)
	if !ok {
		var zero T

		return zero, &NotFoundError{Kind: a.kind, ID: id}
	}

	return a.records[idx], nil
}

// GetPtr returns a mutable pointer to the record named by id. The pointer is
// only valid until the next Allocate or Free call: Allocate appends to the
// backing slice, which may move it so that writes through an earlier pointer
// no longer reach the arena, and Free zeroes the record. Callers should not
// retain it across either call or a GC sweep.
func (a *Arena[T]) GetPtr(id ID) (*T, error) {
	idx, ok := a.index(id)
	if !ok {
		return nil, &NotFoundError{Kind: a.kind, ID: id}
	}

	return &a.records[idx], nil
}

// Set replaces the record named by id.
func (a *Arena[T]) Set(id ID, record T) error {
	idx, ok := a.index(id)
	if !ok {
		return &NotFoundError{Kind: a.kind, ID: id}
	}

	a.records[idx] = record

	return nil
}

// Free removes the record named by id. Freeing an unknown id is reported as
// an error so the garbage collector can detect its own bugs (double free,
// dangling candidate set) rather than silently succeeding.
func (a *Arena[T]) Free(id ID) error {
	idx, ok := a.index(id)
	if !ok {
		return &NotFoundError{Kind: a.kind, ID: id}
	}

	var zero T

	a.records[idx] = zero
	a.live[idx] = false

	return nil
}

// IDs enumerates every live id, in allocation order. Used only by the
// garbage collector to build its initial candidate set.
func (a *Arena[T]) IDs() []ID {
	ids := make([]ID, 0, len(a.records))

	for i, alive := range a.live {
		if alive {
			ids = append(ids, ID(i+1))
		}
	}

	return ids
}

// Len reports the number of live records.
func (a *Arena[T]) Len() int {
	n := 0

	for _, alive := range a.live {
		if alive {
			n++
		}
	}

	return n
}

// Interned wraps an Arena with a reverse name index, giving O(1) interning
// for the Symbol, Keyword, and String arenas: identical content maps to the
// same handle for the lifetime of the interpreter.
type Interned[T any] struct {
	arena *Arena[T]
	byKey map[string]ID
}

// NewInterned creates an empty Interned arena.
func NewInterned[T any](kind string) *Interned[T] {
	return &Interned[T]{
		arena: New[T](kind),
		byKey: make(map[string]ID),
	}
}

// Intern returns the existing id for key if present, otherwise allocates a
// fresh record via make and registers it under key.
func (a *Interned[T]) Intern(key string, make func() T) ID {
	if id, ok := a.byKey[key]; ok {
		return id
	}

	id := a.arena.Allocate(make())
	a.byKey[key] = id

	return id
}

// Lookup returns the id already interned under key, if any.
func (a *Interned[T]) Lookup(key string) (ID, bool) {
	id, ok := a.byKey[key]

	return id, ok
}

// Arena exposes the underlying Arena for Get/Free/IDs access.
func (a *Interned[T]) Arena() *Arena[T] { return a.arena }

// Forget removes key from the reverse index without freeing the record; used
// when a gensym-like allocation must bypass interning reuse (gensym never
// calls Intern in the first place, so this is provided for completeness and
// used by GC bookkeeping when a name's sole backing record is swept).
func (a *Interned[T]) Forget(key string) {
	delete(a.byKey, key)
}

// Keys enumerates every interned key currently mapped to a live id.
func (a *Interned[T]) Keys() []string {
	keys := make([]string, 0, len(a.byKey))
	for k := range a.byKey {
		keys = append(keys, k)
	}

	return keys
}
