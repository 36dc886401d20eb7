package arena

import "testing"

func TestArenaAllocateGetFree(t *testing.T) {
	a := New[string]("widget")

	id1 := a.Allocate("first")
	id2 := a.Allocate("second")

	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %s and %s", id1, id2)
	}

	v, err := a.Get(id1)
	if err != nil || v != "first" {
		t.Fatalf("Get(id1) = %q, %v, want %q, nil", v, err, "first")
	}

	if err := a.Free(id1); err != nil {
		t.Fatalf("Free(id1) failed: %v", err)
	}

	if _, err := a.Get(id1); err == nil {
		t.Fatalf("expected Get to fail after Free")
	}

	v2, err := a.Get(id2)
	if err != nil || v2 != "second" {
		t.Fatalf("Get(id2) = %q, %v, want %q, nil", v2, err, "second")
	}
}

func TestArenaFreeUnknownID(t *testing.T) {
	a := New[int]("widget")

	if err := a.Free(99); err == nil {
		t.Fatalf("expected error freeing an id that was never allocated")
	}

	if _, err := a.Get(0); err == nil {
		t.Fatalf("expected Get(0) to fail: zero id is never live")
	}
}

func TestArenaSetReplacesRecord(t *testing.T) {
	a := New[int]("counter")

	id := a.Allocate(1)

	if err := a.Set(id, 2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, err := a.Get(id)
	if err != nil || v != 2 {
		t.Fatalf("Get after Set = %d, %v, want 2, nil", v, err)
	}
}

func TestArenaGetPtrMutatesInPlace(t *testing.T) {
	a := New[struct{ N int }]("rec")

	id := a.Allocate(struct{ N int }{N: 1})

	p, err := a.GetPtr(id)
	if err != nil {
		t.Fatalf("GetPtr failed: %v", err)
	}

	p.N = 42

	v, err := a.Get(id)
	if err != nil || v.N != 42 {
		t.Fatalf("Get after GetPtr mutation = %+v, %v, want N=42", v, err)
	}
}

func TestArenaIDsSkipsFreedSlots(t *testing.T) {
	a := New[int]("slot")

	id1 := a.Allocate(1)
	id2 := a.Allocate(2)
	id3 := a.Allocate(3)

	if err := a.Free(id2); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	ids := a.IDs()
	want := []ID{id1, id3}

	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, want %v", ids, want)
	}

	for idx, id := range ids {
		if id != want[idx] {
			t.Fatalf("IDs()[%d] = %s, want %s", idx, id, want[idx])
		}
	}
}

func TestArenaLenCountsOnlyLiveRecords(t *testing.T) {
	a := New[int]("slot")

	a.Allocate(1)
	id2 := a.Allocate(2)
	a.Allocate(3)

	if got := a.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	if err := a.Free(id2); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	if got := a.Len(); got != 2 {
		t.Fatalf("Len() after Free = %d, want 2", got)
	}
}

func TestArenaIDNeverReusedAfterFree(t *testing.T) {
	a := New[int]("slot")

	id1 := a.Allocate(1)

	if err := a.Free(id1); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	id2 := a.Allocate(2)

	if id1 == id2 {
		t.Fatalf("expected a freed id to never be reallocated, got id1 == id2 == %s", id1)
	}

	if _, err := a.Get(id1); err == nil {
		t.Fatalf("stale id1 must still fail Get rather than alias id2's record")
	}
}

func TestInternedInternReturnsSameIDForSameKey(t *testing.T) {
	in := NewInterned[string]("name")

	id1 := in.Intern("foo", func() string { return "foo" })
	id2 := in.Intern("foo", func() string { return "foo-again" })

	if id1 != id2 {
		t.Fatalf("Intern(\"foo\") twice returned different ids: %s, %s", id1, id2)
	}
}

func TestInternedDistinctKeysGetDistinctIDs(t *testing.T) {
	in := NewInterned[string]("name")

	id1 := in.Intern("foo", func() string { return "foo" })
	id2 := in.Intern("bar", func() string { return "bar" })

	if id1 == id2 {
		t.Fatalf("distinct keys %q and %q must not share an id", "foo", "bar")
	}

	v1, err := in.Arena().Get(id1)
	if err != nil || v1 != "foo" {
		t.Fatalf("Arena().Get(id1) = %q, %v, want %q, nil", v1, err, "foo")
	}

	v2, err := in.Arena().Get(id2)
	if err != nil || v2 != "bar" {
		t.Fatalf("Arena().Get(id2) = %q, %v, want %q, nil", v2, err, "bar")
	}
}

func TestInternedLookup(t *testing.T) {
	in := NewInterned[string]("name")

	if _, ok := in.Lookup("foo"); ok {
		t.Fatalf("expected Lookup to miss before Intern")
	}

	id := in.Intern("foo", func() string { return "foo" })

	got, ok := in.Lookup("foo")
	if !ok || got != id {
		t.Fatalf("Lookup(\"foo\") = %s, %v, want %s, true", got, ok, id)
	}
}

func TestInternedForgetRemovesReverseIndexOnly(t *testing.T) {
	in := NewInterned[string]("name")

	id := in.Intern("foo", func() string { return "foo" })

	in.Forget("foo")

	if _, ok := in.Lookup("foo"); ok {
		t.Fatalf("expected Lookup to miss after Forget")
	}

	// Forget does not free the underlying record; the caller is responsible
	// for that (the garbage collector frees the arena slot separately).
	v, err := in.Arena().Get(id)
	if err != nil || v != "foo" {
		t.Fatalf("Arena().Get(id) after Forget = %q, %v, want %q, nil", v, err, "foo")
	}

	// Re-interning the same key now allocates a fresh id rather than
	// resurrecting the forgotten one.
	id2 := in.Intern("foo", func() string { return "foo" })
	if id2 == id {
		t.Fatalf("expected Intern after Forget to allocate a fresh id, got the same id %s", id)
	}
}

func TestInternedKeysEnumeratesLiveMappings(t *testing.T) {
	in := NewInterned[string]("name")

	in.Intern("foo", func() string { return "foo" })
	in.Intern("bar", func() string { return "bar" })

	keys := in.Keys()
	if len(keys) != 2 {
		t.Fatalf("Keys() = %v, want 2 entries", keys)
	}

	seen := map[string]bool{}
	for _, k := range keys {
		seen[k] = true
	}

	if !seen["foo"] || !seen["bar"] {
		t.Fatalf("Keys() = %v, want both %q and %q", keys, "foo", "bar")
	}
}
