package interp

import (
	"io"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/nia/value"
)

// parseCacheEntry guards a single source's parse so concurrent callers with
// the same source text and the same interpreter only pay the Read cost once.
type parseCacheEntry struct {
	once  sync.Once
	forms []value.Value
	err   *Error
}

// parseCache memoizes Read by a hash of its source text and max-depth
// option, scoped to one Interpreter (forms reference that Interpreter's
// arenas, so a global cache shared across interpreters would be unsound).
type parseCache struct {
	entries sync.Map // uint64 -> *parseCacheEntry
}

// ReadCached is Read with memoization: repeated calls with identical source
// text and read options return the previously parsed forms without
// re-running the reader. Hosts that re-evaluate a config file on every
// input event (the common case for this interpreter) should prefer this
// over Read.
func (i *Interpreter) ReadCached(source string, opts ...ReaderOption) ([]value.Value, *Error) {
	if i.parseCache == nil {
		i.parseCache = &parseCache{}
	}

	r := &reader{maxDepth: DefaultMaxReadDepth}
	for _, opt := range opts {
		opt(r)
	}

	key := xxh3.HashString(source) ^ uint64(r.maxDepth)

	entryAny, _ := i.parseCache.entries.LoadOrStore(key, &parseCacheEntry{})
	entry, _ := entryAny.(*parseCacheEntry)

	entry.once.Do(func() {
		forms, err := i.Read(source, opts...)
		if err != nil {
			entry.err = err

			return
		}

		entry.forms = forms
	})

	if entry.err != nil {
		return nil, entry.err
	}

	return entry.forms, nil
}

// ClearParseCache drops every memoized parse, forcing the next ReadCached
// call for each source to re-read it.
func (i *Interpreter) ClearParseCache() {
	i.parseCache = nil
}

// ReadAheadSource reads all of r using a prefetching reader, so a large
// script file on slow storage overlaps its I/O with earlier processing
// instead of blocking read calls on it serially.
func ReadAheadSource(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// cacheKeyString renders a cache key for diagnostics (e.g. a REPL ":cache"
// introspection command).
func cacheKeyString(h uint64) string {
	return strconv.FormatUint(h, 36)
}
