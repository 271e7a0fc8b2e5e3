// Package defs serves the static word-definition lookup (spec.md §4.4
// "Definitions endpoint"): a JSON file of word -> definition, loaded lazily
// and cached for the process lifetime.
package defs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
)

// Store is the lazily-loaded, process-lifetime-cached definition lookup.
// The underlying JSON file is small enough to hold entirely in memory, but
// it's routed through a ristretto cache (as the rest of the pack's
// process-lifetime caches do, see DESIGN.md) so a future move to a larger,
// lazily-fetched definition source doesn't require touching callers.
type Store struct {
	path string

	loadOnce sync.Once
	loadErr  error
	cache    *ristretto.Cache[string, string]
}

// New creates a Store bound to path. The file is not read until the first
// Lookup (spec.md §4.4 "loaded lazily").
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) ensureLoaded() error {
	s.loadOnce.Do(func() {
		cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
			NumCounters: 1e4,
			MaxCost:     1 << 20,
			BufferItems: 64,
		})
		if err != nil {
			s.loadErr = fmt.Errorf("defs: creating cache: %w", err)
			return
		}
		s.cache = cache

		data, err := os.ReadFile(s.path)
		if err != nil {
			s.loadErr = err
			return
		}
		var table map[string]string
		if err := json.Unmarshal(data, &table); err != nil {
			s.loadErr = fmt.Errorf("defs: parsing %s: %w", s.path, err)
			return
		}
		for word, definition := range table {
			word = strings.ToLower(word)
			cache.Set(word, definition, int64(len(word)+len(definition)))
		}
		cache.Wait()
	})
	return s.loadErr
}

// Lookup returns the definition for word, or ok=false if the definitions
// file is absent or the word has no entry (spec.md §7 "Definitions absent.
// /definition/* returns {ok:true, definition:null}" — the handler maps a
// false ok here onto that JSON shape, not an HTTP error).
func (s *Store) Lookup(word string) (definition string, ok bool) {
	if err := s.ensureLoaded(); err != nil {
		return "", false
	}
	return s.cache.Get(strings.ToLower(word))
}

// Close releases the underlying cache's background goroutines.
func (s *Store) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}
