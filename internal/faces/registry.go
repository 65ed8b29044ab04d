// Package faces provides a global registry of card face sets.
// Sets register themselves in init() functions, allowing the platform to
// offer them by name without hardcoded dependencies. The game core only
// sees a face as an index into the chosen set.
package faces

import (
	"fmt"
	"sort"
	"sync"
)

// Set is a named list of distinct card faces.
type Set struct {
	// ID is the name used on the command line and in config (e.g. "emoji").
	ID string

	// Title is a human-readable name for display.
	Title string

	// Symbols are the faces. Each must be distinct; a board needs one per pair.
	Symbols []string
}

// Len returns the number of faces in the set.
func (s Set) Len() int {
	return len(s.Symbols)
}

// Symbol returns face i, or "?" for an index outside the set.
func (s Set) Symbol(i int) string {
	if i < 0 || i >= len(s.Symbols) {
		return "?"
	}
	return s.Symbols[i]
}

// Info contains metadata about a registered set.
type Info struct {
	ID    string
	Title string
	Size  int
}

var (
	sets = make(map[string]Set)
	mu   sync.RWMutex
)

// Register adds a face set to the registry.
// Panics if a set with the same ID is already registered or if the set
// repeats a face.
func Register(s Set) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := sets[s.ID]; exists {
		panic(fmt.Sprintf("faces: set %q already registered", s.ID))
	}
	seen := make(map[string]bool, len(s.Symbols))
	for _, sym := range s.Symbols {
		if seen[sym] {
			panic(fmt.Sprintf("faces: set %q repeats %q", s.ID, sym))
		}
		seen[sym] = true
	}

	sets[s.ID] = s
}

// List returns information about all registered sets, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(sets))
	for id, s := range sets {
		result = append(result, Info{
			ID:    id,
			Title: s.Title,
			Size:  s.Len(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Get returns a set by its ID.
// Returns an error if the set ID is not registered.
func Get(id string) (Set, error) {
	mu.RLock()
	defer mu.RUnlock()

	s, ok := sets[id]
	if !ok {
		return Set{}, fmt.Errorf("faces: unknown set %q", id)
	}
	return s, nil
}

// Exists checks if a set with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := sets[id]
	return ok
}
