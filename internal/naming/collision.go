package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver tracks output paths already claimed during one run and
// resolves duplicates by appending " - dupN" suffixes, so two chapter titles
// that sanitize to the same filename never overwrite each other. All methods
// are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	claimed  map[string]bool
	counters map[string]int // base output path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		claimed:  make(map[string]bool),
		counters: make(map[string]int),
	}
}

// Resolve returns requested if it is unclaimed, otherwise the first free
// " - dupN" variant.
func (cr *CollisionResolver) Resolve(requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.claimed[requested] {
		cr.claimed[requested] = true
		return requested
	}

	ext := filepath.Ext(requested)
	stem := strings.TrimSuffix(requested, ext)

	counter := cr.counters[requested]
	if counter == 0 {
		counter = 1
	}
	for {
		candidate := fmt.Sprintf("%s - dup%d%s", stem, counter, ext)
		if !cr.claimed[candidate] {
			cr.counters[requested] = counter + 1
			cr.claimed[candidate] = true
			return candidate
		}
		counter++
	}
}
