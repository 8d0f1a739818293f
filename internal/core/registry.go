package core

import (
	"fmt"
	"sort"
	"sync"
)

// Collaborators are the external capabilities a shape's transformer needs.
type Collaborators struct {
	Decompressor Decompressor
	Extractor    ParagraphExtractor
}

// ShapeDefinition contains everything needed to process one raw table shape.
type ShapeDefinition struct {
	Key              string // Unique identifier: "abstracts"
	Label            string // Display name
	Category         Category
	Layout           Layout
	DefaultChunkSize int

	// Parallel fans the rows of each chunk out across the worker pool.
	// Shapes whose per-row cost is only decompression run inline.
	Parallel bool

	NewTransformer func(Collaborators) RowTransformer
}

var (
	registry   = make(map[string]ShapeDefinition)
	registryMu sync.RWMutex
)

// Register adds a shape definition to the registry.
// Panics if a shape with the same key is already registered.
func Register(def ShapeDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("shape already registered: %s", def.Key))
	}
	if def.NewTransformer == nil {
		panic(fmt.Sprintf("shape %s has no transformer", def.Key))
	}
	registry[def.Key] = def
}

// Get returns a shape definition by key.
func Get(key string) (ShapeDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// Shapes returns all registered shapes sorted by key.
func Shapes() []ShapeDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ShapeDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// Clear removes all registered shapes.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]ShapeDefinition)
}
