package indexer

import (
	"sort"
	"sync"
)

// Entry is the resolved view of one application.
type Entry struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Names         map[string]string `json:"names,omitempty" yaml:"names,omitempty"` // Localized names (locale -> name)
	GenericName   string            `json:"generic_name,omitempty" yaml:"generic_name,omitempty"`
	GenericNames  map[string]string `json:"generic_names,omitempty" yaml:"generic_names,omitempty"`
	DesktopPath   string            `json:"desktop" yaml:"desktop"`
	IconName      string            `json:"icon_name,omitempty" yaml:"icon_name,omitempty"`
	IconPath      string            `json:"icon,omitempty" yaml:"icon,omitempty"` // Empty when the icon could not be resolved
	Categories    []string          `json:"categories,omitempty" yaml:"categories,omitempty"`
	CategoryNames []string          `json:"category_names,omitempty" yaml:"category_names,omitempty"`
	Visible       bool              `json:"visible" yaml:"visible"`
}

// Index stores entries by desktop ID with thread-safe access
type Index struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewIndex creates a new empty index
func NewIndex() *Index {
	return &Index{
		entries: make(map[string]*Entry),
	}
}

// Add stores entry, replacing any entry with the same ID
func (idx *Index) Add(entry *Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[entry.ID] = entry
}

// Remove deletes the entry with the given ID, if any
func (idx *Index) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, id)
}

// Get retrieves an entry by ID
func (idx *Index) Get(id string) (*Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entry, ok := idx.entries[id]
	return entry, ok
}

// GetAll returns all entries ordered by ID
func (idx *Index) GetAll() []*Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	result := make([]*Entry, 0, len(idx.entries))
	for _, entry := range idx.entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Count returns the number of entries in the index
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}
