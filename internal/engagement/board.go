package engagement

import (
	"sync"
	"time"
)

// Snapshot is a consistent copy of a Board's state.
type Snapshot struct {
	Version  string    `json:"id"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Dataset  Dataset   `json:"-"`
	Filter   Filter    `json:"filter"`
}

// Board holds the current dataset and the active filter. The dataset is only
// ever replaced wholesale, never edited in place.
type Board struct {
	mu       sync.RWMutex
	version  string
	source   string
	loadedAt time.Time
	dataset  Dataset
	filter   Filter
}

// NewBoard returns an empty board with the "all" filter.
func NewBoard() *Board {
	return &Board{
		dataset: Dataset{Columns: []string{}, Posts: []Post{}},
		filter:  FilterAll,
	}
}

// Load installs ds as the current dataset under the given version ID.
func (b *Board) Load(version, source string, ds Dataset, loadedAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.version = version
	b.source = source
	b.loadedAt = loadedAt
	b.dataset = ds
}

// SetFilter replaces the active filter. Unknown categories are accepted.
func (b *Board) SetFilter(f Filter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = f
}

// Snapshot returns the current state.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		Version:  b.version,
		Source:   b.source,
		LoadedAt: b.loadedAt,
		Dataset:  b.dataset,
		Filter:   b.filter,
	}
}
