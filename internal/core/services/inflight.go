package services

import "sync"

// InFlight tracks entries whose chunks are indexed but whose record is not
// yet committed. Reconcile skips them. A nil *InFlight tracks nothing.
type InFlight struct {
	mu      sync.Mutex
	entries map[string]struct{}
}

// NewInFlight creates an empty tracker.
func NewInFlight() *InFlight {
	return &InFlight{entries: make(map[string]struct{})}
}

func (f *InFlight) add(entryID string) {
	if f == nil {
		return
	}
	f.mu.Lock()
	f.entries[entryID] = struct{}{}
	f.mu.Unlock()
}

func (f *InFlight) done(entryID string) {
	if f == nil {
		return
	}
	f.mu.Lock()
	delete(f.entries, entryID)
	f.mu.Unlock()
}

// Contains reports whether entryID is being ingested.
func (f *InFlight) Contains(entryID string) bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[entryID]
	return ok
}
