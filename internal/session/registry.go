// Package session tracks per-session monitoring state.
//
// The Registry holds exactly one Record per live session. Records are
// created on open and removed on close; nothing else creates or deletes
// them. The Registry does not touch output buffers: keeping the two in
// step is the monitor's job.
package session

import (
	"slices"
	"sync"
	"time"
)

// Record is the monitoring state for one session.
type Record struct {
	ID    ID
	Label string

	// LastContent is the excerpt observed on the last evaluated tick.
	LastContent string
	// Fingerprint is the hash of LastContent; 0 means none yet.
	Fingerprint uint32
	// LastNotification is the epoch-millis time of the last positive
	// verdict; 0 means never.
	LastNotification int64

	Running  bool
	Notified bool
	OpenedAt time.Time
}

// Registry maps session IDs to Records. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	records map[ID]*Record
	now     func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[ID]*Record),
		now:     time.Now,
	}
}

// Open creates a fresh record for id if none exists. Re-opening an existing
// session is a no-op; the returned bool reports whether a record was created.
func (r *Registry) Open(id ID, label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; exists {
		return false
	}
	r.records[id] = &Record{
		ID:       id,
		Label:    label,
		OpenedAt: r.now(),
	}
	return true
}

// Close deletes the record for id.
func (r *Registry) Close(id ID) {
	r.mu.Lock()
	delete(r.records, id)
	r.mu.Unlock()
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id ID) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Update applies fn to the record for id under the registry lock. It returns
// false, without calling fn, when the record does not exist.
func (r *Registry) Update(id ID, fn func(*Record)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return false
	}
	fn(rec)
	return true
}

// ClearAll removes every record.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	clear(r.records)
	r.mu.Unlock()
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// IDs returns the tracked session IDs in creation order.
func (r *Registry) IDs() []ID {
	snap := r.Snapshot()
	ids := make([]ID, len(snap))
	for i, rec := range snap {
		ids[i] = rec.ID
	}
	return ids
}

// Snapshot returns copies of all records ordered by OpenedAt, then ID.
func (r *Registry) Snapshot() []Record {
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Record) int {
		if c := a.OpenedAt.Compare(b.OpenedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}
