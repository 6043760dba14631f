package session

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID identifies one session instance. IDs are assigned once when the session
// is first seen and are never reused, even when two sessions share a label.
type ID string

// String returns the ID as a plain string.
func (id ID) String() string { return string(id) }

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a fresh ULID-based ID stamped with now. IDs created within
// the same millisecond are strictly increasing.
func NewID(now time.Time) ID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(now), entropy).String())
}

// Time returns the creation timestamp encoded in the ID, or the zero time if
// the ID is not a ULID (for example one supplied by a host).
func (id ID) Time() time.Time {
	u, err := ulid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
