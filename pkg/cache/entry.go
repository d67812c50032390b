package cache

import (
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Entry is the envelope stored for each cached page.
type Entry struct {
	// Data is the serialized page
	Data json.RawMessage `json:"data"`

	// Checksum is the xxhash64 of Data, verified on every read
	Checksum uint64 `json:"checksum"`

	// CachedAt is when the page was stored
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry wraps data and stamps its checksum.
func NewEntry(data []byte) *Entry {
	return &Entry{
		Data:     data,
		Checksum: xxhash.Sum64(data),
		CachedAt: time.Now(),
	}
}

// Valid reports whether Data still matches Checksum.
func (e *Entry) Valid() bool {
	return e != nil && len(e.Data) > 0 && xxhash.Sum64(e.Data) == e.Checksum
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}
