package postgres

import (
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based IDs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// EntryIDGenerator issues TXN-<epoch-ms> ids. Two calls in the same
// millisecond get consecutive values so ids never repeat within a process.
type EntryIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewEntryIDGenerator creates a new EntryIDGenerator.
func NewEntryIDGenerator() *EntryIDGenerator {
	return &EntryIDGenerator{now: time.Now}
}

// Generate returns the next entry id.
func (g *EntryIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms

	return "TXN-" + strconv.FormatInt(ms, 10)
}
