package ledger

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator hands out identifiers for new items, history entries and requests.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDs generates "<prefix>-<uuid>" identifiers.
type UUIDs struct{}

func (UUIDs) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Sequence generates "<prefix>-<n>" identifiers with a counter per prefix,
// starting after the given offset. Seeds and tests use it for stable IDs.
type Sequence struct {
	mu     sync.Mutex
	next   map[string]int
	offset int
}

func NewSequence(offset int) *Sequence {
	return &Sequence{next: make(map[string]int), offset: offset}
}

func (s *Sequence) NewID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.next[prefix]; !ok {
		s.next[prefix] = s.offset
	}
	s.next[prefix]++
	return prefix + "-" + strconv.Itoa(s.next[prefix])
}

const (
	itemPrefix    = "inv"
	historyPrefix = "h"
	requestPrefix = "req"
)
