package api

import (
	"sync"

	"github.com/UnknownOlympus/icarus/internal/selection"
)

// Boundary relays outside-the-popup pointer-downs reported by the map client to the popup
// listener. At most one listener is active; a released subscription never fires again.
type Boundary struct {
	mu      sync.Mutex
	seq     uint64
	handler func()
}

type boundarySubscription struct {
	boundary *Boundary
	id       uint64
	once     sync.Once
}

func NewBoundary() *Boundary {
	return &Boundary{}
}

// Subscribe installs onOutside as the active listener.
func (b *Boundary) Subscribe(onOutside func()) selection.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	b.handler = onOutside

	return &boundarySubscription{boundary: b, id: b.seq}
}

func (s *boundarySubscription) Release() {
	s.once.Do(func() {
		s.boundary.mu.Lock()
		defer s.boundary.mu.Unlock()

		if s.boundary.seq == s.id {
			s.boundary.handler = nil
		}
	})
}

// Active reports whether a listener is installed.
func (b *Boundary) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.handler != nil
}

// Fire delivers an outside interaction. It reports false when nobody is listening.
func (b *Boundary) Fire() bool {
	b.mu.Lock()
	handler := b.handler
	b.mu.Unlock()

	if handler == nil {
		return false
	}
	handler()

	return true
}
