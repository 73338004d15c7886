package state

import (
	"sort"
	"sync"

	"github.com/justyntemme/plugcore/pkg/framework/param"
)

// Listener is notified of a committed value.
type Listener func(index int, v param.PlainValue)

// Bus delivers value commits to the listeners registered for that global
// parameter index only.
type Bus struct {
	mu   sync.RWMutex
	next uint64
	subs map[int]map[uint64]Listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]map[uint64]Listener)}
}

// Subscribe registers fn for the given indices. The returned function
// removes the registration.
func (b *Bus) Subscribe(fn Listener, indices ...int) (cancel func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	for _, i := range indices {
		if b.subs[i] == nil {
			b.subs[i] = make(map[uint64]Listener)
		}
		b.subs[i][id] = fn
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, i := range indices {
				delete(b.subs[i], id)
				if len(b.subs[i]) == 0 {
					delete(b.subs, i)
				}
			}
		})
	}
}

// Watched reports whether any listener is registered for index.
func (b *Bus) Watched(index int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[index]) > 0
}

// Publish notifies the listeners of index. Listeners run on the caller's
// goroutine, outside the bus lock.
func (b *Bus) Publish(index int, v param.PlainValue) {
	b.mu.RLock()
	set := b.subs[index]
	fns := make([]Listener, 0, len(set))
	for _, fn := range set {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(index, v)
	}
}

// Commit publishes the current container value of each index.
func (b *Bus) Commit(c *Container, indices ...int) {
	for _, i := range indices {
		b.Publish(i, c.Plain(i))
	}
}

// CommitAll publishes every watched index of c.
func (b *Bus) CommitAll(c *Container) {
	b.mu.RLock()
	watched := make([]int, 0, len(b.subs))
	for i := range b.subs {
		watched = append(watched, i)
	}
	b.mu.RUnlock()
	sort.Ints(watched)
	b.Commit(c, watched...)
}
