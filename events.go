package recruitprefs

import "sync"

// EventResetSelector is raised by the hosting page, typically after a successful
// submission, to clear a PreferenceSelector bound with BindReset.
const EventResetSelector = "resetSelector"

type handlerEntry struct {
	id uint64
	fn func()
}

// Bus is a small in-process dispatcher for named, payload-free events.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]handlerEntry
	nextID   uint64
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]handlerEntry)}
}

// On registers fn for event name. The returned function removes it.
func (b *Bus) On(name string, fn func()) (off func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[name] = append(b.handlers[name], handlerEntry{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		entries := b.handlers[name]
		for i, e := range entries {
			if e.id == id {
				b.handlers[name] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
		if len(b.handlers[name]) == 0 {
			delete(b.handlers, name)
		}
	}
}

// Emit invokes every handler registered for name in registration order and returns how
// many ran. Handlers run outside the bus lock and may register or remove handlers.
func (b *Bus) Emit(name string) int {
	b.mu.RLock()
	entries := make([]handlerEntry, len(b.handlers[name]))
	copy(entries, b.handlers[name])
	b.mu.RUnlock()

	for _, e := range entries {
		e.fn()
	}
	return len(entries)
}
