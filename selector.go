package recruitprefs

import (
	"sync"
)

type listener struct {
	id uint64
	fn func(SelectionState)
}

// PreferenceSelector holds a primary and a secondary pick over a Catalog and guarantees
// that both slots never reference the same option.
//
// Every successful Select or Reset notifies all listeners exactly once, in registration
// order, with a private copy of the new state. Notifications are delivered one round at
// a time and in commit order: a change made while listeners are running, whether from
// inside a listener or from another goroutine, is applied at once and its notification
// is delivered after the current round. Rounds never nest.
type PreferenceSelector struct {
	mu         sync.Mutex
	catalog    *Catalog
	state      SelectionState
	mode       Mode
	listeners  []listener
	nextID     uint64
	pending    []SelectionState
	delivering bool
}

// NewPreferenceSelector returns an empty selector in ModePrimary over catalog.
func NewPreferenceSelector(catalog *Catalog) (*PreferenceSelector, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	return &PreferenceSelector{catalog: catalog}, nil
}

// Catalog returns the catalog the selector was built with.
func (s *PreferenceSelector) Catalog() *Catalog {
	return s.catalog
}

// SetMode switches which slot subsequent selections populate.
func (s *PreferenceSelector) SetMode(m Mode) error {
	if !m.Valid() {
		return ErrInvalidMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	return nil
}

// Mode returns the current selection mode.
func (s *PreferenceSelector) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// CurrentState returns a snapshot of both slots.
func (s *PreferenceSelector) CurrentState() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SelectByID looks id up in the catalog and selects it.
func (s *PreferenceSelector) SelectByID(id string) (SelectionState, error) {
	state, _, err := s.apply(id)
	return state, err
}

// Choose is SelectByID that also reports the mode the selection was applied in.
func (s *PreferenceSelector) Choose(id string) (SelectionState, Mode, error) {
	return s.apply(id)
}

// Select places opt into the slot named by the current mode.
//
// In ModePrimary, picking the option currently held as secondary swaps the two slots
// (the previous primary, possibly empty, becomes secondary). In ModeSecondary, picking
// the current primary fails with a *ConflictError and leaves the state untouched.
// Catalog entries are canonical; opt may carry only the ID.
func (s *PreferenceSelector) Select(opt Option) (SelectionState, error) {
	state, _, err := s.apply(opt.ID)
	return state, err
}

func (s *PreferenceSelector) apply(id string) (SelectionState, Mode, error) {
	canonical, ok := s.catalog.Lookup(id)

	s.mu.Lock()
	mode := s.mode
	if !ok {
		s.mu.Unlock()
		return SelectionState{}, mode, ErrUnknownOption
	}

	next := s.state
	switch mode {
	case ModePrimary:
		if next.Secondary != nil && next.Secondary.ID == canonical.ID {
			next.Secondary = next.Primary
		}
		next.Primary = &canonical
	case ModeSecondary:
		if next.Primary != nil && next.Primary.ID == canonical.ID {
			current := s.state.clone()
			s.mu.Unlock()
			return current, mode, &ConflictError{Reason: "duplicate selection", OptionID: canonical.ID}
		}
		next.Secondary = &canonical
	}
	s.state = next

	return s.commit(), mode, nil
}

// Reset clears both slots and returns the selector to ModePrimary.
func (s *PreferenceSelector) Reset() {
	s.mu.Lock()
	s.state = SelectionState{}
	s.mode = ModePrimary
	s.commit()
}

// commit must be called with s.mu held. It queues the new state, releases the lock and,
// unless another call is already delivering, delivers every queued state.
func (s *PreferenceSelector) commit() SelectionState {
	snapshot := s.state.clone()
	s.pending = append(s.pending, snapshot)
	if s.delivering {
		s.mu.Unlock()
		return snapshot.clone()
	}
	s.delivering = true
	s.mu.Unlock()

	s.deliver()
	return snapshot.clone()
}

func (s *PreferenceSelector) deliver() {
	done := false
	defer func() {
		if !done {
			// A listener panicked; the next commit picks up what is still queued.
			s.mu.Lock()
			s.delivering = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.pending = nil
			s.delivering = false
			s.mu.Unlock()
			done = true
			return
		}
		state := s.pending[0]
		s.pending = s.pending[1:]
		targets := make([]listener, len(s.listeners))
		copy(targets, s.listeners)
		s.mu.Unlock()

		for _, l := range targets {
			l.fn(state.clone())
		}
	}
}

// OnChange registers fn to receive every new state. The returned function removes the
// registration and may be called more than once.
func (s *PreferenceSelector) OnChange(fn func(SelectionState)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// BindReset resets the selector whenever EventResetSelector is emitted on bus.
func (s *PreferenceSelector) BindReset(bus *Bus) (unbind func()) {
	return bus.On(EventResetSelector, s.Reset)
}
