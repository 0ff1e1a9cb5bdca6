package recruitprefs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	optA = Option{ID: "a", Name: "Alpha"}
	optB = Option{ID: "b", Name: "Beta"}
	optC = Option{ID: "c", Name: "Gamma"}
)

type recorder struct {
	mu     sync.Mutex
	states []SelectionState
}

func (r *recorder) record(s SelectionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func newABCSelector(t *testing.T) (*PreferenceSelector, *recorder) {
	t.Helper()
	sel, err := NewPreferenceSelector(MustCatalog(optA, optB, optC))
	require.NoError(t, err)
	rec := &recorder{}
	sel.OnChange(rec.record)
	return sel, rec
}

func ids(s SelectionState) [2]string {
	return [2]string{s.PrimaryID(), s.SecondaryID()}
}

func TestNewPreferenceSelector(t *testing.T) {
	_, err := NewPreferenceSelector(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	sel, err := NewPreferenceSelector(DefaultDepartments())
	require.NoError(t, err)
	assert.Equal(t, ModePrimary, sel.Mode())
	assert.True(t, sel.CurrentState().IsEmpty())
	assert.Equal(t, 6, sel.Catalog().Len())
}

func TestSelectorWorkedExample(t *testing.T) {
	sel, rec := newABCSelector(t)

	state, err := sel.Select(optA)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"a", ""}, ids(state))

	require.NoError(t, sel.SetMode(ModeSecondary))
	state, err = sel.Select(optA)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "duplicate selection", conflict.Reason)
	assert.Equal(t, [2]string{"a", ""}, ids(state), "a rejected selection returns the unchanged state")
	assert.Equal(t, [2]string{"a", ""}, ids(sel.CurrentState()))

	state, err = sel.Select(optB)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"a", "b"}, ids(state))

	require.NoError(t, sel.SetMode(ModePrimary))
	state, err = sel.Select(optB)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"b", "a"}, ids(state))

	require.Equal(t, 3, rec.count(), "one notification per successful select, none for the conflict")
	assert.Equal(t, [2]string{"a", ""}, ids(rec.states[0]))
	assert.Equal(t, [2]string{"a", "b"}, ids(rec.states[1]))
	assert.Equal(t, [2]string{"b", "a"}, ids(rec.states[2]))
}

func TestSelectorSwapIntoEmptyPrimary(t *testing.T) {
	sel, _ := newABCSelector(t)

	require.NoError(t, sel.SetMode(ModeSecondary))
	_, err := sel.Select(optB)
	require.NoError(t, err)

	require.NoError(t, sel.SetMode(ModePrimary))
	state, err := sel.Select(optB)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"b", ""}, ids(state), "the empty primary moves to secondary")
}

func TestSelectorPrimaryReplaceLeavesSecondary(t *testing.T) {
	sel, _ := newABCSelector(t)

	_, _ = sel.Select(optA)
	_ = sel.SetMode(ModeSecondary)
	_, _ = sel.Select(optB)
	_ = sel.SetMode(ModePrimary)

	state, err := sel.Select(optC)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"c", "b"}, ids(state))
}

func TestSelectorIdempotentReselection(t *testing.T) {
	sel, rec := newABCSelector(t)

	_, _ = sel.Select(optA)
	_ = sel.SetMode(ModeSecondary)
	_, _ = sel.Select(optB)
	_ = sel.SetMode(ModePrimary)

	before := rec.count()
	state, err := sel.Select(optA)
	require.NoError(t, err)
	assert.Equal(t, [2]string{"a", "b"}, ids(state))
	assert.Equal(t, before+1, rec.count(), "reselection notifies exactly once")
}

func TestSelectorExclusivityHoldsForAllSequences(t *testing.T) {
	sel, rec := newABCSelector(t)
	opts := []Option{optA, optB, optC}
	modes := []Mode{ModePrimary, ModeSecondary}

	// Walk every sequence of three (mode, option) steps.
	var walk func(depth int)
	walk = func(depth int) {
		if depth == 0 {
			return
		}
		for _, m := range modes {
			for _, o := range opts {
				snapshot := sel.CurrentState()
				mode := sel.Mode()

				require.NoError(t, sel.SetMode(m))
				_, _ = sel.Select(o)
				s := sel.CurrentState()
				if s.Primary != nil && s.Secondary != nil {
					require.NotEqual(t, s.Primary.ID, s.Secondary.ID)
				}
				walk(depth - 1)

				restore(t, sel, snapshot, mode)
			}
		}
	}
	walk(3)

	for _, s := range rec.states {
		if s.Primary != nil && s.Secondary != nil {
			assert.NotEqual(t, s.Primary.ID, s.Secondary.ID)
		}
	}
}

// restore rebuilds a state through the public API.
func restore(t *testing.T, sel *PreferenceSelector, s SelectionState, m Mode) {
	t.Helper()
	sel.Reset()
	if s.Primary != nil {
		_, err := sel.Select(*s.Primary)
		require.NoError(t, err)
	}
	if s.Secondary != nil {
		require.NoError(t, sel.SetMode(ModeSecondary))
		_, err := sel.Select(*s.Secondary)
		require.NoError(t, err)
	}
	require.NoError(t, sel.SetMode(m))
}

func TestSelectorReset(t *testing.T) {
	sel, rec := newABCSelector(t)

	_, _ = sel.Select(optA)
	_ = sel.SetMode(ModeSecondary)
	_, _ = sel.Select(optC)

	sel.Reset()
	assert.True(t, sel.CurrentState().IsEmpty())
	assert.Equal(t, ModePrimary, sel.Mode())
	require.Equal(t, 3, rec.count())
	assert.True(t, rec.states[2].IsEmpty())

	sel.Reset()
	assert.Equal(t, 4, rec.count(), "reset always notifies")
}

func TestSelectorUnknownOptionAndMode(t *testing.T) {
	sel, rec := newABCSelector(t)

	_, err := sel.Select(Option{ID: "zzz"})
	assert.ErrorIs(t, err, ErrUnknownOption)
	_, err = sel.SelectByID("zzz")
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.ErrorIs(t, sel.SetMode(Mode(7)), ErrInvalidMode)
	assert.Zero(t, rec.count())
}

func TestSelectorUsesCanonicalOptions(t *testing.T) {
	sel, _ := newABCSelector(t)

	state, err := sel.Select(Option{ID: "b", Name: "forged"})
	require.NoError(t, err)
	assert.Equal(t, "Beta", state.Primary.Name)

	state, err = sel.SelectByID("c")
	require.NoError(t, err)
	assert.Equal(t, "Gamma", state.Primary.Name)
}

func TestSelectorSnapshotsAreCopies(t *testing.T) {
	sel, err := NewPreferenceSelector(MustCatalog(optA, optB))
	require.NoError(t, err)

	var seen []SelectionState
	sel.OnChange(func(s SelectionState) {
		s.Primary.Name = "mutated by first listener"
		seen = append(seen, s)
	})
	sel.OnChange(func(s SelectionState) {
		seen = append(seen, s)
	})

	state, err := sel.Select(optA)
	require.NoError(t, err)
	state.Primary.ID = "mutated by caller"

	require.Len(t, seen, 2)
	assert.Equal(t, "Alpha", seen[1].Primary.Name, "each listener receives its own copy")
	assert.Equal(t, "a", sel.CurrentState().PrimaryID())
	assert.Equal(t, "Alpha", sel.CurrentState().Primary.Name)

	snap := sel.CurrentState()
	snap.Primary = nil
	assert.Equal(t, "a", sel.CurrentState().PrimaryID())
}

func TestSelectorListenerOrderAndUnsubscribe(t *testing.T) {
	sel, err := NewPreferenceSelector(MustCatalog(optA, optB))
	require.NoError(t, err)

	var order []string
	off1 := sel.OnChange(func(SelectionState) { order = append(order, "first") })
	sel.OnChange(func(SelectionState) { order = append(order, "second") })

	_, _ = sel.Select(optA)
	assert.Equal(t, []string{"first", "second"}, order)

	off1()
	off1()
	order = nil
	_, _ = sel.Select(optB)
	assert.Equal(t, []string{"second"}, order)
}

func TestSelectorListenerMutationIsDeliveredAfterRound(t *testing.T) {
	sel, err := NewPreferenceSelector(MustCatalog(optA, optB, optC))
	require.NoError(t, err)

	var log []string
	var once sync.Once
	var innerState SelectionState
	var innerErr error
	sel.OnChange(func(s SelectionState) {
		log = append(log, "first:"+s.PrimaryID())
		once.Do(func() {
			innerState, innerErr = sel.Select(optB)
		})
	})
	sel.OnChange(func(s SelectionState) {
		log = append(log, "second:"+s.PrimaryID())
	})

	state, err := sel.Select(optA)
	require.NoError(t, err)
	assert.Equal(t, "a", state.PrimaryID(), "the caller gets the state it committed")

	require.NoError(t, innerErr)
	assert.Equal(t, "b", innerState.PrimaryID())
	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, log,
		"a change made by a listener waits for the current round and never nests")
	assert.Equal(t, "b", sel.CurrentState().PrimaryID())
}

func TestSelectorResetDuringAnotherDelivery(t *testing.T) {
	s, err := NewSessions(DefaultDepartments(), 0)
	require.NoError(t, err)
	defer s.Close()
	sess := s.Create()

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []string
	var once sync.Once
	sess.Selector.OnChange(func(st SelectionState) {
		mu.Lock()
		seen = append(seen, st.PrimaryID())
		mu.Unlock()
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := sess.Selector.SelectByID("technical")
		assert.NoError(t, err)
	}()

	<-entered
	sess.Reset()
	assert.True(t, sess.Selector.CurrentState().IsEmpty(), "the reset applies while the other call is still notifying")
	require.NoError(t, sess.Selector.SetMode(ModeSecondary))
	close(release)
	<-done

	assert.True(t, sess.Selector.CurrentState().IsEmpty())
	assert.Equal(t, ModeSecondary, sess.Selector.Mode())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"technical", ""}, seen, "the reset is delivered after the blocked round")
}

func TestSelectorRecoversFromPanickingListener(t *testing.T) {
	sel, err := NewPreferenceSelector(MustCatalog(optA, optB))
	require.NoError(t, err)

	rec := &recorder{}
	panicked := false
	sel.OnChange(func(SelectionState) {
		if !panicked {
			panicked = true
			panic("listener failed")
		}
	})
	sel.OnChange(rec.record)

	assert.Panics(t, func() { _, _ = sel.Select(optA) })
	_, err = sel.Select(optB)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "b", rec.states[0].PrimaryID())
}

func TestChooseReportsAppliedMode(t *testing.T) {
	sel, err := NewPreferenceSelector(MustCatalog(optA, optB, optC))
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				_ = sel.SetMode(Mode(i % 2))
			}
		}
	}()

	for i := 0; i < 500; i++ {
		id := []string{"a", "b", "c"}[i%3]
		state, mode, err := sel.Choose(id)
		if err != nil {
			assert.Equal(t, ModeSecondary, mode, "conflicts only happen in secondary mode")
			continue
		}
		switch mode {
		case ModePrimary:
			assert.Equal(t, id, state.PrimaryID())
		case ModeSecondary:
			assert.Equal(t, id, state.SecondaryID())
		}
	}
	close(stop)
	wg.Wait()

	_, mode, err := sel.Choose("zzz")
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.True(t, mode.Valid())
}

func TestSelectorListenerMaySubscribeDuringDispatch(t *testing.T) {
	sel, err := NewPreferenceSelector(MustCatalog(optA, optB))
	require.NoError(t, err)

	late := &recorder{}
	var once sync.Once
	sel.OnChange(func(SelectionState) {
		once.Do(func() { sel.OnChange(late.record) })
	})

	_, _ = sel.Select(optA)
	assert.Zero(t, late.count(), "new listeners start with the next change")
	_, _ = sel.Select(optB)
	assert.Equal(t, 1, late.count())
}

func TestSelectorBindReset(t *testing.T) {
	sel, rec := newABCSelector(t)
	bus := NewBus()
	unbind := sel.BindReset(bus)

	_, _ = sel.Select(optA)
	assert.Equal(t, 1, bus.Emit(EventResetSelector))
	assert.True(t, sel.CurrentState().IsEmpty())
	assert.Equal(t, 2, rec.count())

	unbind()
	_, _ = sel.Select(optB)
	assert.Zero(t, bus.Emit(EventResetSelector))
	assert.Equal(t, "b", sel.CurrentState().PrimaryID())
}

func TestSelectorConcurrentUse(t *testing.T) {
	sel, rec := newABCSelector(t)
	opts := []Option{optA, optB, optC}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = sel.SetMode(Mode((i + j) % 2))
				_, _ = sel.Select(opts[(i*j)%3])
				s := sel.CurrentState()
				if s.Primary != nil && s.Secondary != nil {
					assert.NotEqual(t, s.Primary.ID, s.Secondary.ID)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.Positive(t, rec.count())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("secondary")
	require.NoError(t, err)
	assert.Equal(t, ModeSecondary, m)
	assert.Equal(t, "secondary", m.String())

	_, err = ParseMode("tertiary")
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Equal(t, "unknown", Mode(9).String())
}
