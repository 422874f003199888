package action

import "sync"

// State is the scratch side-channel validation uses to pass intermediate
// lookup results to execution, avoiding redundant queries downstream.
// Values are stored under phantom-typed keys so producers and consumers agree
// on the value type at compile time instead of coupling through ad hoc string
// constants.
type State struct {
	mu     sync.RWMutex
	values map[any]any
}

// NewState returns an empty scratch state.
func NewState() *State {
	return &State{values: make(map[any]any)}
}

// StateKey identifies a typed slot in a context's State. Declare one per
// value a validator wants to hand to its paired executor:
//
//	var groupKey = action.NewStateKey[*Group]("group")
type StateKey[T any] struct {
	name string
	id   *slot
}

type slot struct{}

// NewStateKey creates a typed key. The name is only used for diagnostics; two
// keys with the same name are still distinct slots, each key owning the
// identity allocated here.
func NewStateKey[T any](name string) StateKey[T] {
	return StateKey[T]{name: name, id: new(slot)}
}

func (k StateKey[T]) String() string {
	return k.name
}

// SetState stores a value under a typed key.
func SetState[T any](s *State, key StateKey[T], value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// GetState loads the value stored under key, reporting whether it was set.
func GetState[T any](s *State, key StateKey[T]) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Len reports how many slots are populated.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
