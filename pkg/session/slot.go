package session

// Slot is a typed accessor for a named state slot.
type Slot[T any] struct {
	Name string
	// Default builds the value returned when the slot is absent.
	// A nil Default yields the zero value of T.
	Default func() T
}

// Get returns the slot value, or its default when absent. A missing slot is never an error.
func (s Slot[T]) Get(st *State) (T, error) {
	var v T
	ok, err := st.Get(s.Name, &v)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok && s.Default != nil {
		v = s.Default()
	}
	return v, nil
}

// Set buffers a new value for the slot.
func (s Slot[T]) Set(st *State, v T) error {
	return st.Set(s.Name, v)
}

// Update reads the slot, applies fn and buffers the result.
func (s Slot[T]) Update(st *State, fn func(*T)) error {
	v, err := s.Get(st)
	if err != nil {
		return err
	}
	fn(&v)
	return s.Set(st, v)
}
