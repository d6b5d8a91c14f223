package apperr

import "sync"

// State holds a store's single current error message. Each operation
// overwrites it; success clears it.
type State struct {
	mu  sync.Mutex
	msg string
}

// Set records the outcome of an operation.
func (s *State) Set(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = Message(err)
}

// Message returns the current error message, or "" if the last operation succeeded.
func (s *State) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}

// Clear resets the error.
func (s *State) Clear() {
	s.Set(nil)
}
