package tensor

import "sync"

// Scope collects temporary tensors so that they can be released together.
//
//	scope := tensor.NewScope()
//	defer scope.Dispose()
//	min, err := scope.Track(t.Min())
type Scope struct {
	mutex   sync.Mutex
	tensors []Tensor
}

// NewScope creates a new empty scope.
func NewScope() *Scope {
	return &Scope{
		tensors: make([]Tensor, 0),
	}
}

// Track registers the result of an operation with the scope.
// It is shaped to wrap the operation call directly.
func (s *Scope) Track(t Tensor, err error) (Tensor, error) {
	if t != nil {
		s.mutex.Lock()
		s.tensors = append(s.tensors, t)
		s.mutex.Unlock()
	}
	return t, err
}

// Len returns the number of tensors held by the scope.
func (s *Scope) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.tensors)
}

// Dispose releases all tracked tensors. It can be called more than once.
func (s *Scope) Dispose() {
	s.mutex.Lock()
	tensors := s.tensors
	s.tensors = make([]Tensor, 0)
	s.mutex.Unlock()

	for _, t := range tensors {
		t.Dispose()
	}
}
