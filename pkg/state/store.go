// Package state provides an observable value container. Writers replace the
// value through Set or Update; readers either poll Get or Subscribe.
package state

import "sync"

// Listener is called with the new value after every change.
type Listener[T any] func(T)

// Store is safe for concurrent use. Listeners see values in the order the
// updates were applied and must not write to the store they observe.
type Store[T any] struct {
	// notifying serializes updates with their notifications.
	notifying sync.Mutex
	mu        sync.RWMutex
	value     T
	nextID    int
	listeners map[int]Listener[T]
}

func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{
		value:     initial,
		listeners: make(map[int]Listener[T]),
	}
}

func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.value
}

func (s *Store[T]) Set(value T) {
	s.Update(func(T) T { return value })
}

// Update applies fn to the current value under the write lock and notifies
// listeners with the result once the lock is released. Listeners may read the
// store; a concurrent Update waits until they return.
func (s *Store[T]) Update(fn func(T) T) T {
	s.notifying.Lock()
	defer s.notifying.Unlock()

	s.mu.Lock()
	s.value = fn(s.value)
	value := s.value
	listeners := make([]Listener[T], 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(value)
	}

	return value
}

// Subscribe registers l and returns a function that removes it.
func (s *Store[T]) Subscribe(l Listener[T]) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.listeners, id)
	}
}
