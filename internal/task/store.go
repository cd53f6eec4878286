package task

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound indicates the task id is unknown.
var ErrNotFound = errors.New("task not found")

// Store is the shared task table. Writes happen under the lock as a whole,
// so a reader never observes a half-applied update (for example a
// completed status with a nil result).
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewStore creates an empty task table.
func NewStore() *Store {
	return &Store{tasks: make(map[string]*Task)}
}

// Create registers a new pending task and returns its snapshot.
func (s *Store) Create(flow Flow, identity string) *Task {
	now := time.Now()
	t := &Task{
		ID:        NewID(),
		Flow:      flow,
		Status:    StatusPending,
		Identity:  identity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()

	return t.clone()
}

// Get returns a deep-copied snapshot of a task.
func (s *Store) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.clone(), nil
}

// Update applies fn to the stored task under the write lock. The whole
// mutation is atomic from a reader's point of view.
func (s *Store) Update(id string, fn func(*Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	fn(t)
	t.UpdatedAt = time.Now()
	return nil
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
