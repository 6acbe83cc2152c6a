package memorystore

import (
	"context"
	"sync"

	"github.com/druedada/projecte-final/internal/ids"
	"github.com/druedada/projecte-final/internal/model"
)

// TaskStore keeps tasks in memory, newest first.
type TaskStore struct {
	mu    sync.RWMutex
	tasks []model.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{}
}

func (s *TaskStore) Create(_ context.Context, t model.Task) (model.Task, error) {
	t.ID = ids.NewID()
	t.IsNew = false

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]model.Task{t}, s.tasks...)
	return t, nil
}

func (s *TaskStore) List(_ context.Context) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *TaskStore) Get(_ context.Context, id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, model.ErrNotFound
	}
	return s.tasks[i], nil
}

func (s *TaskStore) Update(_ context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(t.ID)
	if i < 0 {
		return model.Task{}, model.ErrNotFound
	}
	t.CreatedAt = s.tasks[i].CreatedAt
	s.tasks[i] = t
	return t, nil
}

func (s *TaskStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.ErrNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

func (s *TaskStore) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
