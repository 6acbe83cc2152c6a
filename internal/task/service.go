package task

import (
	"context"
	"sort"
	"time"

	"github.com/druedada/projecte-final/internal/model"
)

type Service struct {
	repo TaskRepository
	now  func() time.Time
}

func NewService(repo TaskRepository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	valid, err := Normalize(in)
	if err != nil {
		return model.Task{}, err
	}

	now := s.now()
	t := apply(model.Task{CreatedAt: now}, valid)
	t.UpdatedAt = now
	return s.repo.Create(ctx, t)
}

func (s *Service) List(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

// Update replaces the editable fields of the task with in. Omitted
// optional fields take their defaults.
func (s *Service) Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	valid, err := Normalize(in)
	if err != nil {
		return model.Task{}, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	updated := apply(existing, valid)
	updated.UpdatedAt = s.now()
	return s.repo.Update(ctx, updated)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// PingContext reports whether the store is reachable. Stores without a remote
// backend are always ready.
func (s *Service) PingContext(ctx context.Context) error {
	if p, ok := s.repo.(Pinger); ok {
		return p.PingContext(ctx)
	}
	return nil
}

func apply(t model.Task, in model.TaskInput) model.Task {
	t.Title = in.Title
	t.Description = in.Description
	t.Status = in.Status
	t.Priority = in.Priority
	t.DueDate = nil
	if in.DueDate != nil {
		due := in.DueDate.Time()
		t.DueDate = &due
	}
	return t
}
