package task

import (
	"context"

	"github.com/druedada/projecte-final/internal/model"
)

// TaskRepository is the durable task store. Create assigns the id;
// List returns tasks newest first; Get, Update and Delete return
// model.ErrNotFound for unknown ids.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores backed by a remote database.
type Pinger interface {
	PingContext(ctx context.Context) error
}
