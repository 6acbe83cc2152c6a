package viewmodel

import (
	"fmt"
	"sync"

	"github.com/druedada/projecte-final/internal/model"
)

// Cache is the client-side copy of the server's task list, newest first.
// It is safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	tasks []model.Task
}

func NewCache() *Cache {
	return &Cache{}
}

// ReplaceAll swaps in a freshly loaded list. IsNew is carried over by id for
// tasks that were already cached and cleared for everything else.
func (c *Cache) ReplaceAll(tasks []model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(c.tasks))
	for _, t := range c.tasks {
		if t.IsNew {
			seen[t.ID] = true
		}
	}

	next := make([]model.Task, len(tasks))
	for i, t := range tasks {
		t = t.Clone()
		t.IsNew = seen[t.ID]
		next[i] = t
	}
	c.tasks = next
}

// InsertNew marks t as created in this session and puts it at the head.
// An entry with the same id, left there by a reload that raced the create,
// is dropped so the id stays unique.
func (c *Cache) InsertNew(t model.Task) {
	t = t.Clone()
	t.IsNew = true

	c.mu.Lock()
	defer c.mu.Unlock()
	rest := c.tasks
	if i := c.indexOf(t.ID); i >= 0 {
		rest = append(c.tasks[:i:i], c.tasks[i+1:]...)
	}
	c.tasks = append([]model.Task{t}, rest...)
}

// ReplaceOne overwrites the entry for id in place. The session-local IsNew
// flag of the entry is kept.
func (c *Cache) ReplaceOne(id string, t model.Task) error {
	if t.ID != "" && t.ID != id {
		return fmt.Errorf("replace %s with task %s: %w", id, t.ID, ErrCacheInconsistency)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("replace %s: %w", id, ErrCacheInconsistency)
	}
	t = t.Clone()
	t.ID = id
	t.IsNew = c.tasks[i].IsNew
	c.tasks[i] = t
	return nil
}

// RemoveOne drops id from the cache. An absent id leaves the cache as it is
// and reports ErrCacheInconsistency.
func (c *Cache) RemoveOne(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrCacheInconsistency)
	}
	c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	return nil
}

// Tasks returns a copy of the cached tasks in cache order.
func (c *Cache) Tasks() []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Task, len(c.tasks))
	for i, t := range c.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (c *Cache) Get(id string) (model.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return c.tasks[i].Clone(), true
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

func (c *Cache) indexOf(id string) int {
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
