package viewmodel

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/druedada/projecte-final/internal/model"
)

// SuccessTTL is how long a success message stays visible.
const SuccessTTL = 3 * time.Second

const (
	msgCreated   = "Tasca creada correctament!"
	msgUpdated   = "Tasca actualitzada correctament!"
	msgCompleted = "Tasca completada correctament!"
	msgDeleted   = "Tasca eliminada correctament!"

	msgLoadFailed     = "Error en carregar tasques. Si us plau, torna-ho a provar més tard."
	msgSaveFailed     = "Error en desar la tasca. Si us plau, torna-ho a provar."
	msgCompleteFailed = "Error en completar la tasca. Si us plau, torna-ho a provar."
	msgDeleteFailed   = "Error en eliminar la tasca. Si us plau, torna-ho a provar."
)

// Repository is the remote task store as seen by the controller.
// taskapi.Client implements it; so does task.Service for in-process use.
type Repository interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, in model.TaskInput) (model.Task, error)
	Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

type State int

const (
	StateIdle State = iota
	StateEditing
)

func (s State) String() string {
	if s == StateEditing {
		return "editing"
	}
	return "idle"
}

type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageError
	MessageSuccess
)

// Message is the single banner shown to the user.
type Message struct {
	Kind MessageKind
	Text string
}

// Snapshot is a consistent copy of everything a view renders.
type Snapshot struct {
	State   State
	Draft   Draft
	Filter  Filter
	Message Message
	Loading bool
	Tasks   []model.Task
}

type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller sequences repository calls and cache mutations and owns the
// editing state and the message banner. The cache changes only after the
// server has answered. The lock is never held across a repository call.
type Controller struct {
	repo   Repository
	cache  *Cache
	clock  Clock
	logger *log.Logger

	mu         sync.Mutex
	state      State
	draft      Draft
	draftGen   uint64
	filter     Filter
	msg        Message
	msgGen     uint64
	clearTimer Timer
	loading    int
	inflight   map[string]bool
	subs       map[int]func()
	nextSub    int
}

func NewController(repo Repository, cache *Cache, opts ...Option) *Controller {
	if cache == nil {
		cache = NewCache()
	}
	c := &Controller{
		repo:     repo,
		cache:    cache,
		clock:    realClock{},
		draft:    newDraft(),
		filter:   FilterAll,
		inflight: make(map[string]bool),
		subs:     make(map[int]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

func (c *Controller) Cache() *Cache { return c.cache }

// Subscribe registers fn to run after every state change. The returned func
// removes it.
func (c *Controller) Subscribe(fn func()) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.clone()
}

func (c *Controller) Message() Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msg
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}

func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Controller) SetFilter(f Filter) error {
	if !f.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownFilter, string(f))
	}
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	c.notify()
	return nil
}

// View projects the cache through the active filter.
func (c *Controller) View() []model.Task {
	view, _ := Project(c.cache.Tasks(), c.Filter())
	return view
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		State:   c.state,
		Draft:   c.draft.clone(),
		Filter:  c.filter,
		Message: c.msg,
		Loading: c.loading > 0,
	}
	c.mu.Unlock()

	s.Tasks, _ = Project(c.cache.Tasks(), s.Filter)
	return s
}

// StartCreate opens an empty form with the default field values.
func (c *Controller) StartCreate() {
	c.mu.Lock()
	c.state = StateEditing
	c.draft = newDraft()
	c.draftGen++
	c.mu.Unlock()
	c.notify()
}

// StartEdit opens the form on a copy of t.
func (c *Controller) StartEdit(t model.Task) {
	c.mu.Lock()
	c.state = StateEditing
	c.draft = draftOf(t)
	c.draftGen++
	c.mu.Unlock()
	c.notify()
}

// Edit applies fn to the draft.
func (c *Controller) Edit(fn func(*Draft)) error {
	c.mu.Lock()
	if c.state != StateEditing {
		c.mu.Unlock()
		return ErrNotEditing
	}
	id := c.draft.ID
	fn(&c.draft)
	c.draft.ID = id
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Controller) Cancel() {
	c.mu.Lock()
	c.resetDraftLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) resetDraftLocked() {
	c.state = StateIdle
	c.draft = newDraft()
	c.draftGen++
}

// Save creates the draft when it has no id and updates it otherwise. On
// failure the controller stays in the editing state and the error is
// returned after being shown.
func (c *Controller) Save(ctx context.Context) (model.Task, error) {
	c.mu.Lock()
	if c.state != StateEditing {
		c.mu.Unlock()
		return model.Task{}, ErrNotEditing
	}
	d := c.draft.clone()
	gen := c.draftGen
	c.mu.Unlock()

	key := d.ID
	if d.IsNew() {
		key = "draft:" + fmt.Sprint(gen)
	}
	if !c.acquire(key) {
		return model.Task{}, ErrBusy
	}
	defer c.release(key)

	if d.IsNew() {
		return c.create(ctx, d, gen)
	}
	return c.update(ctx, d, gen)
}

func (c *Controller) create(ctx context.Context, d Draft, gen uint64) (model.Task, error) {
	created, err := c.repo.Create(ctx, d.Payload())
	if err != nil {
		c.fail(msgSaveFailed, fmt.Errorf("create task: %w", err))
		return model.Task{}, err
	}
	c.cache.InsertNew(created)
	if head, ok := c.cache.Get(created.ID); ok {
		created = head
	}

	c.mu.Lock()
	if !c.filter.Matches(created) {
		c.filter = FilterAll
	}
	if c.draftGen == gen {
		c.resetDraftLocked()
	}
	c.setSuccessLocked(msgCreated)
	c.mu.Unlock()
	c.notify()
	return created, nil
}

func (c *Controller) update(ctx context.Context, d Draft, gen uint64) (model.Task, error) {
	updated, err := c.repo.Update(ctx, d.ID, d.Payload())
	if err != nil {
		c.fail(msgSaveFailed, fmt.Errorf("update task %s: %w", d.ID, err))
		return model.Task{}, err
	}
	if err := c.cache.ReplaceOne(d.ID, updated); err != nil {
		c.fail(msgSaveFailed, err)
		return model.Task{}, err
	}

	c.mu.Lock()
	if c.draftGen == gen {
		c.resetDraftLocked()
	}
	c.setSuccessLocked(msgUpdated)
	c.mu.Unlock()
	c.notify()
	return updated, nil
}

// Complete sets the status of a cached task to completed, leaving every
// other field as the cache has it.
func (c *Controller) Complete(ctx context.Context, id string) (model.Task, error) {
	cached, ok := c.cache.Get(id)
	if !ok {
		err := fmt.Errorf("complete %s: %w", id, ErrCacheInconsistency)
		c.fail(msgCompleteFailed, err)
		return model.Task{}, err
	}
	if !c.acquire(id) {
		return model.Task{}, ErrBusy
	}
	defer c.release(id)

	in := cached.Input()
	in.Status = model.StatusCompleted

	updated, err := c.repo.Update(ctx, id, in)
	if err != nil {
		c.fail(msgCompleteFailed, fmt.Errorf("complete task %s: %w", id, err))
		return model.Task{}, err
	}
	if err := c.cache.ReplaceOne(id, updated); err != nil {
		c.fail(msgCompleteFailed, err)
		return model.Task{}, err
	}

	c.mu.Lock()
	c.setSuccessLocked(msgCompleted)
	c.mu.Unlock()
	c.notify()
	return updated, nil
}

// Delete removes the task on the server and then from the cache. A failed
// call leaves the cache untouched.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if !c.acquire(id) {
		return ErrBusy
	}
	defer c.release(id)

	if err := c.repo.Delete(ctx, id); err != nil {
		c.fail(msgDeleteFailed, fmt.Errorf("delete task %s: %w", id, err))
		return err
	}
	if err := c.cache.RemoveOne(id); err != nil {
		c.fail(msgDeleteFailed, err)
		return err
	}

	c.mu.Lock()
	c.setSuccessLocked(msgDeleted)
	c.mu.Unlock()
	c.notify()
	return nil
}

// Reload replaces the cache with the server's list. Responses that arrive
// out of order are applied as they come; the last one wins.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()
	c.notify()

	tasks, err := c.repo.List(ctx)
	if err == nil {
		c.cache.ReplaceAll(tasks)
	}

	c.mu.Lock()
	c.loading--
	if err == nil && c.msg.Kind == MessageError && c.msg.Text == msgLoadFailed {
		c.clearMessageLocked()
	}
	c.mu.Unlock()

	if err != nil {
		c.fail(msgLoadFailed, fmt.Errorf("load tasks: %w", err))
		return err
	}
	c.notify()
	return nil
}

// Dismiss clears the banner.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	c.clearMessageLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] {
		return false
	}
	c.inflight[key] = true
	return true
}

func (c *Controller) release(key string) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}

func (c *Controller) fail(text string, err error) {
	c.logger.Printf("viewmodel: %v", err)

	c.mu.Lock()
	c.clearMessageLocked()
	c.msg = Message{Kind: MessageError, Text: text}
	c.mu.Unlock()
	c.notify()
}

// setSuccessLocked replaces any message with text and schedules its removal
// after SuccessTTL. A later message cancels the pending removal.
func (c *Controller) setSuccessLocked(text string) {
	c.clearMessageLocked()
	c.msg = Message{Kind: MessageSuccess, Text: text}

	gen := c.msgGen
	c.clearTimer = c.clock.AfterFunc(SuccessTTL, func() {
		c.mu.Lock()
		if c.msgGen != gen {
			c.mu.Unlock()
			return
		}
		c.clearMessageLocked()
		c.mu.Unlock()
		c.notify()
	})
}

func (c *Controller) clearMessageLocked() {
	c.msgGen++
	if c.clearTimer != nil {
		c.clearTimer.Stop()
		c.clearTimer = nil
	}
	c.msg = Message{}
}
