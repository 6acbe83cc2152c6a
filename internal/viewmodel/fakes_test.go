package viewmodel

import (
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/druedada/projecte-final/internal/model"
)

var errBoom = errors.New("boom")

// fakeRepo is an in-memory Repository that records calls and can be told to
// fail, block before doing the work, or hold after it.
type fakeRepo struct {
	mu      sync.Mutex
	tasks   []model.Task // newest first
	nextID  int
	base    time.Time
	calls   []string
	lastID  string
	lastIn  model.TaskInput
	failOn  map[string]error
	blockOn map[string]chan struct{}
	holdOn  map[string]chan struct{}
	entered chan string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		base:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		failOn:  make(map[string]error),
		blockOn: make(map[string]chan struct{}),
		holdOn:  make(map[string]chan struct{}),
		entered: make(chan string, 16),
	}
}

func (r *fakeRepo) begin(op string) error {
	r.mu.Lock()
	r.calls = append(r.calls, op)
	err := r.failOn[op]
	block := r.blockOn[op]
	r.mu.Unlock()

	if block != nil {
		r.entered <- op
		<-block
	}
	return err
}

// finish parks op after its effect is stored until the hold is released.
func (r *fakeRepo) finish(op string) {
	r.mu.Lock()
	hold := r.holdOn[op]
	r.mu.Unlock()

	if hold != nil {
		r.entered <- op
		<-hold
	}
}

func (r *fakeRepo) callCount(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (r *fakeRepo) List(ctx context.Context) ([]model.Task, error) {
	if err := r.begin("list"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

func (r *fakeRepo) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := r.begin("create"); err != nil {
		return model.Task{}, err
	}
	r.mu.Lock()
	r.nextID++
	r.lastIn = in
	created := r.base.Add(time.Duration(r.nextID) * time.Minute)
	t := model.Task{
		ID:        "t" + strconv.Itoa(r.nextID),
		CreatedAt: created,
		UpdatedAt: created,
	}
	t = applyInput(t, in)
	r.tasks = append([]model.Task{t}, r.tasks...)
	r.mu.Unlock()

	r.finish("create")
	return t.Clone(), nil
}

func (r *fakeRepo) Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	if err := r.begin("update"); err != nil {
		return model.Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID = id
	r.lastIn = in
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i] = applyInput(r.tasks[i], in)
			return r.tasks[i].Clone(), nil
		}
	}
	return model.Task{}, model.ErrNotFound
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	if err := r.begin("delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *fakeRepo) fail(op string, err error) {
	r.mu.Lock()
	r.failOn[op] = err
	r.mu.Unlock()
}

func (r *fakeRepo) block(op string) chan struct{} {
	ch := make(chan struct{})
	r.mu.Lock()
	r.blockOn[op] = ch
	r.mu.Unlock()
	return ch
}

func (r *fakeRepo) hold(op string) chan struct{} {
	ch := make(chan struct{})
	r.mu.Lock()
	r.holdOn[op] = ch
	r.mu.Unlock()
	return ch
}

func applyInput(t model.Task, in model.TaskInput) model.Task {
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

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func newTestController(repo Repository) (*Controller, *fakeClock) {
	clock := &fakeClock{}
	c := NewController(repo, NewCache(),
		WithClock(clock),
		WithLogger(log.New(io.Discard, "", 0)),
	)
	return c, clock
}
