package viewmodel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/druedada/projecte-final/internal/model"
)

func createTask(t *testing.T, c *Controller, title string, status model.Status) model.Task {
	t.Helper()
	c.StartCreate()
	require.NoError(t, c.Edit(func(d *Draft) {
		d.Title = title
		d.Status = status
	}))
	created, err := c.Save(context.Background())
	require.NoError(t, err)
	return created
}

func TestController_StartCreateResetsDraft(t *testing.T) {
	c, _ := newTestController(newFakeRepo())
	assert.Equal(t, StateIdle, c.State())

	c.StartCreate()

	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, Draft{Status: model.StatusPending, Priority: model.PriorityMedium}, c.Draft())
}

func TestController_StartEditCopiesTask(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	created := createTask(t, c, "Write report", model.StatusInProgress)

	due := time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC)
	cached, ok := c.Cache().Get(created.ID)
	require.True(t, ok)
	cached.DueDate = &due

	c.StartEdit(cached)
	d := c.Draft()
	assert.Equal(t, created.ID, d.ID)
	require.NotNil(t, d.DueDate)
	assert.Equal(t, model.Date{Year: 2024, Month: time.May, Day: 1}, *d.DueDate)

	require.NoError(t, c.Edit(func(d *Draft) {
		d.Title = "changed in form"
		d.ID = "hijack"
	}))
	assert.Equal(t, created.ID, c.Draft().ID, "edits cannot change the id")

	still, _ := c.Cache().Get(created.ID)
	assert.Equal(t, "Write report", still.Title, "draft must not alias the cache")
}

func TestController_CancelReturnsToIdle(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)

	c.StartCreate()
	require.NoError(t, c.Edit(func(d *Draft) { d.Title = "half typed" }))
	c.Cancel()

	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, newDraft(), c.Draft())
	assert.Empty(t, repo.calls)
	assert.ErrorIs(t, c.Edit(func(d *Draft) {}), ErrNotEditing)
	_, err := c.Save(context.Background())
	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestController_SaveCreates(t *testing.T) {
	repo := newFakeRepo()
	c, clock := newTestController(repo)
	require.NoError(t, c.Reload(context.Background()))
	before := c.Cache().Len()

	due := model.Date{Year: 2024, Month: time.June, Day: 3}
	c.StartCreate()
	require.NoError(t, c.Edit(func(d *Draft) {
		d.Title = "Buy bread"
		d.Description = "wholegrain"
		d.Priority = model.PriorityHigh
		d.DueDate = &due
	}))
	created, err := c.Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, before+1, c.Cache().Len())
	head := c.Cache().Tasks()[0]
	assert.Equal(t, created.ID, head.ID)
	assert.True(t, created.IsNew)
	assert.NotEmpty(t, head.ID)
	assert.False(t, head.CreatedAt.IsZero())
	assert.True(t, head.IsNew)
	assert.Equal(t, "Buy bread", head.Title)
	assert.Equal(t, "wholegrain", head.Description)
	assert.Equal(t, model.StatusPending, head.Status)
	assert.Equal(t, model.PriorityHigh, head.Priority)
	require.NotNil(t, head.DueDate)
	assert.Equal(t, due, model.DateOf(*head.DueDate))

	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, Message{Kind: MessageSuccess, Text: msgCreated}, c.Message())

	clock.Advance(SuccessTTL - time.Millisecond)
	assert.Equal(t, MessageSuccess, c.Message().Kind)
	clock.Advance(time.Millisecond)
	assert.Equal(t, Message{}, c.Message())
}

func TestController_SaveUpdates(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	a := createTask(t, c, "A", model.StatusPending)
	b := createTask(t, c, "B", model.StatusPending)
	createTask(t, c, "C", model.StatusPending)
	require.Equal(t, 3, c.Cache().Len())
	position := 1
	require.Equal(t, b.ID, c.Cache().Tasks()[position].ID)

	c.StartEdit(b)
	require.NoError(t, c.Edit(func(d *Draft) {
		d.Title = "B renamed"
		d.Status = model.StatusInProgress
	}))
	updated, err := c.Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, b.ID, repo.lastID)
	assert.Equal(t, "B renamed", repo.lastIn.Title)
	assert.Equal(t, 3, c.Cache().Len())
	got := c.Cache().Tasks()[position]
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, "B renamed", got.Title)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, updated.Title, got.Title)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, msgUpdated, c.Message().Text)

	first, _ := c.Cache().Get(a.ID)
	assert.Equal(t, "A", first.Title)
}

func TestController_SaveFailureStaysEditing(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	repo.fail("create", errBoom)

	c.StartCreate()
	require.NoError(t, c.Edit(func(d *Draft) { d.Title = "Doomed" }))
	_, err := c.Save(context.Background())

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, "Doomed", c.Draft().Title)
	assert.Equal(t, Message{Kind: MessageError, Text: msgSaveFailed}, c.Message())
	assert.Zero(t, c.Cache().Len())
}

func TestController_UpdateOfUncachedTaskIsInconsistent(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	created := createTask(t, c, "A", model.StatusPending)
	require.NoError(t, c.Cache().RemoveOne(created.ID))

	c.StartEdit(created)
	_, err := c.Save(context.Background())

	assert.ErrorIs(t, err, ErrCacheInconsistency)
	assert.Equal(t, MessageError, c.Message().Kind)
}

func TestController_CompleteChangesOnlyStatus(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	due := model.Date{Year: 2024, Month: time.July, Day: 9}
	c.StartCreate()
	require.NoError(t, c.Edit(func(d *Draft) {
		d.Title = "Pay rent"
		d.Description = "before the 10th"
		d.Priority = model.PriorityHigh
		d.DueDate = &due
	}))
	created, err := c.Save(context.Background())
	require.NoError(t, err)
	before, _ := c.Cache().Get(created.ID)

	_, err = c.Complete(context.Background(), created.ID)
	require.NoError(t, err)

	after, _ := c.Cache().Get(created.ID)
	assert.Equal(t, model.StatusCompleted, after.Status)
	after.Status = before.Status
	assert.Equal(t, before, after)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, msgCompleted, c.Message().Text)
}

func TestController_CompleteUnknownIDFailsWithoutNetwork(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)

	_, err := c.Complete(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrCacheInconsistency)
	assert.Zero(t, repo.callCount("update"))
	assert.Equal(t, Message{Kind: MessageError, Text: msgCompleteFailed}, c.Message())
}

func TestController_Delete(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	a := createTask(t, c, "A", model.StatusPending)
	b := createTask(t, c, "B", model.StatusPending)

	require.NoError(t, c.Delete(context.Background(), a.ID))

	_, ok := c.Cache().Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, []string{b.ID}, ids(c.Cache().Tasks()))
	assert.Equal(t, msgDeleted, c.Message().Text)
}

func TestController_DeleteFailureLeavesCache(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	createTask(t, c, "A", model.StatusPending)
	b := createTask(t, c, "B", model.StatusPending)
	before := c.Cache().Tasks()
	repo.fail("delete", errBoom)

	err := c.Delete(context.Background(), b.ID)

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, before, c.Cache().Tasks())
	assert.Equal(t, Message{Kind: MessageError, Text: msgDeleteFailed}, c.Message())
}

func TestController_DeleteOfUncachedTaskIsInconsistent(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	a := createTask(t, c, "A", model.StatusPending)
	require.NoError(t, c.Cache().RemoveOne(a.ID))

	err := c.Delete(context.Background(), a.ID)

	assert.ErrorIs(t, err, ErrCacheInconsistency)
	assert.Equal(t, MessageError, c.Message().Kind)
}

func TestController_MessagesAreExclusive(t *testing.T) {
	repo := newFakeRepo()
	c, clock := newTestController(repo)

	a := createTask(t, c, "A", model.StatusPending)
	require.Equal(t, MessageSuccess, c.Message().Kind)

	repo.fail("delete", errBoom)
	_ = c.Delete(context.Background(), a.ID)
	assert.Equal(t, Message{Kind: MessageError, Text: msgDeleteFailed}, c.Message())

	clock.Advance(SuccessTTL)
	assert.Equal(t, MessageError, c.Message().Kind, "pending success timer must not clear a later error")

	repo.fail("delete", nil)
	_, err := c.Complete(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, Message{Kind: MessageSuccess, Text: msgCompleted}, c.Message())
}

func TestController_NewSuccessRestartsTimer(t *testing.T) {
	c, clock := newTestController(newFakeRepo())

	createTask(t, c, "A", model.StatusPending)
	clock.Advance(2 * time.Second)
	createTask(t, c, "B", model.StatusPending)
	clock.Advance(2 * time.Second)

	assert.Equal(t, MessageSuccess, c.Message().Kind)
	clock.Advance(time.Second)
	assert.Equal(t, MessageNone, c.Message().Kind)
}

func TestController_Dismiss(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	repo.fail("list", errBoom)
	require.Error(t, c.Reload(context.Background()))
	require.Equal(t, MessageError, c.Message().Kind)

	c.Dismiss()

	assert.Equal(t, Message{}, c.Message())
}

func TestController_BuyMilkScenario(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	createTask(t, c, "Older", model.StatusCompleted)

	c.StartCreate()
	require.NoError(t, c.Edit(func(d *Draft) {
		d.Title = "Buy milk"
		d.Status = model.StatusPending
		d.Priority = model.PriorityLow
	}))
	milk, err := c.Save(context.Background())
	require.NoError(t, err)

	head := c.Cache().Tasks()[0]
	assert.Equal(t, milk.ID, head.ID)
	assert.True(t, head.IsNew)
	assert.Equal(t, model.PriorityLow, head.Priority)

	pending, err := Project(c.Cache().Tasks(), Filter(model.StatusPending))
	require.NoError(t, err)
	assert.Contains(t, ids(pending), milk.ID)

	completed, err := Project(c.Cache().Tasks(), Filter(model.StatusCompleted))
	require.NoError(t, err)
	assert.NotContains(t, ids(completed), milk.ID)
}

func TestController_CompletionKeepsCreationOrder(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	a := createTask(t, c, "A", model.StatusPending)
	b := createTask(t, c, "B", model.StatusCompleted)
	require.NoError(t, c.Reload(context.Background()))

	_, err := c.Complete(context.Background(), a.ID)
	require.NoError(t, err)
	require.NoError(t, c.SetFilter(Filter(model.StatusCompleted)))

	// B was created after A, so it stays first whatever the completion order.
	assert.Equal(t, []string{b.ID, a.ID}, ids(c.View()))
}

func TestController_CreateSwitchesHidingFilterToAll(t *testing.T) {
	c, _ := newTestController(newFakeRepo())
	require.NoError(t, c.SetFilter(Filter(model.StatusCompleted)))

	created := createTask(t, c, "Fresh", model.StatusPending)

	assert.Equal(t, FilterAll, c.Filter())
	assert.Contains(t, ids(c.View()), created.ID)

	require.NoError(t, c.SetFilter(Filter(model.StatusPending)))
	createTask(t, c, "Also pending", model.StatusPending)
	assert.Equal(t, Filter(model.StatusPending), c.Filter())
}

func TestController_SetFilterRejectsUnknown(t *testing.T) {
	c, _ := newTestController(newFakeRepo())

	assert.ErrorIs(t, c.SetFilter("archived"), ErrUnknownFilter)
	assert.Equal(t, FilterAll, c.Filter())
}

func TestController_ReloadKeepsIsNewAndClearsLoadError(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	created := createTask(t, c, "Mine", model.StatusPending)

	repo.fail("list", errBoom)
	require.ErrorIs(t, c.Reload(context.Background()), errBoom)
	assert.Equal(t, Message{Kind: MessageError, Text: msgLoadFailed}, c.Message())
	assert.Equal(t, 1, c.Cache().Len(), "failed reload keeps the cache")

	repo.fail("list", nil)
	require.NoError(t, c.Reload(context.Background()))
	assert.Equal(t, MessageNone, c.Message().Kind)

	got, ok := c.Cache().Get(created.ID)
	require.True(t, ok)
	assert.True(t, got.IsNew)
}

func TestController_LoadingDuringReload(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	release := repo.block("list")

	done := make(chan error, 1)
	go func() { done <- c.Reload(context.Background()) }()

	<-repo.entered
	assert.True(t, c.Loading())
	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.Loading())
}

func TestController_CreateOverlappingReloadKeepsOneEntry(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	release := repo.hold("create")

	c.StartCreate()
	require.NoError(t, c.Edit(func(d *Draft) { d.Title = "Raced" }))
	done := make(chan error, 1)
	go func() {
		_, err := c.Save(context.Background())
		done <- err
	}()
	<-repo.entered

	// The server already holds the task when the reload lands.
	require.NoError(t, c.Reload(context.Background()))
	require.Equal(t, 1, c.Cache().Len())

	close(release)
	require.NoError(t, <-done)

	got := c.Cache().Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.True(t, got[0].IsNew)
	assert.Equal(t, "Raced", got[0].Title)

	require.NoError(t, c.Delete(context.Background(), "t1"))
	assert.Zero(t, c.Cache().Len())
}

func TestController_RejectsDuplicateSubmission(t *testing.T) {
	repo := newFakeRepo()
	c, _ := newTestController(repo)
	a := createTask(t, c, "A", model.StatusPending)
	release := repo.block("update")

	done := make(chan error, 1)
	go func() {
		_, err := c.Complete(context.Background(), a.ID)
		done <- err
	}()
	<-repo.entered

	_, err := c.Complete(context.Background(), a.ID)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.Delete(context.Background(), a.ID), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, repo.callCount("update"))
	assert.Zero(t, repo.callCount("delete"))
}

func TestController_SubscribeNotifies(t *testing.T) {
	c, _ := newTestController(newFakeRepo())
	var calls atomic.Int32
	unsubscribe := c.Subscribe(func() { calls.Add(1) })

	c.StartCreate()
	c.Cancel()
	assert.Equal(t, int32(2), calls.Load())

	unsubscribe()
	c.StartCreate()
	assert.Equal(t, int32(2), calls.Load())
}

func TestController_SnapshotIsConsistent(t *testing.T) {
	c, _ := newTestController(newFakeRepo())
	createTask(t, c, "A", model.StatusPending)
	createTask(t, c, "B", model.StatusCompleted)
	require.NoError(t, c.SetFilter(Filter(model.StatusCompleted)))

	s := c.Snapshot()

	assert.Equal(t, StateIdle, s.State)
	assert.Equal(t, Filter(model.StatusCompleted), s.Filter)
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, "B", s.Tasks[0].Title)
	assert.Equal(t, MessageSuccess, s.Message.Kind)
}
