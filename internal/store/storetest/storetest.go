// Package storetest holds the behaviour every task.TaskRepository
// implementation must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/druedada/projecte-final/internal/model"
	"github.com/druedada/projecte-final/internal/task"
)

// Run exercises repo. newRepo must return an empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) task.TaskRepository) {
	t.Helper()

	t.Run("CreateAssignsID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, sample("Buy milk", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Equal(t, model.PriorityLow, got.Priority)
		require.NotNil(t, got.DueDate)
		assert.Equal(t, "2024-02-01", model.DateOf(*got.DueDate).String())
		assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		older, err := repo.Create(ctx, sample("older", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
		newer, err := repo.Create(ctx, sample("newer", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)))
		require.NoError(t, err)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older.ID, list[1].ID)
	})

	t.Run("UpdateReplacesFields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, sample("draft", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
		require.NoError(t, err)

		created.Title = "final"
		created.Status = model.StatusCompleted
		created.DueDate = nil
		created.UpdatedAt = created.UpdatedAt.Add(time.Hour)
		updated, err := repo.Update(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Title)
		assert.Equal(t, model.StatusCompleted, updated.Status)
		assert.Nil(t, updated.DueDate)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Title)
		assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, sample("gone", time.Now().UTC()))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, created.ID))
		_, err = repo.Get(ctx, created.ID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("UnknownIDIsNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Get(ctx, "000000000000000000000000")
		assert.ErrorIs(t, err, model.ErrNotFound)
		_, err = repo.Update(ctx, model.Task{ID: "000000000000000000000000", Title: "x", Status: model.StatusPending, Priority: model.PriorityMedium})
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "000000000000000000000000"), model.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "not-an-id"), model.ErrNotFound)
	})
}

func sample(title string, createdAt time.Time) model.Task {
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return model.Task{
		Title:     title,
		Status:    model.StatusPending,
		Priority:  model.PriorityLow,
		DueDate:   &due,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
