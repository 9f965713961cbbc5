package app

import (
	"testing"
	"time"

	"github.com/dukerupert/householder/internal/chore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	aliceCtx, _ := env.register(t, "alice")
	bobCtx, bob := env.register(t, "bob")
	_, carol := env.register(t, "carol")
	h, err := env.app.CreateHousehold(aliceCtx, "Flat 4B")
	require.NoError(t, err)
	env.join(t, aliceCtx, bobCtx, h.ID(), bob)

	_, err = env.app.CreateTask(aliceCtx, h.ID(), TaskInput{Title: "Bins", AssigneeID: carol.ID()})
	assertKind(t, err, chore.ErrForeignAssignee)
	_, err = env.app.CreateTask(aliceCtx, h.ID(), TaskInput{Title: "  "})
	assertKind(t, err, chore.ErrInvalidTask)

	task, err := env.app.CreateTask(aliceCtx, h.ID(), TaskInput{Title: "Bins", Points: 3, DueDate: day})
	require.NoError(t, err)
	require.NoError(t, env.app.AssignTask(aliceCtx, h.ID(), task.ID(), bob.ID()))

	now := day.Add(9 * time.Hour)
	env.app.now = func() time.Time { return now }
	require.NoError(t, env.app.CompleteTask(bobCtx, h.ID(), task.ID()))
	assertKind(t, env.app.CompleteTask(bobCtx, h.ID(), task.ID()), chore.ErrAlreadyDone)

	tasks, err := env.app.Tasks(aliceCtx, h.ID())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Done())
	assert.Equal(t, bob.ID(), tasks[0].LastCompletedBy())
	assert.True(t, now.Equal(tasks[0].CompletedAt()))

	require.NoError(t, env.app.ReopenTask(aliceCtx, h.ID(), task.ID()))
	assertKind(t, env.app.ReopenTask(aliceCtx, h.ID(), task.ID()), chore.ErrNotDone)

	require.NoError(t, env.app.AssignTask(aliceCtx, h.ID(), task.ID(), uuid.Nil))
	require.NoError(t, env.app.DeleteTask(aliceCtx, h.ID(), task.ID()))
	assertKind(t, env.app.DeleteTask(aliceCtx, h.ID(), task.ID()), ErrNotFound)
	assert.Contains(t, env.pub.types(), "task_completed")
}

func TestRepeatingTaskReschedules(t *testing.T) {
	env := newTestEnv(t)
	ctx, _ := env.register(t, "alice")
	h, err := env.app.CreateHousehold(ctx, "Flat 4B")
	require.NoError(t, err)

	_, err = env.app.CreateTask(ctx, h.ID(), TaskInput{Title: "Hoover", Repeat: "FREQ=WEEKLY"})
	assertKind(t, err, chore.ErrInvalidRepeat)

	task, err := env.app.CreateTask(ctx, h.ID(), TaskInput{Title: "Hoover", DueDate: day, Repeat: "FREQ=WEEKLY"})
	require.NoError(t, err)

	env.app.now = func() time.Time { return day.Add(10 * time.Hour) }
	require.NoError(t, env.app.CompleteTask(ctx, h.ID(), task.ID()))

	tasks, err := env.app.Tasks(ctx, h.ID())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Done())
	assert.True(t, tasks[0].DueDate().After(day))
}
