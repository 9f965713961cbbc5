package chore

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/dukerupert/householder/internal/household"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func assertKind(t *testing.T, err error, sentinel *aggregate.Error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel), "expected %v, got %v", sentinel, err)
	assert.Equal(t, sentinel.Kind, aggregate.KindOf(err))
}

func newHousehold(t *testing.T, names ...string) (*household.Household, []*household.User) {
	t.Helper()
	var users []*household.User
	for _, n := range names {
		u, err := household.NewUser(n+"@example.com", n, "hash")
		require.NoError(t, err)
		users = append(users, u)
	}
	h, err := household.New("Flat 4B", users[0])
	require.NoError(t, err)
	svc := household.NewService()
	for _, u := range users[1:] {
		_, err := h.Invite(u)
		require.NoError(t, err)
		_, err = svc.ConvertInvitationToRoommate(h, u)
		require.NoError(t, err)
	}
	return h, users
}

func TestNewTaskValidation(t *testing.T) {
	_, err := New(uuid.Nil, "Dishes", "", 1)
	assertKind(t, err, ErrInvalidTask)
	_, err = New(uuid.New(), " ", "", 1)
	assertKind(t, err, ErrInvalidTask)
	_, err = New(uuid.New(), "Dishes", "", -1)
	assertKind(t, err, ErrInvalidTask)

	task, err := New(uuid.New(), " Dishes ", " after dinner ", 3)
	require.NoError(t, err)
	assert.Equal(t, "Dishes", task.Title())
	assert.Equal(t, "after dinner", task.Description())
}

func TestAssign(t *testing.T) {
	h, users := newHousehold(t, "alice", "bob")
	other, _ := newHousehold(t, "carol")
	task, err := New(h.ID(), "Bins", "", 1)
	require.NoError(t, err)

	require.NoError(t, task.Assign(h, users[1].ID()))
	assert.Equal(t, users[1].ID(), task.AssigneeUserID())

	assertKind(t, task.Assign(h, uuid.New()), ErrForeignAssignee)
	assertKind(t, task.Assign(other, users[0].ID()), household.ErrCrossHouseholdReference)
	assert.Equal(t, users[1].ID(), task.AssigneeUserID())

	require.NoError(t, task.Assign(h, uuid.Nil))
	assert.Equal(t, uuid.Nil, task.AssigneeUserID())
}

func TestCompleteAndReopen(t *testing.T) {
	task, err := New(uuid.New(), "Buy shelves", "", 0)
	require.NoError(t, err)
	alice := uuid.New()
	now := date(2026, 2, 5)

	assertKind(t, task.Reopen(), ErrNotDone)
	require.NoError(t, task.Complete(alice, now))
	assert.Equal(t, StatusCompleted, task.Status(now))
	assertKind(t, task.Complete(alice, now), ErrAlreadyDone)

	require.NoError(t, task.Reopen())
	assert.Equal(t, StatusPending, task.Status(now))
	assert.True(t, task.CompletedAt().IsZero())
}

func TestCompleteRepeatingTaskReschedules(t *testing.T) {
	task, err := New(uuid.New(), "Mop", "", 2)
	require.NoError(t, err)
	require.NoError(t, task.SetSchedule(date(2026, 2, 2), "FREQ=WEEKLY"))

	// Completed three days late: next due is the first weekly slot after today.
	require.NoError(t, task.Complete(uuid.New(), date(2026, 2, 12)))
	assert.False(t, task.Done())
	assert.Equal(t, date(2026, 2, 16), task.DueDate())
	assert.Equal(t, StatusNotDue, task.Status(date(2026, 2, 12)))
}

func TestStatus(t *testing.T) {
	task, err := New(uuid.New(), "Water plants", "", 1)
	require.NoError(t, err)
	require.NoError(t, task.SetSchedule(date(2026, 2, 5), ""))

	tests := []struct {
		today time.Time
		want  Status
	}{
		{date(2026, 2, 4), StatusNotDue},
		{time.Date(2026, 2, 5, 18, 30, 0, 0, time.UTC), StatusPending},
		{date(2026, 2, 6), StatusOverdue},
	}
	for _, tt := range tests {
		if got := task.Status(tt.today); got != tt.want {
			t.Errorf("Status(%s) = %q, want %q", tt.today.Format(time.DateOnly), got, tt.want)
		}
	}
}

func TestSetScheduleRejectsBadRule(t *testing.T) {
	task, err := New(uuid.New(), "Mop", "", 2)
	require.NoError(t, err)

	assertKind(t, task.SetSchedule(date(2026, 1, 1), "FREQ=HOURLY"), ErrInvalidRepeat)
	assertKind(t, task.SetSchedule(time.Time{}, "FREQ=DAILY"), ErrInvalidRepeat)
	assert.True(t, task.Repeat().IsZero())
}

func TestDetachRoommate(t *testing.T) {
	h, users := newHousehold(t, "alice", "bob")
	bob := users[1].ID()
	assigned, err := New(h.ID(), "Bins", "", 1)
	require.NoError(t, err)
	require.NoError(t, assigned.Assign(h, bob))
	completed, err := New(h.ID(), "Dishes", "", 1)
	require.NoError(t, err)
	require.NoError(t, completed.Complete(bob, date(2026, 1, 1)))
	untouched, err := New(h.ID(), "Vacuum", "", 1)
	require.NoError(t, err)

	n := DetachRoommate([]*Task{assigned, completed, untouched}, bob)
	assert.Equal(t, 2, n)
	assert.Equal(t, uuid.Nil, assigned.AssigneeUserID())
	assert.Equal(t, uuid.Nil, completed.LastCompletedBy())
	assert.True(t, completed.Done())
}

func TestTaskSnapshotRoundTrip(t *testing.T) {
	task, err := New(uuid.New(), "Mop", "kitchen", 2)
	require.NoError(t, err)
	require.NoError(t, task.SetSchedule(date(2026, 2, 2), "FREQ=DAILY;INTERVAL=3"))

	restored, err := Restore(task.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, task.Snapshot(), restored.Snapshot())
}
