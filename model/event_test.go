package model

import (
	"regexp"
	"testing"
	"time"

	"github.com/sivoham-sks/sks_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialStatusByEventType(t *testing.T) {
	unlimited := &Event{EventType: shared.EventTypeUnlimited}
	assert.Equal(t, shared.StatusApproved, unlimited.InitialStatus())

	limited := &Event{EventType: shared.EventTypeLimited}
	assert.Equal(t, shared.StatusPending, limited.InitialStatus())
}

func TestDeadlinePassed(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	open := &Event{}
	assert.False(t, open.DeadlinePassed(now))

	future := now.Add(time.Hour)
	e := &Event{RegistrationDeadline: &future}
	assert.False(t, e.DeadlinePassed(now))

	past := now.Add(-time.Hour)
	e.RegistrationDeadline = &past
	assert.True(t, e.DeadlinePassed(now))
}

func TestApproveRejectIdempotent(t *testing.T) {
	now := time.Now()
	reg := &Registration{Status: shared.StatusPending}

	assert.True(t, reg.Approve(now))
	assert.Equal(t, shared.StatusApproved, reg.Status)
	assert.False(t, reg.Approve(now))

	assert.True(t, reg.Reject(now))
	assert.Equal(t, shared.StatusRejected, reg.Status)
	assert.False(t, reg.Reject(now))

	// Rejected registrations can still be approved afterwards.
	assert.True(t, reg.Approve(now))
}

func TestMarkAttendedGuards(t *testing.T) {
	now := time.Now()

	pending := &Registration{Status: shared.StatusPending}
	err := pending.MarkAttended(now)
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.ErrorIs(t, appErr, shared.ErrNotApproved)

	approved := &Registration{Status: shared.StatusApproved}
	require.NoError(t, approved.MarkAttended(now))
	assert.True(t, approved.Attended)
	require.NotNil(t, approved.AttendedAt)

	err = approved.MarkAttended(now)
	require.Error(t, err)
	appErr, ok = shared.GetAppError(err)
	require.True(t, ok)
	assert.ErrorIs(t, appErr, shared.ErrAlreadyAttended)
}

func TestAddAttendanceDedupes(t *testing.T) {
	ev := &UserEvents{}
	rec := AttendanceRecord{EventID: "evt-1", RegisteredID: "SKS-100326-123456"}

	assert.True(t, ev.AddAttendance(rec))
	assert.False(t, ev.AddAttendance(rec))
	assert.Len(t, ev.EventsAttended, 1)
	assert.True(t, ev.HasAttended("evt-1"))
	assert.False(t, ev.HasAttended("evt-2"))
}

func TestFindRegistration(t *testing.T) {
	ev := &UserEvents{
		EventsRegistered: []Registration{
			{RegistrationID: "SKS-100326-111111"},
			{RegistrationID: "SKS-100326-222222"},
		},
	}

	reg := ev.FindRegistration("SKS-100326-222222")
	require.NotNil(t, reg)

	// The lookup must return a mutable reference into the ledger.
	reg.Status = shared.StatusApproved
	assert.Equal(t, shared.StatusApproved, ev.EventsRegistered[1].Status)

	assert.Nil(t, ev.FindRegistration("SKS-100326-333333"))
}

func TestNewRegistrationIDFormat(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^SKS-050326-[1-9]\d{5}$`)

	for i := 0; i < 100; i++ {
		id := NewRegistrationID(now)
		assert.Regexp(t, pattern, id)
	}
}
