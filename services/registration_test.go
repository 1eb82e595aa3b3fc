package services

import (
	"errors"
	"testing"
	"time"

	"github.com/sivoham-sks/sks_api/dto"
	"github.com/sivoham-sks/sks_api/model"
	"github.com/sivoham-sks/sks_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleViews() []dto.RegistrationView {
	attended := time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC)
	return []dto.RegistrationView{
		{
			RegistrationID: "SKS-010426-111111",
			EventID:        "evt-1",
			FullName:       "Anita Rao",
			Mobile:         "9876543210",
			Status:         shared.StatusApproved,
			Attended:       true,
			AttendedAt:     &attended,
			WhatsappSent:   true,
		},
		{
			RegistrationID: "SKS-010426-222222",
			EventID:        "evt-1",
			FullName:       "Ravi Kumar",
			Mobile:         "9123456789",
			Status:         shared.StatusPending,
		},
		{
			RegistrationID: "SKS-010426-333333",
			EventID:        "evt-2",
			FullName:       "Lakshmi Devi",
			Mobile:         "9000000000",
			Status:         shared.StatusRejected,
		},
	}
}

func ids(views []dto.RegistrationView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.RegistrationID)
	}
	return out
}

func TestMintWithRetriesRegeneratesOnCollision(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	dup := errors.New("duplicate key value violates unique constraint")

	collisions := 2
	var seen []string
	id, err := mintWithRetries(now, "u-1", "evt-1", func(idx *model.RegistrationIndex) error {
		seen = append(seen, idx.RegistrationID)
		if len(seen) <= collisions {
			return dup
		}
		assert.Equal(t, "u-1", idx.UserID)
		assert.Equal(t, "evt-1", idx.EventID)
		return nil
	}, func(err error) bool { return errors.Is(err, dup) })

	require.NoError(t, err)
	assert.Len(t, seen, collisions+1)
	assert.Equal(t, seen[len(seen)-1], id)
}

func TestMintWithRetriesGivesUpAfterBound(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	dup := errors.New("duplicate key value violates unique constraint")

	attempts := 0
	_, err := mintWithRetries(now, "u-1", "evt-1", func(idx *model.RegistrationIndex) error {
		attempts++
		return dup
	}, func(err error) bool { return true })

	require.Error(t, err)
	assert.Equal(t, mintRetries, attempts)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.StatusCode)
}

func TestBulkTransitionCountsEveryFoundRegistration(t *testing.T) {
	now := time.Now()
	regs := map[string]*model.Registration{
		"SKS-010426-111111": {Status: shared.StatusApproved},
		"SKS-010426-222222": {Status: shared.StatusPending},
	}

	ids := []string{"SKS-010426-111111", "SKS-010426-222222", "SKS-010426-999999"}
	modified, err := bulkTransition(ids, func(id string) error {
		reg, ok := regs[id]
		if !ok {
			return shared.NewNotFoundError(nil, "Registration not found")
		}
		reg.Approve(now)
		return nil
	})

	require.NoError(t, err)
	// The already-approved entry still counts; only the unknown id is skipped.
	assert.Equal(t, 2, modified)
	assert.Equal(t, shared.StatusApproved, regs["SKS-010426-222222"].Status)
}

func TestBulkTransitionAbortsOnHardError(t *testing.T) {
	boom := errors.New("connection reset by peer")
	calls := 0
	_, err := bulkTransition([]string{"a", "b", "c"}, func(id string) error {
		calls++
		if id == "b" {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestMintWithRetriesSurvivesCollisionThenReuse(t *testing.T) {
	// Each attempt runs in its own savepoint, so the insert callback must
	// stay usable after a collision: dup, dup, then success on the same tx.
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	dup := errors.New(`ERROR: duplicate key value violates unique constraint "registration_indices_pkey" (SQLSTATE 23505)`)

	ds := &PostgresService{}
	attempts := 0
	id, err := mintWithRetries(now, "u-1", "evt-1", func(idx *model.RegistrationIndex) error {
		attempts++
		if attempts < 3 {
			return dup
		}
		return nil
	}, ds.IsDuplicateKeyError)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.NotEmpty(t, id)
}

func TestMintWithRetriesStopsWhenTransactionDies(t *testing.T) {
	// Without attempt isolation a collision kills the enclosing transaction
	// and every later insert reports it as aborted. That must surface as a
	// hard failure immediately, not be retried as if it were a collision.
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	dup := errors.New(`ERROR: duplicate key value violates unique constraint "registration_indices_pkey" (SQLSTATE 23505)`)
	aborted := errors.New("ERROR: current transaction is aborted, commands ignored until end of transaction block (SQLSTATE 25P02)")

	ds := &PostgresService{}
	attempts := 0
	_, err := mintWithRetries(now, "u-1", "evt-1", func(idx *model.RegistrationIndex) error {
		attempts++
		if attempts == 1 {
			return dup
		}
		return aborted
	}, ds.IsDuplicateKeyError)

	require.ErrorIs(t, err, aborted)
	assert.Equal(t, 2, attempts)
}

func TestMintWithRetriesAbortsOnOtherErrors(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	boom := errors.New("connection reset")

	attempts := 0
	_, err := mintWithRetries(now, "u-1", "evt-1", func(idx *model.RegistrationIndex) error {
		attempts++
		return boom
	}, func(err error) bool { return false })

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestApplyFiltersNilPassthrough(t *testing.T) {
	views := sampleViews()
	assert.Len(t, applyFilters(views, nil), 3)
	assert.Len(t, applyFilters(views, &dto.RegistrationFilters{}), 3)
}

func TestApplyFiltersByEventAndStatus(t *testing.T) {
	got := applyFilters(sampleViews(), &dto.RegistrationFilters{Event: "evt-1"})
	assert.Equal(t, []string{"SKS-010426-111111", "SKS-010426-222222"}, ids(got))

	got = applyFilters(sampleViews(), &dto.RegistrationFilters{Status: shared.StatusPending})
	assert.Equal(t, []string{"SKS-010426-222222"}, ids(got))

	got = applyFilters(sampleViews(), &dto.RegistrationFilters{Event: "evt-1", Status: shared.StatusRejected})
	assert.Empty(t, got)
}

func TestApplyFiltersNameCaseInsensitive(t *testing.T) {
	got := applyFilters(sampleViews(), &dto.RegistrationFilters{Name: "anita"})
	require.Len(t, got, 1)
	assert.Equal(t, "Anita Rao", got[0].FullName)

	got = applyFilters(sampleViews(), &dto.RegistrationFilters{Mobile: "9123"})
	require.Len(t, got, 1)
	assert.Equal(t, "Ravi Kumar", got[0].FullName)
}

func TestApplyFiltersAttendedAndWhatsapp(t *testing.T) {
	got := applyFilters(sampleViews(), &dto.RegistrationFilters{Attended: "yes"})
	assert.Equal(t, []string{"SKS-010426-111111"}, ids(got))

	got = applyFilters(sampleViews(), &dto.RegistrationFilters{Attended: "no"})
	assert.Len(t, got, 2)

	got = applyFilters(sampleViews(), &dto.RegistrationFilters{WhatsappSent: "no"})
	assert.Len(t, got, 2)
}

func TestApplyFiltersAttendanceWindow(t *testing.T) {
	got := applyFilters(sampleViews(), &dto.RegistrationFilters{
		AttendedAfter:  "2026-04-01T00:00:00Z",
		AttendedBefore: "2026-04-03T00:00:00Z",
	})
	assert.Equal(t, []string{"SKS-010426-111111"}, ids(got))

	got = applyFilters(sampleViews(), &dto.RegistrationFilters{AttendedAfter: "2026-04-03T00:00:00Z"})
	assert.Empty(t, got)

	// Malformed bounds are ignored rather than rejecting the whole query.
	got = applyFilters(sampleViews(), &dto.RegistrationFilters{AttendedAfter: "yesterday"})
	assert.Len(t, got, 3)
}

func TestDashNormalization(t *testing.T) {
	assert.Equal(t, "-", dash(""))
	assert.Equal(t, "-", dash("   "))
	assert.Equal(t, "value", dash("value"))
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Anita Rao")
	assert.Equal(t, "Anita", first)
	assert.Equal(t, "Rao", last)

	first, last = splitName("Lakshmi Devi Prasad")
	assert.Equal(t, "Lakshmi", first)
	assert.Equal(t, "Devi Prasad", last)

	first, last = splitName("Madonna")
	assert.Equal(t, "Madonna", first)
	assert.Empty(t, last)
}

func TestBuildViewNormalizesBlanks(t *testing.T) {
	owner := &model.User{ID: "u-1", FirstName: "Anita", LastName: "Rao", Mobile: "9876543210"}
	reg := &model.Registration{
		RegistrationID: "SKS-010426-111111",
		EventID:        "evt-1",
		FullName:       "Anita Rao",
		Mobile:         "9876543210",
	}

	view := buildView(reg, owner, map[string]string{"evt-1": shared.EventTypeLimited})

	assert.Equal(t, shared.EventTypeLimited, view.EventType)
	assert.Equal(t, "-", view.Profession)
	assert.Equal(t, "-", view.OtherDetails)
	assert.Equal(t, "Anita Rao", view.FullName)
	require.NotNil(t, view.User)
	assert.Equal(t, "Anita Rao", view.User.FullName)
}
