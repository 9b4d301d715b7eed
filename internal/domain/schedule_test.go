package domain_test

import (
	"testing"
	"time"

	"caresync-api/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func newShift(t *testing.T, start, end string) domain.Shift {
	t.Helper()
	return domain.Shift{
		ID:         uuid.New(),
		ClientID:   uuid.New(),
		ShiftStart: mustTime(t, start),
		ShiftEnd:   mustTime(t, end),
	}
}

func TestClassify_StatesInPrecedenceOrder(t *testing.T) {
	shift := newShift(t, "2026-03-01T09:00:00Z", "2026-03-01T12:00:00Z")

	tests := []struct {
		name string
		now  string
		want domain.ShiftStatus
	}{
		{"before start", "2026-03-01T08:59:59Z", domain.ShiftPending},
		{"exactly at start", "2026-03-01T09:00:00Z", domain.ShiftInProgress},
		{"mid shift", "2026-03-01T10:30:00Z", domain.ShiftInProgress},
		{"exactly at end", "2026-03-01T12:00:00Z", domain.ShiftInEditWindow},
		{"within 8h window", "2026-03-01T19:59:00Z", domain.ShiftInEditWindow},
		{"exactly 8h after end", "2026-03-01T20:00:00Z", domain.ShiftClosed},
		{"well past window", "2026-03-02T09:00:00Z", domain.ShiftClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Classify(&shift, nil, mustTime(t, tt.now))
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

// The returned state must be monotonic in now: sweeping time forward across a
// shift's life may only ever advance the status, never move it backward.
func TestClassify_MonotonicInTime(t *testing.T) {
	shift := newShift(t, "2026-03-01T09:00:00Z", "2026-03-01T12:00:00Z")
	successor := newShift(t, "2026-03-01T13:00:00Z", "2026-03-01T17:00:00Z")

	order := map[domain.ShiftStatus]int{
		domain.ShiftPending:      0,
		domain.ShiftInProgress:   1,
		domain.ShiftInEditWindow: 2,
		domain.ShiftClosed:       3,
	}

	now := mustTime(t, "2026-03-01T00:00:00Z")
	last := -1
	for i := 0; i < 24*4; i++ {
		status := domain.Classify(&shift, &successor, now)
		rank, ok := order[status]
		require.True(t, ok, "classify returned an unknown status %q", status)
		assert.GreaterOrEqual(t, rank, last, "status moved backward at %s", now)
		last = rank
		now = now.Add(15 * time.Minute)
	}
	assert.Equal(t, order[domain.ShiftClosed], last)
}

func TestEditWindowEnd_LastShiftUsesFixedCap(t *testing.T) {
	shift := newShift(t, "2026-03-01T09:00:00Z", "2026-03-01T12:00:00Z")

	end := domain.EditWindowEnd(&shift, nil)
	assert.Equal(t, mustTime(t, "2026-03-01T20:00:00Z"), end)
}

// A successor starting an hour after this shift ends shortens the window to
// 2 hours into the successor, even though the 8-hour cap has not elapsed.
func TestEditWindowEnd_ShortenedBySuccessor(t *testing.T) {
	shift := newShift(t, "2026-03-01T09:00:00Z", "2026-03-01T12:00:00Z")
	successor := newShift(t, "2026-03-01T13:00:00Z", "2026-03-01T17:00:00Z")

	end := domain.EditWindowEnd(&shift, &successor)
	assert.Equal(t, mustTime(t, "2026-03-01T15:00:00Z"), end)

	// At 14:30 the window is already closed.
	status := domain.Classify(&shift, &successor, mustTime(t, "2026-03-01T14:30:00Z"))
	assert.Equal(t, domain.ShiftInEditWindow, status)
	status = domain.Classify(&shift, &successor, mustTime(t, "2026-03-01T15:30:00Z"))
	assert.Equal(t, domain.ShiftClosed, status)
}

func TestEditWindowEnd_DistantSuccessorKeepsFixedCap(t *testing.T) {
	shift := newShift(t, "2026-03-01T09:00:00Z", "2026-03-01T12:00:00Z")
	successor := newShift(t, "2026-03-02T09:00:00Z", "2026-03-02T12:00:00Z")

	end := domain.EditWindowEnd(&shift, &successor)
	assert.Equal(t, mustTime(t, "2026-03-01T20:00:00Z"), end)
}

func TestSortShifts_OrdersByStartTime(t *testing.T) {
	a := newShift(t, "2026-03-03T09:00:00Z", "2026-03-03T12:00:00Z")
	b := newShift(t, "2026-03-01T09:00:00Z", "2026-03-01T12:00:00Z")
	c := newShift(t, "2026-03-02T09:00:00Z", "2026-03-02T12:00:00Z")

	seq := []domain.Shift{a, b, c}
	domain.SortShifts(seq)

	assert.Equal(t, b.ID, seq[0].ID)
	assert.Equal(t, c.ID, seq[1].ID)
	assert.Equal(t, a.ID, seq[2].ID)
}

func TestSuccessorAndPredecessor(t *testing.T) {
	first := newShift(t, "2026-03-01T09:00:00Z", "2026-03-01T12:00:00Z")
	second := newShift(t, "2026-03-02T09:00:00Z", "2026-03-02T12:00:00Z")
	third := newShift(t, "2026-03-03T09:00:00Z", "2026-03-03T12:00:00Z")
	seq := []domain.Shift{first, second, third}
	domain.SortShifts(seq)

	next := domain.Successor(seq, second.ID)
	require.NotNil(t, next)
	assert.Equal(t, third.ID, next.ID)

	assert.Nil(t, domain.Successor(seq, third.ID))
	assert.Nil(t, domain.Successor(seq, uuid.New()))

	prev := domain.Predecessor(seq, second.ID)
	require.NotNil(t, prev)
	assert.Equal(t, first.ID, prev.ID)
	assert.Nil(t, domain.Predecessor(seq, first.ID))

	assert.True(t, domain.IsLast(seq, third.ID))
	assert.False(t, domain.IsLast(seq, first.ID))
	assert.False(t, domain.IsLast(nil, first.ID))
}

func TestFindOverlap(t *testing.T) {
	existing := newShift(t, "2026-03-01T09:00:00Z", "2026-03-01T12:00:00Z")
	seq := []domain.Shift{existing}

	tests := []struct {
		name  string
		start string
		end   string
		hit   bool
	}{
		{"starts inside existing", "2026-03-01T11:00:00Z", "2026-03-01T13:00:00Z", true},
		{"ends inside existing", "2026-03-01T08:00:00Z", "2026-03-01T10:00:00Z", true},
		{"fully contains existing", "2026-03-01T08:00:00Z", "2026-03-01T13:00:00Z", true},
		{"contained by existing", "2026-03-01T10:00:00Z", "2026-03-01T11:00:00Z", true},
		{"abuts at end (half-open)", "2026-03-01T12:00:00Z", "2026-03-01T14:00:00Z", false},
		{"abuts at start (half-open)", "2026-03-01T07:00:00Z", "2026-03-01T09:00:00Z", false},
		{"disjoint", "2026-03-02T09:00:00Z", "2026-03-02T12:00:00Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.FindOverlap(seq, mustTime(t, tt.start), mustTime(t, tt.end), uuid.Nil)
			if tt.hit {
				require.NotNil(t, got)
				assert.Equal(t, existing.ID, got.ID)
			} else {
				assert.Nil(t, got)
			}
		})
	}

	// The shift being edited never conflicts with itself.
	self := domain.FindOverlap(seq, existing.ShiftStart, existing.ShiftEnd, existing.ID)
	assert.Nil(t, self)
}
