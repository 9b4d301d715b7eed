package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ShiftStatus is a shift's temporal state, computed from its start/end times,
// the current time, and its successor in the client's shift sequence.
type ShiftStatus string

const (
	// ShiftPending - the shift has not started yet.
	ShiftPending ShiftStatus = "PENDING"

	// ShiftInProgress - the shift is currently underway.
	ShiftInProgress ShiftStatus = "IN_PROGRESS"

	// ShiftInEditWindow - the shift has ended but its carer may still submit
	// or amend documentation.
	ShiftInEditWindow ShiftStatus = "IN_EDIT_WINDOW"

	// ShiftClosed - the shift has ended and its edit window has elapsed.
	ShiftClosed ShiftStatus = "CLOSED"
)

func (s ShiftStatus) IsValid() bool {
	switch s {
	case ShiftPending, ShiftInProgress, ShiftInEditWindow, ShiftClosed:
		return true
	}
	return false
}

const (
	// EditWindow is the fixed grace period after a shift ends during which
	// its carer may still write documentation.
	EditWindow = 8 * time.Hour

	// SuccessorGrace caps the edit window once the next shift is underway:
	// documentation for the previous shift closes 2 hours into the next one.
	SuccessorGrace = 2 * time.Hour
)

// Classify computes the shift's temporal state. successor is the next shift
// in the client's sequence by start time, or nil if this shift is the last.
// States are mutually exclusive and checked in precedence order: a shift only
// ever moves forward through Pending -> InProgress -> InEditWindow -> Closed
// as now advances.
func Classify(shift *Shift, successor *Shift, now time.Time) ShiftStatus {
	if now.Before(shift.ShiftStart) {
		return ShiftPending
	}
	if now.Before(shift.ShiftEnd) {
		return ShiftInProgress
	}
	if now.Before(EditWindowEnd(shift, successor)) {
		return ShiftInEditWindow
	}
	return ShiftClosed
}

// EditWindowEnd returns when the shift's edit window closes. The grace period
// must not bleed into the next shift once it is well underway, so the window
// ends at the fixed cap or 2 hours into the successor, whichever is earlier.
// A shift with no successor uses only the fixed cap.
func EditWindowEnd(shift *Shift, successor *Shift) time.Time {
	capEnd := shift.ShiftEnd.Add(EditWindow)
	if successor == nil {
		return capEnd
	}
	successorCut := successor.ShiftStart.Add(SuccessorGrace)
	if successorCut.Before(capEnd) {
		return successorCut
	}
	return capEnd
}

// SortShifts orders a client's shifts ascending by start time, ties broken by
// id for determinism. The sequence ordering is load-bearing: successor lookup
// assumes it.
func SortShifts(shifts []Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].ShiftStart.Equal(shifts[j].ShiftStart) {
			return shifts[i].ID.String() < shifts[j].ID.String()
		}
		return shifts[i].ShiftStart.Before(shifts[j].ShiftStart)
	})
}

// Successor returns the shift immediately after the target in the sorted
// sequence, or nil if the target is last (or absent). Explicit lookup by id,
// not positional indexing, so insertions and cancellations cannot introduce
// off-by-one errors.
func Successor(sorted []Shift, shiftID uuid.UUID) *Shift {
	for i := range sorted {
		if sorted[i].ID == shiftID {
			if i+1 < len(sorted) {
				return &sorted[i+1]
			}
			return nil
		}
	}
	return nil
}

// Predecessor returns the shift immediately before the target, or nil.
func Predecessor(sorted []Shift, shiftID uuid.UUID) *Shift {
	for i := range sorted {
		if sorted[i].ID == shiftID {
			if i > 0 {
				return &sorted[i-1]
			}
			return nil
		}
	}
	return nil
}

// IsLast reports whether the shift is the last of the client's sequence.
func IsLast(sorted []Shift, shiftID uuid.UUID) bool {
	if len(sorted) == 0 {
		return false
	}
	return sorted[len(sorted)-1].ID == shiftID
}

// FindOverlap returns the first shift in the sequence whose [start, end)
// interval intersects the given one, excluding excludeID (the shift being
// edited). Returns nil when the interval is free.
func FindOverlap(shifts []Shift, start, end time.Time, excludeID uuid.UUID) *Shift {
	for i := range shifts {
		if shifts[i].ID == excludeID {
			continue
		}
		if shifts[i].Overlaps(start, end) {
			return &shifts[i]
		}
	}
	return nil
}
