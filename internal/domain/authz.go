package domain

import "time"

// Operation identifies a guarded mutation or read on a shift and its
// attached documents.
type Operation string

const (
	OpCreateShift     Operation = "create_shift"
	OpEditShift       Operation = "edit_shift"
	OpCancelShift     Operation = "cancel_shift"
	OpWriteShiftNotes Operation = "write_shift_notes"
	OpWriteHandover   Operation = "write_handover_notes"
	OpWriteIncident   Operation = "write_incident_report"
	OpReadDocuments   Operation = "read_documents"
)

// WriteDecision is the outcome of an edit-window authorization check.
// Denied decisions distinguish a role failure (Unauthorized) from a temporal
// one (InvalidState) so callers can raise the right error kind.
type WriteDecision struct {
	Allowed    bool
	RoleDenied bool
	Reason     string
}

func allowed() WriteDecision {
	return WriteDecision{Allowed: true}
}

func deniedRole(reason string) WriteDecision {
	return WriteDecision{RoleDenied: true, Reason: reason}
}

func deniedState(reason string) WriteDecision {
	return WriteDecision{Reason: reason}
}

// CanWrite gates every shift/document mutation. status must come from
// Classify for the same now; isLast reports whether the shift is the last of
// its client's sequence (the handover rule needs it).
//
// Role check runs before the temporal check: a user who holds no role gets
// Unauthorized regardless of the shift's state.
func CanWrite(op Operation, role ShiftRole, status ShiftStatus, shift *Shift, isLast bool, now time.Time) WriteDecision {
	switch op {
	case OpCreateShift:
		// Creation is gated at the client level (coordinator only) before a
		// shift exists; by the time a ShiftRole exists this is a given.
		if !role.IsCoordinator {
			return deniedRole("only the client's coordinator may create shifts")
		}
		return allowed()

	case OpEditShift:
		if !role.IsCoordinator {
			return deniedRole("only the client's coordinator may edit a shift")
		}
		if status != ShiftPending && status != ShiftInProgress {
			return deniedState("shifts can only be edited before they end")
		}
		return allowed()

	case OpCancelShift:
		if !role.IsCoordinator {
			return deniedRole("only the client's coordinator may cancel a shift")
		}
		// Sample shifts are demo data and may be removed at any time.
		if status != ShiftPending && !shift.IsSample {
			return deniedState("only pending shifts can be cancelled")
		}
		return allowed()

	case OpWriteShiftNotes, OpWriteIncident:
		if !role.IsShiftCarer {
			return deniedRole("only the assigned carer may write shift documentation")
		}
		if status != ShiftInProgress && status != ShiftInEditWindow {
			return deniedState("the documentation window for this shift has closed")
		}
		return allowed()

	case OpWriteHandover:
		if !role.IsShiftCarer {
			return deniedRole("only the assigned carer may write handover notes")
		}
		if status == ShiftInProgress || status == ShiftInEditWindow {
			return allowed()
		}
		// Handover stays open indefinitely on the last shift of the sequence
		// until a successor is added; the next carer needs it whenever they
		// are scheduled.
		if isLast && now.After(shift.ShiftEnd) {
			return allowed()
		}
		return deniedState("the handover window for this shift has closed")

	case OpReadDocuments:
		if role.IsCoordinator || role.IsShiftCarer {
			return allowed()
		}
		return deniedRole("only the coordinator or the assigned carer may read shift documents")
	}

	return deniedRole("unknown operation")
}

// StartTimeLocked reports whether the shift's start time may no longer be
// changed. The start is immutable once the shift has started, even while the
// rest of the shift remains editable in progress.
func StartTimeLocked(shift *Shift, now time.Time) bool {
	return !now.Before(shift.ShiftStart)
}
