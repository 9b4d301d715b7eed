package domain

import "github.com/google/uuid"

// ClientRole is the capability set a user holds for a client. A user may be
// coordinator and carer for the same client at once (self-assignment).
type ClientRole struct {
	IsCoordinator bool
	IsCarer       bool
}

// None reports whether the user holds no role for the client.
func (r ClientRole) None() bool {
	return !r.IsCoordinator && !r.IsCarer
}

// ShiftRole is the capability set a user holds for a specific shift.
type ShiftRole struct {
	IsCoordinator bool
	IsShiftCarer  bool
}

func (r ShiftRole) None() bool {
	return !r.IsCoordinator && !r.IsShiftCarer
}

// ResolveClientRole determines the user's relationship to a client. Every
// client-level authorization decision routes through here instead of ad hoc
// id comparisons scattered per handler.
func ResolveClientRole(userID uuid.UUID, client *Client) ClientRole {
	return ClientRole{
		IsCoordinator: userID == client.CoordinatorID,
		IsCarer:       client.HasCarer(userID),
	}
}

// ResolveShiftRole determines the user's relationship to a shift. A shift's
// coordinator or carer reference is uuid.Nil after that account is deleted;
// nobody inherits the role through the cleared reference.
func ResolveShiftRole(userID uuid.UUID, shift *Shift) ShiftRole {
	if userID == uuid.Nil {
		return ShiftRole{}
	}
	return ShiftRole{
		IsCoordinator: userID == shift.CoordinatorID,
		IsShiftCarer:  userID == shift.CarerID,
	}
}
