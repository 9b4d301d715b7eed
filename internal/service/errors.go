package service

import (
	"errors"
	"fmt"
	"time"

	"caresync-api/internal/repo"

	"github.com/google/uuid"
)

// Re-exported repo sentinels so handlers only depend on the service layer.
var (
	ErrUserNotFound     = repo.ErrUserNotFound
	ErrClientNotFound   = repo.ErrClientNotFound
	ErrShiftNotFound    = repo.ErrShiftNotFound
	ErrIncidentNotFound = repo.ErrIncidentNotFound
	ErrEmailTaken       = repo.ErrEmailTaken
)

var (
	// Authorization failures (403): the caller exists but lacks the role.
	ErrUnauthorized = errors.New("user not authorized for this action")

	// State failures (422): the role is right but the shift's temporal state
	// or the scheduling rules forbid the operation.
	ErrInvalidState    = errors.New("operation not allowed in the current state")
	ErrShiftInPast     = errors.New("shift must not end in the past")
	ErrCarerNotMember  = errors.New("carer is not a member of the care team")
	ErrNothingToExport = errors.New("no document text to export")
	ErrShiftOverlap    = errors.New("shift overlaps an existing shift for this client")

	// Conflicts (409).
	ErrNoChanges        = errors.New("update carries no changes")
	ErrAlreadyMember    = errors.New("user is already a member of the care team")
	ErrAlreadyConfirmed = errors.New("email address already confirmed")

	// Authentication failures (401).
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountNotConfirmed = errors.New("email address not confirmed")
	ErrInvalidToken        = errors.New("invalid or expired token")

	// External collaborator failures (502).
	ErrCollaborator = errors.New("external collaborator failure")
)

// OverlapError carries the shift a requested interval collides with, so the
// response can name it. It matches ErrShiftOverlap under errors.Is.
type OverlapError struct {
	ConflictID    uuid.UUID
	ConflictStart time.Time
	ConflictEnd   time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("shift overlaps existing shift %s (%s to %s)",
		e.ConflictID,
		e.ConflictStart.Format(time.RFC3339),
		e.ConflictEnd.Format(time.RFC3339),
	)
}

func (e *OverlapError) Unwrap() error { return ErrShiftOverlap }
