package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Shift is one scheduled care session. Shifts belong to an ordered sequence
// per client (ascending ShiftStart); the temporal state machine in schedule.go
// needs each shift's immediate successor within that sequence.
type Shift struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ClientID uuid.UUID `json:"clientId" db:"client_id"`

	// CoordinatorID and CarerID are uuid.Nil when the referenced account has
	// been deleted. The shift itself survives: documentation stays readable
	// and editable by the client's coordinator.
	CoordinatorID uuid.UUID `json:"coordinatorId" db:"coordinator_id"`
	CarerID       uuid.UUID `json:"carerId" db:"carer_id"`

	ShiftStart time.Time `json:"shiftStartTime" db:"shift_start"`
	ShiftEnd   time.Time `json:"shiftEndTime" db:"shift_end"`

	// CoordinatorNotes are written by the coordinator at scheduling time.
	// ShiftNotes and HandoverNotes are carer documentation; empty string
	// means absent (clearing sets them back to empty).
	CoordinatorNotes string `json:"coordinatorNotes" db:"coordinator_notes"`
	ShiftNotes       string `json:"shiftNotes" db:"shift_notes"`
	HandoverNotes    string `json:"handoverNotes" db:"handover_notes"`

	// ShiftNotesPDF holds the uploaded export URL, if any. Derived artifact;
	// the text column is authoritative.
	ShiftNotesPDF string `json:"shiftNotesPDF,omitempty" db:"shift_notes_pdf"`

	// IsSample marks demo seed shifts, which are exempt from the
	// pending-only cancellation rule.
	IsSample bool `json:"isSample" db:"is_sample"`

	IncidentReports []IncidentReport `json:"incidentReports"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Overlaps reports whether the [start, end) interval of this shift intersects
// the given interval.
func (s *Shift) Overlaps(start, end time.Time) bool {
	return start.Before(s.ShiftEnd) && s.ShiftStart.Before(end)
}

// IncidentReport is an element of a shift's incident list. ID is stable;
// display numbering is positional and recomputed on every read.
type IncidentReport struct {
	ID      uuid.UUID `json:"id" db:"id"`
	ShiftID uuid.UUID `json:"shiftId" db:"shift_id"`
	Text    string    `json:"incidentReportText" db:"report_text"`

	// PDFURL holds the uploaded export URL, if any.
	PDFURL string `json:"incidentReportPDF,omitempty" db:"pdf_url"`

	// DisplayIndex is the 1-based position in insertion order. Not stored;
	// deleting report #2 of 3 renumbers the remaining two on the next read.
	DisplayIndex int `json:"displayIndex" db:"-"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// NumberIncidentReports assigns 1-based display indexes in insertion order.
func NumberIncidentReports(reports []IncidentReport) {
	for i := range reports {
		reports[i].DisplayIndex = i + 1
	}
}

// CreateShiftRequest DTO for shift creation. The coordinator is the
// authenticated caller; the carer must be a member of the client's care team.
type CreateShiftRequest struct {
	CarerID          uuid.UUID `json:"carerId" validate:"required"`
	ShiftStart       time.Time `json:"shiftStartTime" validate:"required"`
	ShiftEnd         time.Time `json:"shiftEndTime" validate:"required"`
	CoordinatorNotes string    `json:"coordinatorNotes,omitempty" validate:"max=5000"`
}

func (r *CreateShiftRequest) Validate() error {
	r.CoordinatorNotes = strings.TrimSpace(r.CoordinatorNotes)

	validate := validator.New()
	return validate.Struct(r)
}

// UpdateShiftRequest DTO for partial shift updates (PATCH semantics).
// nil = do not modify. Start time is immutable once the shift has started;
// that rule lives in authz.go, not here.
type UpdateShiftRequest struct {
	CarerID          *uuid.UUID `json:"carerId,omitempty"`
	ShiftStart       *time.Time `json:"shiftStartTime,omitempty"`
	ShiftEnd         *time.Time `json:"shiftEndTime,omitempty"`
	CoordinatorNotes *string    `json:"coordinatorNotes,omitempty" validate:"omitempty,max=5000"`
}

func (r *UpdateShiftRequest) Validate() error {
	if r.CoordinatorNotes != nil {
		trimmed := strings.TrimSpace(*r.CoordinatorNotes)
		r.CoordinatorNotes = &trimmed
	}

	validate := validator.New()
	return validate.Struct(r)
}

// Empty reports whether the update carries no changes at all.
func (r *UpdateShiftRequest) Empty() bool {
	return r.CarerID == nil && r.ShiftStart == nil && r.ShiftEnd == nil && r.CoordinatorNotes == nil
}

// WriteNotesRequest DTO for shift notes and handover notes submissions.
type WriteNotesRequest struct {
	Text string `json:"text" validate:"required,min=1,max=10000"`
}

func (r *WriteNotesRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)

	validate := validator.New()
	return validate.Struct(r)
}

// IncidentReportRequest DTO for incident report create/edit.
type IncidentReportRequest struct {
	Text string `json:"incidentReportText" validate:"required,min=1,max=10000"`
}

func (r *IncidentReportRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)

	validate := validator.New()
	return validate.Struct(r)
}

// ShiftView is a Shift enriched with the computed temporal status and
// edit-window end, so the SPA does not reimplement the state machine.
type ShiftView struct {
	Shift
	Status        ShiftStatus `json:"status"`
	EditWindowEnd time.Time   `json:"editWindowEnd"`
}

// ShiftListResponse is the ordered shift sequence for one client.
type ShiftListResponse struct {
	Data []ShiftView `json:"data"`
}
