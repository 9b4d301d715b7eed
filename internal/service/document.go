package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"caresync-api/internal/domain"
	"caresync-api/internal/export"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/repo"

	"github.com/google/uuid"
)

// DocumentService owns carer documentation: shift notes, handover notes and
// incident reports, plus their PDF exports. All writes route through the
// edit-window rules; exports only need read access.
type DocumentService struct {
	shiftRepo  *repo.ShiftRepository
	clientRepo *repo.ClientRepository
	userRepo   *repo.UserRepository
	storage    export.Storage
	log        *logger.Logger

	// now is swappable in tests
	now func() time.Time
}

func NewDocumentService(
	shiftRepo *repo.ShiftRepository,
	clientRepo *repo.ClientRepository,
	userRepo *repo.UserRepository,
	storage export.Storage,
	log *logger.Logger,
) *DocumentService {
	return &DocumentService{
		shiftRepo:  shiftRepo,
		clientRepo: clientRepo,
		userRepo:   userRepo,
		storage:    storage,
		log:        log,
		now:        time.Now,
	}
}

// shiftContext bundles everything an authorization decision needs.
type shiftContext struct {
	shift  *domain.Shift
	client *domain.Client
	role   domain.ShiftRole
	status domain.ShiftStatus
	isLast bool
	now    time.Time
}

// loadShiftContext resolves a shift, its client and the caller's capabilities.
// Users outside the client circle get not-found.
func (s *DocumentService) loadShiftContext(ctx context.Context, actorID, shiftID uuid.UUID) (*shiftContext, error) {
	shift, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, shift.ClientID)
	if err != nil {
		return nil, err
	}

	clientRole := domain.ResolveClientRole(actorID, client)
	if clientRole.None() {
		return nil, ErrShiftNotFound
	}

	shifts, err := s.shiftRepo.ListByClient(ctx, shift.ClientID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	domain.SortShifts(shifts)

	now := s.now()

	return &shiftContext{
		shift:  shift,
		client: client,
		role:   domain.ResolveShiftRole(actorID, shift),
		status: domain.Classify(shift, domain.Successor(shifts, shiftID), now),
		isLast: domain.IsLast(shifts, shiftID),
		now:    now,
	}, nil
}

// authorize converts a write decision into the service error taxonomy.
func authorize(sc *shiftContext, op domain.Operation) error {
	decision := domain.CanWrite(op, sc.role, sc.status, sc.shift, sc.isLast, sc.now)
	if decision.Allowed {
		return nil
	}
	if decision.RoleDenied {
		return ErrUnauthorized
	}
	return ErrInvalidState
}

// WriteShiftNotes writes the shift notes. Assigned carer only, while the
// shift is in progress or inside its edit window.
func (s *DocumentService) WriteShiftNotes(ctx context.Context, actorID, shiftID uuid.UUID, req *domain.WriteNotesRequest) (*domain.Shift, error) {
	sc, err := s.loadShiftContext(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}

	if err := authorize(sc, domain.OpWriteShiftNotes); err != nil {
		return nil, err
	}

	if req.Text == sc.shift.ShiftNotes {
		return nil, ErrNoChanges
	}

	if err := s.shiftRepo.SetShiftNotes(ctx, shiftID, req.Text); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "shift notes written",
		logger.Module("document"),
		logger.Action("write_shift_notes"),
		zap.String("shift_id", shiftID.String()),
	)

	return s.shiftRepo.GetByID(ctx, shiftID)
}

// ClearShiftNotes clears the shift notes under the same rules as writing them.
func (s *DocumentService) ClearShiftNotes(ctx context.Context, actorID, shiftID uuid.UUID) error {
	sc, err := s.loadShiftContext(ctx, actorID, shiftID)
	if err != nil {
		return err
	}

	if err := authorize(sc, domain.OpWriteShiftNotes); err != nil {
		return err
	}

	return s.shiftRepo.SetShiftNotes(ctx, shiftID, "")
}

// WriteHandover writes the handover notes. Same window as shift notes, except
// the window never closes while the shift remains the client's last.
func (s *DocumentService) WriteHandover(ctx context.Context, actorID, shiftID uuid.UUID, req *domain.WriteNotesRequest) (*domain.Shift, error) {
	sc, err := s.loadShiftContext(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}

	if err := authorize(sc, domain.OpWriteHandover); err != nil {
		return nil, err
	}

	if req.Text == sc.shift.HandoverNotes {
		return nil, ErrNoChanges
	}

	if err := s.shiftRepo.SetHandoverNotes(ctx, shiftID, req.Text); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "handover notes written",
		logger.Module("document"),
		logger.Action("write_handover"),
		zap.String("shift_id", shiftID.String()),
	)

	return s.shiftRepo.GetByID(ctx, shiftID)
}

// ClearHandover clears the handover notes under the same rules as writing them.
func (s *DocumentService) ClearHandover(ctx context.Context, actorID, shiftID uuid.UUID) error {
	sc, err := s.loadShiftContext(ctx, actorID, shiftID)
	if err != nil {
		return err
	}

	if err := authorize(sc, domain.OpWriteHandover); err != nil {
		return err
	}

	return s.shiftRepo.SetHandoverNotes(ctx, shiftID, "")
}

// AddIncident appends an incident report to a shift.
func (s *DocumentService) AddIncident(ctx context.Context, actorID, shiftID uuid.UUID, req *domain.IncidentReportRequest) ([]domain.IncidentReport, error) {
	sc, err := s.loadShiftContext(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}

	if err := authorize(sc, domain.OpWriteIncident); err != nil {
		return nil, err
	}

	report := &domain.IncidentReport{
		ID:      uuid.New(),
		ShiftID: shiftID,
		Text:    req.Text,
	}

	if err := s.shiftRepo.CreateIncident(ctx, report); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "incident report added",
		logger.Module("document"),
		logger.Action("add_incident"),
		zap.String("shift_id", shiftID.String()),
		zap.String("incident_id", report.ID.String()),
	)

	return s.shiftRepo.ListIncidents(ctx, shiftID)
}

// UpdateIncident replaces the text of an incident report.
func (s *DocumentService) UpdateIncident(ctx context.Context, actorID, shiftID, incidentID uuid.UUID, req *domain.IncidentReportRequest) ([]domain.IncidentReport, error) {
	sc, err := s.loadShiftContext(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}

	if err := authorize(sc, domain.OpWriteIncident); err != nil {
		return nil, err
	}

	report, err := s.shiftRepo.GetIncident(ctx, shiftID, incidentID)
	if err != nil {
		return nil, err
	}
	if report.Text == req.Text {
		return nil, ErrNoChanges
	}

	if err := s.shiftRepo.UpdateIncidentText(ctx, shiftID, incidentID, req.Text); err != nil {
		return nil, err
	}

	return s.shiftRepo.ListIncidents(ctx, shiftID)
}

// DeleteIncident removes an incident report. The remaining reports renumber
// on the next read; their ids never change.
func (s *DocumentService) DeleteIncident(ctx context.Context, actorID, shiftID, incidentID uuid.UUID) ([]domain.IncidentReport, error) {
	sc, err := s.loadShiftContext(ctx, actorID, shiftID)
	if err != nil {
		return nil, err
	}

	if err := authorize(sc, domain.OpWriteIncident); err != nil {
		return nil, err
	}

	if err := s.shiftRepo.DeleteIncident(ctx, shiftID, incidentID); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "incident report deleted",
		logger.Module("document"),
		logger.Action("delete_incident"),
		zap.String("shift_id", shiftID.String()),
		zap.String("incident_id", incidentID.String()),
	)

	return s.shiftRepo.ListIncidents(ctx, shiftID)
}

// ExportShiftNotes renders the shift notes as PDF, uploads it and records the
// URL on the shift. Requires read access and non-empty notes.
func (s *DocumentService) ExportShiftNotes(ctx context.Context, actorID, shiftID uuid.UUID) (string, error) {
	sc, err := s.loadShiftContext(ctx, actorID, shiftID)
	if err != nil {
		return "", err
	}

	if err := authorize(sc, domain.OpReadDocuments); err != nil {
		return "", err
	}

	if strings.TrimSpace(sc.shift.ShiftNotes) == "" {
		return "", ErrNothingToExport
	}

	if s.storage == nil {
		return "", fmt.Errorf("%w: export storage not configured", ErrCollaborator)
	}

	carer, err := s.userRepo.GetByID(ctx, sc.shift.CarerID)
	if err != nil {
		return "", fmt.Errorf("get carer: %w", err)
	}

	data, err := export.RenderShiftNotes(export.ShiftNotesDocument{
		ClientName: strings.TrimSpace(sc.client.FirstName + " " + sc.client.LastName),
		CarerName:  carer.FullName(),
		ShiftStart: sc.shift.ShiftStart,
		ShiftEnd:   sc.shift.ShiftEnd,
		Notes:      sc.shift.ShiftNotes,
	})
	if err != nil {
		return "", fmt.Errorf("render shift notes pdf: %w", err)
	}

	objectPath := fmt.Sprintf("clients/%s/shifts/%s/shift-notes.pdf", sc.client.ID, shiftID)
	url, err := s.storage.Upload(ctx, objectPath, "application/pdf", data)
	if err != nil {
		s.log.Error(ctx, "failed to upload shift notes pdf",
			logger.Module("document"),
			logger.Action("export_shift_notes"),
			zap.String("shift_id", shiftID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: upload shift notes pdf", ErrCollaborator)
	}

	if err := s.shiftRepo.SetShiftNotesPDF(ctx, shiftID, url); err != nil {
		return "", err
	}

	s.log.Info(ctx, "shift notes exported",
		logger.Module("document"),
		logger.Action("export_shift_notes"),
		zap.String("shift_id", shiftID.String()),
	)

	return url, nil
}

// ExportIncident renders one incident report as PDF, uploads it and records
// the URL on the report.
func (s *DocumentService) ExportIncident(ctx context.Context, actorID, shiftID, incidentID uuid.UUID) (string, error) {
	sc, err := s.loadShiftContext(ctx, actorID, shiftID)
	if err != nil {
		return "", err
	}

	if err := authorize(sc, domain.OpReadDocuments); err != nil {
		return "", err
	}

	if s.storage == nil {
		return "", fmt.Errorf("%w: export storage not configured", ErrCollaborator)
	}

	reports, err := s.shiftRepo.ListIncidents(ctx, shiftID)
	if err != nil {
		return "", err
	}

	var report *domain.IncidentReport
	for i := range reports {
		if reports[i].ID == incidentID {
			report = &reports[i]
			break
		}
	}
	if report == nil {
		return "", ErrIncidentNotFound
	}

	carer, err := s.userRepo.GetByID(ctx, sc.shift.CarerID)
	if err != nil {
		return "", fmt.Errorf("get carer: %w", err)
	}

	data, err := export.RenderIncident(export.IncidentDocument{
		ClientName:   strings.TrimSpace(sc.client.FirstName + " " + sc.client.LastName),
		CarerName:    carer.FullName(),
		ShiftStart:   sc.shift.ShiftStart,
		DisplayIndex: report.DisplayIndex,
		Text:         report.Text,
	})
	if err != nil {
		return "", fmt.Errorf("render incident pdf: %w", err)
	}

	objectPath := fmt.Sprintf("clients/%s/shifts/%s/incidents/%s.pdf", sc.client.ID, shiftID, incidentID)
	url, err := s.storage.Upload(ctx, objectPath, "application/pdf", data)
	if err != nil {
		s.log.Error(ctx, "failed to upload incident pdf",
			logger.Module("document"),
			logger.Action("export_incident"),
			zap.String("shift_id", shiftID.String()),
			zap.String("incident_id", incidentID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: upload incident pdf", ErrCollaborator)
	}

	if err := s.shiftRepo.SetIncidentPDF(ctx, shiftID, incidentID, url); err != nil {
		return "", err
	}

	return url, nil
}
