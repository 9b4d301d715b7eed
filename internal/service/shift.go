package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"caresync-api/internal/domain"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ShiftService struct {
	shiftRepo  *repo.ShiftRepository
	clientRepo *repo.ClientRepository
	log        *logger.Logger

	// now is swappable in tests
	now func() time.Time
}

func NewShiftService(shiftRepo *repo.ShiftRepository, clientRepo *repo.ClientRepository, log *logger.Logger) *ShiftService {
	return &ShiftService{
		shiftRepo:  shiftRepo,
		clientRepo: clientRepo,
		log:        log,
		now:        time.Now,
	}
}

// buildView attaches the computed temporal status and edit-window end to a
// shift. sorted must be the client's full sequence.
func buildView(shift domain.Shift, sorted []domain.Shift, now time.Time) domain.ShiftView {
	successor := domain.Successor(sorted, shift.ID)
	return domain.ShiftView{
		Shift:         shift,
		Status:        domain.Classify(&shift, successor, now),
		EditWindowEnd: domain.EditWindowEnd(&shift, successor),
	}
}

// ListShifts retrieves the ordered shift sequence of a client with computed
// statuses. Visible to the coordinator and every care team member.
func (s *ShiftService) ListShifts(ctx context.Context, actorID, clientID uuid.UUID) (*domain.ShiftListResponse, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	role := domain.ResolveClientRole(actorID, client)
	if role.None() {
		return nil, ErrClientNotFound
	}

	shifts, err := s.shiftRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}

	domain.SortShifts(shifts)

	now := s.now()
	views := make([]domain.ShiftView, 0, len(shifts))
	for _, shift := range shifts {
		views = append(views, buildView(shift, shifts, now))
	}

	return &domain.ShiftListResponse{Data: views}, nil
}

// GetShift retrieves one shift with computed status. Readable by the
// coordinator and the assigned carer.
func (s *ShiftService) GetShift(ctx context.Context, actorID, shiftID uuid.UUID) (*domain.ShiftView, error) {
	shift, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	role := domain.ResolveShiftRole(actorID, shift)
	now := s.now()

	shifts, err := s.shiftRepo.ListByClient(ctx, shift.ClientID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	domain.SortShifts(shifts)

	status := domain.Classify(shift, domain.Successor(shifts, shiftID), now)
	isLast := domain.IsLast(shifts, shiftID)

	decision := domain.CanWrite(domain.OpReadDocuments, role, status, shift, isLast, now)
	if !decision.Allowed {
		return nil, ErrShiftNotFound
	}

	view := buildView(*shift, shifts, now)
	return &view, nil
}

// CreateShift schedules a new shift. Coordinator only; the carer must belong
// to the care team; the interval must not overlap any existing shift and must
// not end in the past. Runs under the client row lock so two concurrent
// creations cannot both pass the overlap check.
func (s *ShiftService) CreateShift(ctx context.Context, actorID, clientID uuid.UUID, req *domain.CreateShiftRequest) (*domain.ShiftView, error) {
	if !req.ShiftEnd.After(req.ShiftStart) {
		return nil, ErrInvalidState
	}

	now := s.now()
	if req.ShiftEnd.Before(now) {
		return nil, ErrShiftInPast
	}

	tx, err := s.shiftRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	client, err := s.clientRepo.GetForUpdate(ctx, tx, clientID)
	if err != nil {
		return nil, err
	}

	role := domain.ResolveClientRole(actorID, client)
	if role.None() {
		return nil, ErrClientNotFound
	}
	if !role.IsCoordinator {
		return nil, ErrUnauthorized
	}

	if !client.HasCarer(req.CarerID) {
		return nil, ErrCarerNotMember
	}

	shifts, err := s.shiftRepo.ListByClientTx(ctx, tx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}

	if conflict := domain.FindOverlap(shifts, req.ShiftStart, req.ShiftEnd, uuid.Nil); conflict != nil {
		return nil, &OverlapError{ConflictID: conflict.ID, ConflictStart: conflict.ShiftStart, ConflictEnd: conflict.ShiftEnd}
	}

	shift := &domain.Shift{
		ID:               uuid.New(),
		ClientID:         clientID,
		CoordinatorID:    client.CoordinatorID,
		CarerID:          req.CarerID,
		ShiftStart:       req.ShiftStart,
		ShiftEnd:         req.ShiftEnd,
		CoordinatorNotes: req.CoordinatorNotes,
		IncidentReports:  []domain.IncidentReport{},
	}

	if err := s.shiftRepo.CreateTx(ctx, tx, shift); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.log.Info(ctx, "shift created",
		logger.Module("shift"),
		logger.Action("create"),
		zap.String("shift_id", shift.ID.String()),
		zap.Time("shift_start", shift.ShiftStart),
	)

	shifts = append(shifts, *shift)
	domain.SortShifts(shifts)
	view := buildView(*shift, shifts, now)
	return &view, nil
}

// UpdateShift applies a partial update to a shift. Coordinator only, and only
// while the shift is pending or in progress. The start time locks once the
// shift has started; the new interval must stay overlap-free.
func (s *ShiftService) UpdateShift(ctx context.Context, actorID, shiftID uuid.UUID, req *domain.UpdateShiftRequest) (*domain.ShiftView, error) {
	if req.Empty() {
		return nil, ErrNoChanges
	}

	now := s.now()

	tx, err := s.shiftRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	shift, client, shifts, err := s.lockShift(ctx, tx, shiftID)
	if err != nil {
		return nil, err
	}

	role := domain.ResolveShiftRole(actorID, shift)
	if role.None() && !client.HasCarer(actorID) {
		return nil, ErrShiftNotFound
	}

	status := domain.Classify(shift, domain.Successor(shifts, shiftID), now)
	isLast := domain.IsLast(shifts, shiftID)

	decision := domain.CanWrite(domain.OpEditShift, role, status, shift, isLast, now)
	if !decision.Allowed {
		if decision.RoleDenied {
			return nil, ErrUnauthorized
		}
		return nil, ErrInvalidState
	}

	if req.ShiftStart != nil && domain.StartTimeLocked(shift, now) {
		return nil, ErrInvalidState
	}

	if req.CarerID != nil && !client.HasCarer(*req.CarerID) {
		return nil, ErrCarerNotMember
	}

	newStart := shift.ShiftStart
	newEnd := shift.ShiftEnd
	if req.ShiftStart != nil {
		newStart = *req.ShiftStart
	}
	if req.ShiftEnd != nil {
		newEnd = *req.ShiftEnd
	}

	if !newEnd.After(newStart) {
		return nil, ErrInvalidState
	}
	if newEnd.Before(now) {
		return nil, ErrShiftInPast
	}

	if conflict := domain.FindOverlap(shifts, newStart, newEnd, shiftID); conflict != nil {
		return nil, &OverlapError{ConflictID: conflict.ID, ConflictStart: conflict.ShiftStart, ConflictEnd: conflict.ShiftEnd}
	}

	updated, err := s.shiftRepo.UpdateTx(ctx, tx, shiftID, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.log.Info(ctx, "shift updated",
		logger.Module("shift"),
		logger.Action("update"),
		zap.String("shift_id", shiftID.String()),
	)

	// Rebuild the sequence with the fresh row for the computed view
	for i := range shifts {
		if shifts[i].ID == shiftID {
			shifts[i] = *updated
		}
	}
	domain.SortShifts(shifts)
	view := buildView(*updated, shifts, now)
	return &view, nil
}

// CancelShift removes a shift. Coordinator only; only pending shifts can be
// cancelled, except demo seed shifts which are removable at any time.
func (s *ShiftService) CancelShift(ctx context.Context, actorID, shiftID uuid.UUID) error {
	now := s.now()

	tx, err := s.shiftRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	shift, client, shifts, err := s.lockShift(ctx, tx, shiftID)
	if err != nil {
		return err
	}

	role := domain.ResolveShiftRole(actorID, shift)
	if role.None() && !client.HasCarer(actorID) {
		return ErrShiftNotFound
	}

	status := domain.Classify(shift, domain.Successor(shifts, shiftID), now)
	isLast := domain.IsLast(shifts, shiftID)

	decision := domain.CanWrite(domain.OpCancelShift, role, status, shift, isLast, now)
	if !decision.Allowed {
		if decision.RoleDenied {
			return ErrUnauthorized
		}
		return ErrInvalidState
	}

	if err := s.shiftRepo.DeleteTx(ctx, tx, shiftID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.log.Info(ctx, "shift cancelled",
		logger.Module("shift"),
		logger.Action("cancel"),
		zap.String("shift_id", shiftID.String()),
	)

	return nil
}

// lockShift resolves a shift's client, takes the client row lock and re-reads
// the shift sequence under it. The shift is returned from the locked read, so
// a concurrent delete surfaces as not-found here.
func (s *ShiftService) lockShift(ctx context.Context, tx pgx.Tx, shiftID uuid.UUID) (*domain.Shift, *domain.Client, []domain.Shift, error) {
	unlocked, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := s.clientRepo.GetForUpdate(ctx, tx, unlocked.ClientID)
	if err != nil {
		return nil, nil, nil, err
	}

	shifts, err := s.shiftRepo.ListByClientTx(ctx, tx, client.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list shifts: %w", err)
	}
	domain.SortShifts(shifts)

	for i := range shifts {
		if shifts[i].ID == shiftID {
			return &shifts[i], client, shifts, nil
		}
	}

	return nil, nil, nil, ErrShiftNotFound
}
