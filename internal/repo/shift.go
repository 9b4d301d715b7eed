package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caresync-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrShiftNotFound    = errors.New("shift not found")
	ErrIncidentNotFound = errors.New("incident report not found")
)

// coordinator_id and carer_id go NULL when the referenced account is deleted;
// they coalesce to the zero UUID so deleted references scan cleanly.
const shiftColumns = `id, client_id,
	COALESCE(coordinator_id, '00000000-0000-0000-0000-000000000000'::uuid),
	COALESCE(carer_id, '00000000-0000-0000-0000-000000000000'::uuid),
	shift_start, shift_end,
	coordinator_notes, shift_notes, handover_notes, shift_notes_pdf, is_sample,
	created_at, updated_at`

type ShiftRepository struct {
	pool *pgxpool.Pool
}

func NewShiftRepository(pool *pgxpool.Pool) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

// BeginTx starts a transaction. Use with defer tx.Rollback(ctx) and
// tx.Commit(ctx).
func (r *ShiftRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func scanShift(row pgx.Row) (*domain.Shift, error) {
	var s domain.Shift
	err := row.Scan(
		&s.ID, &s.ClientID, &s.CoordinatorID, &s.CarerID,
		&s.ShiftStart, &s.ShiftEnd,
		&s.CoordinatorNotes, &s.ShiftNotes, &s.HandoverNotes, &s.ShiftNotesPDF,
		&s.IsSample, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateTx inserts a shift inside a transaction holding the client lock.
func (r *ShiftRepository) CreateTx(ctx context.Context, tx pgx.Tx, shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (id, client_id, coordinator_id, carer_id,
		                    shift_start, shift_end, coordinator_notes, is_sample)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		shift.ID, shift.ClientID, shift.CoordinatorID, shift.CarerID,
		shift.ShiftStart, shift.ShiftEnd, shift.CoordinatorNotes, shift.IsSample,
	).Scan(&shift.CreatedAt, &shift.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert shift: %w", err)
	}

	return nil
}

// GetByID retrieves a shift with its incident reports.
func (r *ShiftRepository) GetByID(ctx context.Context, shiftID uuid.UUID) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	s, err := scanShift(r.pool.QueryRow(ctx, query, shiftID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("query shift: %w", err)
	}

	incidents, err := r.ListIncidents(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	s.IncidentReports = incidents

	return s, nil
}

// ListByClient retrieves the full shift sequence of a client ascending by
// start time, ties broken by id. The incident lists are loaded in one extra
// query instead of one per shift.
func (r *ShiftRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE client_id = $1 ORDER BY shift_start, id`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()

	shifts, err := collectShifts(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachIncidents(ctx, clientID, shifts); err != nil {
		return nil, err
	}

	return shifts, nil
}

// ListByClientTx retrieves the shift sequence inside a transaction holding the
// client lock. Incident reports are not loaded; the callers only need the
// schedule for overlap and succession checks.
func (r *ShiftRepository) ListByClientTx(ctx context.Context, tx pgx.Tx, clientID uuid.UUID) ([]domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE client_id = $1 ORDER BY shift_start, id`

	rows, err := tx.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()

	return collectShifts(rows)
}

func collectShifts(rows pgx.Rows) ([]domain.Shift, error) {
	shifts := []domain.Shift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shifts = append(shifts, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shifts: %w", err)
	}
	return shifts, nil
}

func (r *ShiftRepository) attachIncidents(ctx context.Context, clientID uuid.UUID, shifts []domain.Shift) error {
	query := `
		SELECT ir.id, ir.shift_id, ir.report_text, ir.pdf_url, ir.created_at
		FROM incident_reports ir
		JOIN shifts s ON s.id = ir.shift_id
		WHERE s.client_id = $1
		ORDER BY ir.created_at, ir.id
	`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return fmt.Errorf("query incident reports: %w", err)
	}
	defer rows.Close()

	byShift := make(map[uuid.UUID][]domain.IncidentReport)
	for rows.Next() {
		var ir domain.IncidentReport
		if err := rows.Scan(&ir.ID, &ir.ShiftID, &ir.Text, &ir.PDFURL, &ir.CreatedAt); err != nil {
			return fmt.Errorf("scan incident report: %w", err)
		}
		byShift[ir.ShiftID] = append(byShift[ir.ShiftID], ir)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate incident reports: %w", err)
	}

	for i := range shifts {
		reports := byShift[shifts[i].ID]
		domain.NumberIncidentReports(reports)
		shifts[i].IncidentReports = reports
	}

	return nil
}

// UpdateTx applies a partial shift update inside a transaction holding the
// client lock, returning the updated row.
func (r *ShiftRepository) UpdateTx(ctx context.Context, tx pgx.Tx, shiftID uuid.UUID, req *domain.UpdateShiftRequest) (*domain.Shift, error) {
	query := `UPDATE shifts SET updated_at = NOW()`
	args := []interface{}{}
	argIdx := 1

	if req.CarerID != nil {
		query += fmt.Sprintf(", carer_id = $%d", argIdx)
		args = append(args, *req.CarerID)
		argIdx++
	}

	if req.ShiftStart != nil {
		query += fmt.Sprintf(", shift_start = $%d", argIdx)
		args = append(args, *req.ShiftStart)
		argIdx++
	}

	if req.ShiftEnd != nil {
		query += fmt.Sprintf(", shift_end = $%d", argIdx)
		args = append(args, *req.ShiftEnd)
		argIdx++
	}

	if req.CoordinatorNotes != nil {
		query += fmt.Sprintf(", coordinator_notes = $%d", argIdx)
		args = append(args, *req.CoordinatorNotes)
		argIdx++
	}

	query += fmt.Sprintf(" WHERE id = $%d RETURNING "+shiftColumns, argIdx)
	args = append(args, shiftID)

	s, err := scanShift(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("update shift: %w", err)
	}

	return s, nil
}

// SetShiftNotes writes or clears the shift notes text.
func (r *ShiftRepository) SetShiftNotes(ctx context.Context, shiftID uuid.UUID, text string) error {
	return r.setColumn(ctx, shiftID, "shift_notes", text)
}

// SetHandoverNotes writes or clears the handover notes text.
func (r *ShiftRepository) SetHandoverNotes(ctx context.Context, shiftID uuid.UUID, text string) error {
	return r.setColumn(ctx, shiftID, "handover_notes", text)
}

// SetShiftNotesPDF records the uploaded export URL.
func (r *ShiftRepository) SetShiftNotesPDF(ctx context.Context, shiftID uuid.UUID, url string) error {
	return r.setColumn(ctx, shiftID, "shift_notes_pdf", url)
}

func (r *ShiftRepository) setColumn(ctx context.Context, shiftID uuid.UUID, column, value string) error {
	query := fmt.Sprintf(`UPDATE shifts SET %s = $1, updated_at = NOW() WHERE id = $2`, column)

	result, err := r.pool.Exec(ctx, query, value, shiftID)
	if err != nil {
		return fmt.Errorf("update shift %s: %w", column, err)
	}
	if result.RowsAffected() == 0 {
		return ErrShiftNotFound
	}

	return nil
}

// Delete removes a shift and, via cascade, its incident reports.
func (r *ShiftRepository) Delete(ctx context.Context, shiftID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, shiftID)
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrShiftNotFound
	}

	return nil
}

// DeleteTx removes a shift inside a transaction holding the client lock, so
// the cancellation check and the delete are atomic.
func (r *ShiftRepository) DeleteTx(ctx context.Context, tx pgx.Tx, shiftID uuid.UUID) error {
	result, err := tx.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, shiftID)
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrShiftNotFound
	}

	return nil
}

// CountUpcomingForCarer counts shifts of a client still assigned to a carer
// that have not started yet. Reported back when a carer is removed from the
// care team, since removal does not unassign shifts.
func (r *ShiftRepository) CountUpcomingForCarer(ctx context.Context, clientID, carerID uuid.UUID, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM shifts
		WHERE client_id = $1 AND carer_id = $2 AND shift_start > $3
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, clientID, carerID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count upcoming shifts: %w", err)
	}

	return count, nil
}

// ListIncidents retrieves a shift's incident reports in insertion order with
// display indexes assigned.
func (r *ShiftRepository) ListIncidents(ctx context.Context, shiftID uuid.UUID) ([]domain.IncidentReport, error) {
	query := `
		SELECT id, shift_id, report_text, pdf_url, created_at
		FROM incident_reports
		WHERE shift_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, shiftID)
	if err != nil {
		return nil, fmt.Errorf("query incident reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.IncidentReport{}
	for rows.Next() {
		var ir domain.IncidentReport
		if err := rows.Scan(&ir.ID, &ir.ShiftID, &ir.Text, &ir.PDFURL, &ir.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan incident report: %w", err)
		}
		reports = append(reports, ir)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incident reports: %w", err)
	}

	domain.NumberIncidentReports(reports)

	return reports, nil
}

// CreateIncident appends an incident report to a shift.
func (r *ShiftRepository) CreateIncident(ctx context.Context, report *domain.IncidentReport) error {
	query := `
		INSERT INTO incident_reports (id, shift_id, report_text, pdf_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		report.ID, report.ShiftID, report.Text, report.PDFURL,
	).Scan(&report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert incident report: %w", err)
	}

	return nil
}

// GetIncident retrieves a single incident report scoped to its shift.
func (r *ShiftRepository) GetIncident(ctx context.Context, shiftID, incidentID uuid.UUID) (*domain.IncidentReport, error) {
	query := `
		SELECT id, shift_id, report_text, pdf_url, created_at
		FROM incident_reports
		WHERE id = $1 AND shift_id = $2
	`

	var ir domain.IncidentReport
	err := r.pool.QueryRow(ctx, query, incidentID, shiftID).Scan(
		&ir.ID, &ir.ShiftID, &ir.Text, &ir.PDFURL, &ir.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIncidentNotFound
		}
		return nil, fmt.Errorf("query incident report: %w", err)
	}

	return &ir, nil
}

// UpdateIncidentText replaces the report text of an incident.
func (r *ShiftRepository) UpdateIncidentText(ctx context.Context, shiftID, incidentID uuid.UUID, text string) error {
	query := `UPDATE incident_reports SET report_text = $1 WHERE id = $2 AND shift_id = $3`

	result, err := r.pool.Exec(ctx, query, text, incidentID, shiftID)
	if err != nil {
		return fmt.Errorf("update incident report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIncidentNotFound
	}

	return nil
}

// SetIncidentPDF records the uploaded export URL of an incident report.
func (r *ShiftRepository) SetIncidentPDF(ctx context.Context, shiftID, incidentID uuid.UUID, url string) error {
	query := `UPDATE incident_reports SET pdf_url = $1 WHERE id = $2 AND shift_id = $3`

	result, err := r.pool.Exec(ctx, query, url, incidentID, shiftID)
	if err != nil {
		return fmt.Errorf("update incident report pdf: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIncidentNotFound
	}

	return nil
}

// DeleteIncident removes an incident report. Remaining reports renumber on the
// next read.
func (r *ShiftRepository) DeleteIncident(ctx context.Context, shiftID, incidentID uuid.UUID) error {
	query := `DELETE FROM incident_reports WHERE id = $1 AND shift_id = $2`

	result, err := r.pool.Exec(ctx, query, incidentID, shiftID)
	if err != nil {
		return fmt.Errorf("delete incident report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIncidentNotFound
	}

	return nil
}
