package handler

import (
	"net/http"

	"caresync-api/internal/domain"
	"caresync-api/internal/http/httperr"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/service"

	"go.uber.org/zap"
)

// DocumentHandler serves shift documentation: shift notes, handover notes,
// incident reports and their PDF exports.
type DocumentHandler struct {
	service *service.DocumentService
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// WriteShiftNotes handles PUT /v1/shifts/{shiftId}/notes
func (h *DocumentHandler) WriteShiftNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	shiftID, ok := uuidParam(w, r, "shiftId")
	if !ok {
		return
	}

	var req domain.WriteNotesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	shift, err := h.service.WriteShiftNotes(ctx, actor, shiftID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "shift notes written",
		zap.String("shiftId", shiftID.String()),
	)

	writeJSON(w, http.StatusOK, shift)
}

// ClearShiftNotes handles DELETE /v1/shifts/{shiftId}/notes
func (h *DocumentHandler) ClearShiftNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	shiftID, ok := uuidParam(w, r, "shiftId")
	if !ok {
		return
	}

	if err := h.service.ClearShiftNotes(ctx, actor, shiftID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "shift notes cleared",
		zap.String("shiftId", shiftID.String()),
	)

	w.WriteHeader(http.StatusNoContent)
}

// WriteHandover handles PUT /v1/shifts/{shiftId}/handover
func (h *DocumentHandler) WriteHandover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	shiftID, ok := uuidParam(w, r, "shiftId")
	if !ok {
		return
	}

	var req domain.WriteNotesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	shift, err := h.service.WriteHandover(ctx, actor, shiftID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "handover notes written",
		zap.String("shiftId", shiftID.String()),
	)

	writeJSON(w, http.StatusOK, shift)
}

// ClearHandover handles DELETE /v1/shifts/{shiftId}/handover
func (h *DocumentHandler) ClearHandover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	shiftID, ok := uuidParam(w, r, "shiftId")
	if !ok {
		return
	}

	if err := h.service.ClearHandover(ctx, actor, shiftID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "handover notes cleared",
		zap.String("shiftId", shiftID.String()),
	)

	w.WriteHeader(http.StatusNoContent)
}

// AddIncident handles POST /v1/shifts/{shiftId}/incidents
func (h *DocumentHandler) AddIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	shiftID, ok := uuidParam(w, r, "shiftId")
	if !ok {
		return
	}

	var req domain.IncidentReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	reports, err := h.service.AddIncident(ctx, actor, shiftID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "incident report added",
		zap.String("shiftId", shiftID.String()),
		zap.Int("count", len(reports)),
	)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": reports})
}

// UpdateIncident handles PATCH /v1/shifts/{shiftId}/incidents/{incidentId}
func (h *DocumentHandler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	shiftID, ok := uuidParam(w, r, "shiftId")
	if !ok {
		return
	}
	incidentID, ok := uuidParam(w, r, "incidentId")
	if !ok {
		return
	}

	var req domain.IncidentReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	reports, err := h.service.UpdateIncident(ctx, actor, shiftID, incidentID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "incident report updated",
		zap.String("shiftId", shiftID.String()),
		zap.String("incidentId", incidentID.String()),
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": reports})
}

// DeleteIncident handles DELETE /v1/shifts/{shiftId}/incidents/{incidentId}
func (h *DocumentHandler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	shiftID, ok := uuidParam(w, r, "shiftId")
	if !ok {
		return
	}
	incidentID, ok := uuidParam(w, r, "incidentId")
	if !ok {
		return
	}

	reports, err := h.service.DeleteIncident(ctx, actor, shiftID, incidentID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "incident report deleted",
		zap.String("shiftId", shiftID.String()),
		zap.String("incidentId", incidentID.String()),
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": reports})
}

// ExportShiftNotes handles POST /v1/shifts/{shiftId}/notes/export
func (h *DocumentHandler) ExportShiftNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	shiftID, ok := uuidParam(w, r, "shiftId")
	if !ok {
		return
	}

	url, err := h.service.ExportShiftNotes(ctx, actor, shiftID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "shift notes exported",
		zap.String("shiftId", shiftID.String()),
	)

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// ExportIncident handles POST /v1/shifts/{shiftId}/incidents/{incidentId}/export
func (h *DocumentHandler) ExportIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	shiftID, ok := uuidParam(w, r, "shiftId")
	if !ok {
		return
	}
	incidentID, ok := uuidParam(w, r, "incidentId")
	if !ok {
		return
	}

	url, err := h.service.ExportIncident(ctx, actor, shiftID, incidentID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "incident report exported",
		zap.String("shiftId", shiftID.String()),
		zap.String("incidentId", incidentID.String()),
	)

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
