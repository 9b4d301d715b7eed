package handler

import (
	"net/http"

	"caresync-api/internal/domain"
	"caresync-api/internal/http/httperr"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/service"

	"go.uber.org/zap"
)

type ShiftHandler struct {
	service *service.ShiftService
}

func NewShiftHandler(service *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{service: service}
}

// ListShifts handles GET /v1/clients/{clientId}/shifts
func (h *ShiftHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	clientID, ok := uuidParam(w, r, "clientId")
	if !ok {
		return
	}

	resp, err := h.service.ListShifts(ctx, actor, clientID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateShift handles POST /v1/clients/{clientId}/shifts
func (h *ShiftHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	clientID, ok := uuidParam(w, r, "clientId")
	if !ok {
		return
	}

	var req domain.CreateShiftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	view, err := h.service.CreateShift(ctx, actor, clientID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "shift created",
		zap.String("clientId", clientID.String()),
		zap.String("shiftId", view.Shift.ID.String()),
	)

	writeJSON(w, http.StatusCreated, view)
}

// GetShift handles GET /v1/clients/{clientId}/shifts/{shiftId}
func (h *ShiftHandler) GetShift(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.service.GetShift(ctx, actor, shiftID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// UpdateShift handles PATCH /v1/clients/{clientId}/shifts/{shiftId}
func (h *ShiftHandler) UpdateShift(w http.ResponseWriter, r *http.Request) {
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

	var req domain.UpdateShiftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	view, err := h.service.UpdateShift(ctx, actor, shiftID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "shift updated",
		zap.String("shiftId", shiftID.String()),
	)

	writeJSON(w, http.StatusOK, view)
}

// CancelShift handles DELETE /v1/clients/{clientId}/shifts/{shiftId}
func (h *ShiftHandler) CancelShift(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.CancelShift(ctx, actor, shiftID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "shift cancelled",
		zap.String("shiftId", shiftID.String()),
	)

	w.WriteHeader(http.StatusNoContent)
}
