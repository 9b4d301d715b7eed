package handler

import (
	"net/http"

	"caresync-api/internal/domain"
	"caresync-api/internal/http/httperr"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/service"

	"go.uber.org/zap"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GetMe handles GET /v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetMe(ctx, userID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	user, err := h.service.UpdateMe(ctx, userID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "profile updated",
		zap.String("userId", userID.String()),
	)

	writeJSON(w, http.StatusOK, user)
}

// DeleteMe handles DELETE /v1/users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(ctx, userID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "account deleted",
		zap.String("userId", userID.String()),
	)

	w.WriteHeader(http.StatusNoContent)
}
