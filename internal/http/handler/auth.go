package handler

import (
	"net/http"

	"caresync-api/internal/domain"
	"caresync-api/internal/http/httperr"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service *service.UserService
}

func NewAuthHandler(service *service.UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req domain.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	user, err := h.service.Register(ctx, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "user registered",
		zap.String("userId", user.ID.String()),
	)

	writeJSON(w, http.StatusCreated, user)
}

// Confirm handles POST /v1/auth/confirm
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req domain.ConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	if err := h.service.Confirm(ctx, req.Token); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "email confirmed")

	writeJSON(w, http.StatusOK, map[string]bool{"confirmed": true})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	token, user, err := h.service.Login(ctx, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "user logged in",
		zap.String("userId", user.ID.String()),
	)

	writeJSON(w, http.StatusOK, domain.LoginResponse{Token: token, User: user})
}
