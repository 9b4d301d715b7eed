package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"caresync-api/internal/auth"
	"caresync-api/internal/http/httperr"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON parses the request body into dst and reports malformed payloads
// with a 400. Returns false when the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	ctx := r.Context()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeMissingParameter, "request body is required")
			return false
		}
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidFormat, "invalid JSON body")
		return false
	}
	return true
}

// actorID extracts the authenticated user's ID from the session claims.
// Returns uuid.Nil and writes a 401 when the request is unauthenticated.
func actorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ctx := r.Context()

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// uuidParam parses a chi URL parameter as a UUID and writes a 400 when it is
// not one.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleServiceError(w http.ResponseWriter, ctx context.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		log.Warn(ctx, "unauthorized action", zap.Error(err))
		httperr.Forbidden403(w, ctx, httperr.ErrCodeForbidden, "insufficient permissions for this action")
	case errors.Is(err, service.ErrUserNotFound):
		log.Debug(ctx, "user not found", zap.Error(err))
		httperr.NotFound404(w, ctx, "user not found")
	case errors.Is(err, service.ErrClientNotFound):
		log.Debug(ctx, "client not found", zap.Error(err))
		httperr.NotFound404(w, ctx, "client not found")
	case errors.Is(err, service.ErrShiftNotFound):
		log.Debug(ctx, "shift not found", zap.Error(err))
		httperr.NotFound404(w, ctx, "shift not found")
	case errors.Is(err, service.ErrIncidentNotFound):
		log.Debug(ctx, "incident report not found", zap.Error(err))
		httperr.NotFound404(w, ctx, "incident report not found")
	case errors.Is(err, service.ErrEmailTaken):
		log.Warn(ctx, "email already registered", zap.Error(err))
		httperr.Conflict409(w, ctx, "an account with this email already exists")
	case errors.Is(err, service.ErrAlreadyConfirmed):
		log.Warn(ctx, "email already confirmed", zap.Error(err))
		httperr.Conflict409(w, ctx, "email address already confirmed")
	case errors.Is(err, service.ErrAlreadyMember):
		log.Warn(ctx, "already a care team member", zap.Error(err))
		httperr.Conflict409(w, ctx, "user is already a member of this care team")
	case errors.Is(err, service.ErrNoChanges):
		log.Warn(ctx, "update carries no changes", zap.Error(err))
		httperr.Conflict409(w, ctx, "update carries no changes")
	case errors.Is(err, service.ErrShiftOverlap):
		log.Warn(ctx, "shift overlap", zap.Error(err))
		httperr.UnprocessableEntity422(w, ctx, err.Error())
	case errors.Is(err, service.ErrShiftInPast):
		log.Warn(ctx, "shift ends in the past", zap.Error(err))
		httperr.UnprocessableEntity422(w, ctx, "shift must not end in the past")
	case errors.Is(err, service.ErrCarerNotMember):
		log.Warn(ctx, "carer not on care team", zap.Error(err))
		httperr.UnprocessableEntity422(w, ctx, "assigned carer is not a member of the care team")
	case errors.Is(err, service.ErrNothingToExport):
		log.Warn(ctx, "nothing to export", zap.Error(err))
		httperr.UnprocessableEntity422(w, ctx, "there is no document text to export")
	case errors.Is(err, service.ErrInvalidState):
		log.Warn(ctx, "operation not allowed in current state", zap.Error(err))
		httperr.UnprocessableEntity422(w, ctx, "operation not allowed in the current state")
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Warn(ctx, "invalid credentials")
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "invalid email or password")
	case errors.Is(err, service.ErrAccountNotConfirmed):
		log.Warn(ctx, "account not confirmed")
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "email address not confirmed")
	case errors.Is(err, service.ErrInvalidToken):
		log.Warn(ctx, "invalid purpose token", zap.Error(err))
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "invalid or expired token")
	case errors.Is(err, service.ErrCollaborator):
		log.Error(ctx, "collaborator failure", zap.Error(err))
		httperr.BadGateway502(w, ctx, "an external service failed, please retry")
	default:
		log.Error(ctx, "unhandled internal server error", zap.Error(err), zap.String("error_details", err.Error()))
		httperr.InternalError500(w, ctx, "an internal error occurred")
	}
}
