package handler

import (
	"net/http"

	"caresync-api/internal/domain"
	"caresync-api/internal/http/httperr"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/service"

	"go.uber.org/zap"
)

type CareTeamHandler struct {
	service *service.CareTeamService
}

func NewCareTeamHandler(service *service.CareTeamService) *CareTeamHandler {
	return &CareTeamHandler{service: service}
}

// InviteCarer handles POST /v1/clients/{clientId}/carers/invitations
func (h *CareTeamHandler) InviteCarer(w http.ResponseWriter, r *http.Request) {
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

	var req domain.InviteCarerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	if err := h.service.InviteCarer(ctx, actor, clientID, &req); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "carer invited",
		zap.String("clientId", clientID.String()),
	)

	writeJSON(w, http.StatusAccepted, map[string]bool{"invited": true})
}

// RedeemInvitation handles POST /v1/invitations/redeem
func (h *CareTeamHandler) RedeemInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req domain.RedeemInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	client, err := h.service.RedeemInvitation(ctx, actor, req.Token)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "invitation redeemed",
		zap.String("clientId", client.ID.String()),
	)

	writeJSON(w, http.StatusOK, client)
}

// SelfAssign handles POST /v1/clients/{clientId}/carers/self
func (h *CareTeamHandler) SelfAssign(w http.ResponseWriter, r *http.Request) {
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

	client, err := h.service.SelfAssign(ctx, actor, clientID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "coordinator self-assigned as carer",
		zap.String("clientId", clientID.String()),
	)

	writeJSON(w, http.StatusOK, client)
}

// RemoveCarer handles DELETE /v1/clients/{clientId}/carers/{carerId}
func (h *CareTeamHandler) RemoveCarer(w http.ResponseWriter, r *http.Request) {
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
	carerID, ok := uuidParam(w, r, "carerId")
	if !ok {
		return
	}

	resp, err := h.service.RemoveCarer(ctx, actor, clientID, carerID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "carer removed",
		zap.String("clientId", clientID.String()),
		zap.String("carerId", carerID.String()),
		zap.Int("upcomingShiftsStillAssigned", resp.UpcomingShiftsStillAssigned),
	)

	writeJSON(w, http.StatusOK, resp)
}
