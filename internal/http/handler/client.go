package handler

import (
	"net/http"

	"caresync-api/internal/domain"
	"caresync-api/internal/http/httperr"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/service"

	"go.uber.org/zap"
)

type ClientHandler struct {
	service *service.ClientService
}

func NewClientHandler(service *service.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// CreateClient handles POST /v1/clients
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req domain.CreateClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return
	}

	client, err := h.service.CreateClient(ctx, actor, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "client created",
		zap.String("clientId", client.ID.String()),
	)

	writeJSON(w, http.StatusCreated, client)
}

// ListClients handles GET /v1/clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	clients, err := h.service.ListClients(ctx, actor)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": clients})
}

// GetClient handles GET /v1/clients/{clientId}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
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

	client, err := h.service.GetClient(ctx, actor, clientID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}

// DeleteClient handles DELETE /v1/clients/{clientId}
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteClient(ctx, actor, clientID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "client deleted",
		zap.String("clientId", clientID.String()),
	)

	w.WriteHeader(http.StatusNoContent)
}
