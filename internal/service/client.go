package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"caresync-api/internal/domain"
	"caresync-api/internal/export"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/repo"

	"github.com/google/uuid"
)

type ClientService struct {
	clientRepo *repo.ClientRepository
	storage    export.Storage
	log        *logger.Logger
}

func NewClientService(clientRepo *repo.ClientRepository, storage export.Storage, log *logger.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		storage:    storage,
		log:        log,
	}
}

// CreateClient creates a client coordinated by the caller. The coordinator is
// fixed for the client's lifetime.
func (s *ClientService) CreateClient(ctx context.Context, actorID uuid.UUID, req *domain.CreateClientRequest) (*domain.Client, error) {
	client := &domain.Client{
		ID:            uuid.New(),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		CoordinatorID: actorID,
		Carers:        []uuid.UUID{},
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.Info(ctx, "client created",
		logger.Module("client"),
		logger.Action("create"),
		zap.String("created_client_id", client.ID.String()),
	)

	return client, nil
}

// ListClients retrieves every client visible to the caller: coordinated plus
// care team memberships.
func (s *ClientService) ListClients(ctx context.Context, actorID uuid.UUID) ([]domain.Client, error) {
	clients, err := s.clientRepo.ListForUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// GetClient retrieves one client. Callers outside the coordinator/care team
// circle get not-found, never a hint that the client exists.
func (s *ClientService) GetClient(ctx context.Context, actorID, clientID uuid.UUID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	role := domain.ResolveClientRole(actorID, client)
	if role.None() {
		return nil, ErrClientNotFound
	}

	return client, nil
}

// DeleteClient removes a client with all shifts and incident reports.
// Coordinator only. Exported documents are cleaned up afterwards best-effort.
func (s *ClientService) DeleteClient(ctx context.Context, actorID, clientID uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}

	role := domain.ResolveClientRole(actorID, client)
	if role.None() {
		return ErrClientNotFound
	}
	if !role.IsCoordinator {
		return ErrUnauthorized
	}

	if err := s.clientRepo.Delete(ctx, clientID); err != nil {
		return err
	}

	s.log.Info(ctx, "client deleted",
		logger.Module("client"),
		logger.Action("delete"),
		zap.String("deleted_client_id", clientID.String()),
	)

	if s.storage != nil {
		prefix := fmt.Sprintf("clients/%s/", clientID)
		if err := s.storage.DeleteFolder(ctx, prefix); err != nil {
			s.log.Warn(ctx, "failed to clean up exported documents",
				logger.Module("client"),
				logger.Action("delete"),
				zap.String("prefix", prefix),
				zap.Error(err),
			)
		}
	}

	return nil
}
