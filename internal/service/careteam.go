package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"caresync-api/internal/auth"
	"caresync-api/internal/domain"
	"caresync-api/internal/email"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/repo"

	"github.com/google/uuid"
)

type CareTeamService struct {
	clientRepo *repo.ClientRepository
	userRepo   *repo.UserRepository
	shiftRepo  *repo.ShiftRepository
	issuer     *auth.TokenIssuer
	validator  *auth.HS256Validator
	mailer     email.Mailer
	baseURL    string
	log        *logger.Logger
}

func NewCareTeamService(
	clientRepo *repo.ClientRepository,
	userRepo *repo.UserRepository,
	shiftRepo *repo.ShiftRepository,
	issuer *auth.TokenIssuer,
	validator *auth.HS256Validator,
	mailer email.Mailer,
	baseURL string,
	log *logger.Logger,
) *CareTeamService {
	return &CareTeamService{
		clientRepo: clientRepo,
		userRepo:   userRepo,
		shiftRepo:  shiftRepo,
		issuer:     issuer,
		validator:  validator,
		mailer:     mailer,
		baseURL:    baseURL,
		log:        log,
	}
}

// coordinatorOnly loads the client and verifies the caller coordinates it.
// Outsiders get not-found, carers get unauthorized.
func (s *CareTeamService) coordinatorOnly(ctx context.Context, actorID, clientID uuid.UUID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
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

	return client, nil
}

// InviteCarer emails a care team invitation to an already-registered user.
// Coordinator only. The invitation binds the client and the invited address;
// membership changes only when the invitee redeems it.
func (s *CareTeamService) InviteCarer(ctx context.Context, actorID, clientID uuid.UUID, req *domain.InviteCarerRequest) error {
	client, err := s.coordinatorOnly(ctx, actorID, clientID)
	if err != nil {
		return err
	}

	invitee, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get invitee: %w", err)
	}

	if client.HasCarer(invitee.ID) {
		return ErrAlreadyMember
	}

	coordinator, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("get coordinator: %w", err)
	}

	token, err := s.issuer.SignInvitation(clientID.String(), invitee.Email)
	if err != nil {
		return fmt.Errorf("sign invitation: %w", err)
	}

	clientName := strings.TrimSpace(client.FirstName + " " + client.LastName)
	subject, body := email.InvitationEmail(s.baseURL, clientName, coordinator.FullName(), token)
	if err := s.mailer.Send(ctx, invitee.Email, subject, body); err != nil {
		s.log.Error(ctx, "failed to send invitation email",
			logger.Module("careteam"),
			logger.Action("invite"),
			zap.String("invited_client_id", clientID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: send invitation email", ErrCollaborator)
	}

	s.log.Info(ctx, "care team invitation sent",
		logger.Module("careteam"),
		logger.Action("invite"),
		zap.String("invited_client_id", clientID.String()),
	)

	return nil
}

// RedeemInvitation joins the caller to a care team using an emailed token.
// The token only works for the account holding the invited address, and only
// once: a second redemption is a conflict.
func (s *CareTeamService) RedeemInvitation(ctx context.Context, actorID uuid.UUID, token string) (*domain.Client, error) {
	claims, err := s.validator.ValidatePurpose(token, auth.PurposeCareTeamInvitation)
	if err != nil {
		return nil, ErrInvalidToken
	}

	clientID, err := uuid.Parse(claims.ClientID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !strings.EqualFold(actor.Email, claims.Email) {
		return nil, ErrUnauthorized
	}

	if _, err := s.clientRepo.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	added, err := s.clientRepo.AddCarer(ctx, clientID, actorID)
	if err != nil {
		return nil, fmt.Errorf("add carer: %w", err)
	}
	if !added {
		return nil, ErrAlreadyMember
	}

	s.log.Info(ctx, "care team invitation redeemed",
		logger.Module("careteam"),
		logger.Action("redeem"),
		zap.String("joined_client_id", clientID.String()),
	)

	return s.clientRepo.GetByID(ctx, clientID)
}

// SelfAssign adds the coordinator to their own client's care team, so they
// can take shifts themselves. Idempotent membership is a conflict like any
// other duplicate join.
func (s *CareTeamService) SelfAssign(ctx context.Context, actorID, clientID uuid.UUID) (*domain.Client, error) {
	if _, err := s.coordinatorOnly(ctx, actorID, clientID); err != nil {
		return nil, err
	}

	added, err := s.clientRepo.AddCarer(ctx, clientID, actorID)
	if err != nil {
		return nil, fmt.Errorf("add carer: %w", err)
	}
	if !added {
		return nil, ErrAlreadyMember
	}

	s.log.Info(ctx, "coordinator self-assigned as carer",
		logger.Module("careteam"),
		logger.Action("self_assign"),
		zap.String("assigned_client_id", clientID.String()),
	)

	return s.clientRepo.GetByID(ctx, clientID)
}

// RemoveCarer removes a user from the care team. The coordinator may remove
// anyone; a carer may remove themself. Removal is membership-only: shifts
// already assigned to the carer stay assigned, and the response reports how
// many of those have not started yet.
func (s *CareTeamService) RemoveCarer(ctx context.Context, actorID, clientID, carerID uuid.UUID) (*domain.RemoveCarerResponse, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	role := domain.ResolveClientRole(actorID, client)
	if role.None() {
		return nil, ErrClientNotFound
	}
	if !role.IsCoordinator && actorID != carerID {
		return nil, ErrUnauthorized
	}

	removed, err := s.clientRepo.RemoveCarer(ctx, clientID, carerID)
	if err != nil {
		return nil, fmt.Errorf("remove carer: %w", err)
	}
	if !removed {
		return nil, ErrUserNotFound
	}

	upcoming, err := s.shiftRepo.CountUpcomingForCarer(ctx, clientID, carerID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("count upcoming shifts: %w", err)
	}

	s.log.Info(ctx, "carer removed from care team",
		logger.Module("careteam"),
		logger.Action("remove"),
		zap.String("affected_client_id", clientID.String()),
		zap.Int("upcoming_shifts_still_assigned", upcoming),
	)

	return &domain.RemoveCarerResponse{
		ClientID:                    clientID,
		CarerID:                     carerID,
		UpcomingShiftsStillAssigned: upcoming,
	}, nil
}
