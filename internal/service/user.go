package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"caresync-api/internal/auth"
	"caresync-api/internal/domain"
	"caresync-api/internal/email"
	"caresync-api/internal/export"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/repo"

	"github.com/google/uuid"
)

type UserService struct {
	userRepo   *repo.UserRepository
	clientRepo *repo.ClientRepository
	issuer     *auth.TokenIssuer
	validator  *auth.HS256Validator
	mailer     email.Mailer
	storage    export.Storage
	baseURL    string
	sessionTTL time.Duration
	log        *logger.Logger
}

func NewUserService(
	userRepo *repo.UserRepository,
	clientRepo *repo.ClientRepository,
	issuer *auth.TokenIssuer,
	validator *auth.HS256Validator,
	mailer email.Mailer,
	storage export.Storage,
	baseURL string,
	sessionTTL time.Duration,
	log *logger.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		clientRepo: clientRepo,
		issuer:     issuer,
		validator:  validator,
		mailer:     mailer,
		storage:    storage,
		baseURL:    baseURL,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// Register creates an unconfirmed account and sends the verification email.
// Email delivery is best-effort: a failed send never rolls back the account.
func (s *UserService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsConfirmed:  false,
		IsNewUser:    true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info(ctx, "user registered",
		logger.Module("user"),
		logger.Action("register"),
		zap.String("new_user_id", user.ID.String()),
	)

	token, err := s.issuer.SignConfirmation(user.ID.String())
	if err != nil {
		s.log.Error(ctx, "failed to sign confirmation token",
			logger.Module("user"),
			logger.Action("register"),
			zap.Error(err),
		)
		return user, nil
	}

	subject, body := email.VerificationEmail(s.baseURL, user.FirstName, token)
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		s.log.Error(ctx, "failed to send verification email",
			logger.Module("user"),
			logger.Action("register"),
			zap.String("new_user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	return user, nil
}

// Confirm redeems an email confirmation token. Redeeming twice is a conflict.
func (s *UserService) Confirm(ctx context.Context, token string) error {
	claims, err := s.validator.ValidatePurpose(token, auth.PurposeEmailConfirmation)
	if err != nil {
		return ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("get user: %w", err)
	}

	if user.IsConfirmed {
		return ErrAlreadyConfirmed
	}

	if err := s.userRepo.Confirm(ctx, userID); err != nil {
		return fmt.Errorf("confirm user: %w", err)
	}

	s.log.Info(ctx, "email address confirmed",
		logger.Module("user"),
		logger.Action("confirm"),
		zap.String("confirmed_user_id", userID.String()),
	)

	return nil
}

// Login verifies credentials and issues a session token. Unconfirmed accounts
// cannot log in.
func (s *UserService) Login(ctx context.Context, req *domain.LoginRequest) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			// Burn a bcrypt comparison anyway so response timing does not
			// reveal whether the address is registered.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(req.Password))
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsConfirmed {
		return "", nil, ErrAccountNotConfirmed
	}

	token, err := s.issuer.SignSession(user.ID.String(), s.sessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}

	s.log.Info(ctx, "user logged in",
		logger.Module("user"),
		logger.Action("login"),
		zap.String("login_user_id", user.ID.String()),
	)

	return token, user, nil
}

// GetMe retrieves the authenticated user's profile.
func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateMe applies a partial profile update. The isNewUser flag only moves
// from true to false; onboarding cannot be reopened.
func (s *UserService) UpdateMe(ctx context.Context, userID uuid.UUID, req *domain.UpdateUserRequest) (*domain.User, error) {
	if req.IsNewUser != nil && *req.IsNewUser {
		return nil, ErrInvalidState
	}

	user, err := s.userRepo.Update(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteAccount removes the user. Clients they coordinate cascade in the
// database, taking their care teams, shifts and incident reports with them;
// exported documents are cleaned up afterwards best-effort. Shifts where the
// user was the carer on someone else's client are not deleted: the carer
// reference is cleared and the documentation stays with the client.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	clients, err := s.clientRepo.ListForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	coordinated := make([]uuid.UUID, 0, len(clients))
	for _, c := range clients {
		if c.CoordinatorID == userID {
			coordinated = append(coordinated, c.ID)
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.log.Info(ctx, "account deleted",
		logger.Module("user"),
		logger.Action("delete_account"),
		zap.Int("coordinated_clients", len(coordinated)),
	)

	if s.storage != nil {
		for _, clientID := range coordinated {
			prefix := fmt.Sprintf("clients/%s/", clientID)
			if err := s.storage.DeleteFolder(ctx, prefix); err != nil {
				s.log.Warn(ctx, "failed to clean up exported documents",
					logger.Module("user"),
					logger.Action("delete_account"),
					zap.String("prefix", prefix),
					zap.Error(err),
				)
			}
		}
	}

	return nil
}
