package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/repository"
)

type UseCase struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	sessionTTL time.Duration
	logger     *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, sessionTTL time.Duration, logger *zap.Logger) *UseCase {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Register stores a new user with a bcrypt hash of the password.
func (uc *UseCase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	user, err := uc.users.Create(ctx, username, string(hashed))
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("username", username))
	return user, nil
}

// Login verifies the credentials and issues a session bound to the
// username. An unknown username and a wrong password produce the same
// error.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.sessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	uc.logger.Info("user logged in", zap.String("username", username))
	return session, nil
}

// Logout destroys the session. Unknown session ids are ignored so the
// operation stays idempotent.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	return nil
}

// Resolve maps a session id to the owning user. It is the single
// authentication step the middleware runs ahead of protected handlers.
func (uc *UseCase) Resolve(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthorized
	}

	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.users.GetByUsername(ctx, session.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// SessionTTL reports the configured session lifetime, used for the
// cookie Max-Age.
func (uc *UseCase) SessionTTL() time.Duration {
	return uc.sessionTTL
}
