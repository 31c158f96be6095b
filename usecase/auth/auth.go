package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/pkg/clock"
	"github.com/fastygo/salon/pkg/token"
	"github.com/fastygo/salon/repository"
)

// Result is returned by Login and Refresh.
type Result struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   *domain.Session `json:"session"`
	User      *domain.User    `json:"user,omitempty"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *token.Issuer
	ttl      time.Duration
	clock    clock.Clock
	logger   *zap.Logger
}

func New(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *token.Issuer,
	ttl time.Duration,
	clk clock.Clock,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		clock:    clk,
		logger:   logger,
	}
}

// Login verifies staff credentials and opens a session.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.AsStorageFailure(err)
	}
	if !user.IsActive() || user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Info("login rejected", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.clock.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.AsStorageFailure(err)
	}

	result, err := uc.issue(session)
	if err != nil {
		return nil, err
	}
	result.User = user
	uc.logger.Info("staff signed in", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return result, nil
}

// Refresh extends the session behind a still valid token and issues a new token.
func (uc *UseCase) Refresh(ctx context.Context, rawToken string) (*Result, error) {
	session, err := uc.sessionFor(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, session.ID, int(uc.ttl.Seconds())); err != nil {
		return nil, domain.AsStorageFailure(err)
	}
	session.ExpiresAt = uc.clock.Now().Add(uc.ttl)
	return uc.issue(session)
}

// Logout revokes the session.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrUnauthorized
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return domain.AsStorageFailure(err)
	}
	return nil
}

// Authenticate resolves a bearer token to the caller and its session id.
func (uc *UseCase) Authenticate(ctx context.Context, rawToken string) (domain.Caller, string, error) {
	session, err := uc.sessionFor(ctx, rawToken)
	if err != nil {
		return domain.Caller{}, "", err
	}
	return domain.Caller{UserID: session.UserID, Role: session.Role}, session.ID, nil
}

func (uc *UseCase) sessionFor(ctx context.Context, rawToken string) (*domain.Session, error) {
	if rawToken == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := uc.tokens.Parse(rawToken)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, domain.ErrUnauthorized.Message, err)
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.AsStorageFailure(err)
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	if session.IsExpired(uc.clock.Now()) {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func (uc *UseCase) issue(session *domain.Session) (*Result, error) {
	signed, err := uc.tokens.Issue(session.UserID, session.Role, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to issue token", err)
	}
	return &Result{Token: signed, ExpiresAt: session.ExpiresAt, Session: session}, nil
}
