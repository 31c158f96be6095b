package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

// GetProfile returns the signed-in staff member.
func (uc *UseCase) GetProfile(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, domain.AsStorageFailure(err)
	}
	return user, nil
}
