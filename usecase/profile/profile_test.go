package profile

import (
	"context"
	"testing"

	"github.com/fastygo/salon/domain"
)

type fakeUsers struct {
	users map[string]*domain.User
}

func (u *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := u.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (u *fakeUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	uc := New(&fakeUsers{users: map[string]*domain.User{
		"u-1": {ID: "u-1", Name: "Front Desk", Role: domain.RoleStaff},
	}}, nil)

	t.Run("known user", func(t *testing.T) {
		user, err := uc.GetProfile(context.Background(), domain.Caller{UserID: "u-1", Role: domain.RoleStaff})
		if err != nil || user.Name != "Front Desk" {
			t.Fatalf("expected profile, got %+v, %v", user, err)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		if _, err := uc.GetProfile(context.Background(), domain.Caller{}); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
			t.Fatalf("expected UNAUTHORIZED, got %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if _, err := uc.GetProfile(context.Background(), domain.Caller{UserID: "u-9"}); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})
}
