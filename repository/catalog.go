package repository

import (
	"context"

	"github.com/fastygo/salon/domain"
)

type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)
}
