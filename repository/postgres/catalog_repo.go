package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/repository"
)

type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository exposes read access to services and employees.
func NewCatalogRepository(pool *pgxpool.Pool) repository.CatalogRepository {
	return &catalogRepository{pool: pool}
}

func (r *catalogRepository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	const query = `
		SELECT id, name, duration_minutes, price_cents
		FROM services
		WHERE id = $1
	`
	var svc domain.Service
	if err := r.pool.QueryRow(ctx, query, id).Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.PriceCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (r *catalogRepository) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	const query = `
		SELECT id, name, COALESCE(email, '')
		FROM employees
		WHERE id = $1
	`
	var emp domain.Employee
	if err := r.pool.QueryRow(ctx, query, id).Scan(&emp.ID, &emp.Name, &emp.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}
