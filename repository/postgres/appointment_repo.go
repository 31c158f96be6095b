package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/repository"
)

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository returns a Postgres-backed implementation of AppointmentRepository.
func NewAppointmentRepository(pool *pgxpool.Pool) repository.AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const appointmentColumns = `
	a.id, a.client_name, a.client_email, a.client_phone, a.service_id, COALESCE(s.name, ''),
	a.employee_id, a.start_time, a.status, a.created_at, a.updated_at
`

func (r *appointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `
	SELECT ` + appointmentColumns + `
	FROM appointments a
	LEFT JOIN services s ON s.id = a.service_id
	WHERE a.id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanAppointment(row)
}

func (r *appointmentRepository) List(ctx context.Context, filter repository.AppointmentFilter) ([]domain.Appointment, error) {
	query := `
	SELECT ` + appointmentColumns + `
	FROM appointments a
	LEFT JOIN services s ON s.id = a.service_id
	WHERE ($1 = '' OR a.status = $1)
	ORDER BY a.start_time ASC, a.id ASC
	LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, string(filter.Status), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := make([]domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *appt)
	}
	return appts, rows.Err()
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	if appt == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO appointments (client_name, client_email, client_phone, service_id, employee_id, start_time, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		appt.ClientName,
		appt.ClientEmail,
		appt.ClientPhone,
		appt.ServiceID,
		nullInt64(appt.EmployeeID),
		appt.StartTime,
		string(appt.Status),
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
		if constraint, ok := foreignKeyViolation(err); ok {
			if strings.Contains(constraint, "employee") {
				return nil, domain.ErrEmployeeNotFound
			}
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}

	return appt, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, requested domain.Status, guard repository.TransitionGuard) (*domain.Appointment, domain.Status, error) {
	if guard == nil {
		guard = domain.CanTransition
	}

	var (
		updated  *domain.Appointment
		previous domain.Status
	)

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const lockQuery = `SELECT status FROM appointments WHERE id = $1 FOR UPDATE`
		var current string
		if err := tx.QueryRow(ctx, lockQuery, id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrAppointmentNotFound
			}
			return err
		}

		previous = domain.Status(current)
		if !guard(previous, requested) {
			return domain.NewError(domain.ErrCodeInvalidTransition,
				fmt.Sprintf("cannot change status from %s to %s", previous, requested))
		}

		const updateQuery = `
		UPDATE appointments
		SET status = $2,
			updated_at = NOW()
		WHERE id = $1
		`
		if _, err := tx.Exec(ctx, updateQuery, id, string(requested)); err != nil {
			return err
		}

		query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		LEFT JOIN services s ON s.id = a.service_id
		WHERE a.id = $1
		`
		appt, err := scanAppointment(tx.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}
		updated = appt
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return updated, previous, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM appointments WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

func scanAppointment(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Appointment, error) {
	var appt domain.Appointment
	var (
		employeeID *int64
		status     string
	)

	if err := row.Scan(
		&appt.ID,
		&appt.ClientName,
		&appt.ClientEmail,
		&appt.ClientPhone,
		&appt.ServiceID,
		&appt.ServiceName,
		&employeeID,
		&appt.StartTime,
		&status,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}

	appt.EmployeeID = employeeID
	appt.Status = domain.Status(status)
	return &appt, nil
}
