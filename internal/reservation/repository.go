package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrReservationNotFound = errors.New("reservation not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListInRange(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	query := `
		SELECT id, user_id, full_name, start_time, created_at
		FROM reservations
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time, created_at
	`

	var reservations []Reservation
	err := r.db.SelectContext(ctx, &reservations, query, from, to)
	if err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Reservation, error) {
	query := `
		SELECT id, user_id, full_name, start_time, created_at
		FROM reservations
		WHERE id = $1
	`

	var reservation Reservation
	err := r.db.GetContext(ctx, &reservation, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	return &reservation, nil
}

func (r *repository) Create(ctx context.Context, userID int, fullName string, startTime time.Time) (*Reservation, error) {
	query := `
		INSERT INTO reservations (user_id, full_name, start_time)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, full_name, start_time, created_at
	`

	var reservation Reservation
	err := r.db.GetContext(ctx, &reservation, query, userID, fullName, startTime)
	if err != nil {
		return nil, err
	}

	return &reservation, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM reservations WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}
