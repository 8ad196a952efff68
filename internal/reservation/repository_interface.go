package reservation

import (
	"context"
	"time"
)

type Repository interface {
	ListInRange(ctx context.Context, from, to time.Time) ([]Reservation, error)
	GetByID(ctx context.Context, id int) (*Reservation, error)
	Create(ctx context.Context, userID int, fullName string, startTime time.Time) (*Reservation, error)
	Delete(ctx context.Context, id int) error
}
