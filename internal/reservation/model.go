package reservation

import (
	"time"

	"clubboard/internal/schedule"
)

// Reservation is a member's persisted claim on one open slot. Rows are only
// ever inserted and deleted, never updated.
type Reservation struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Occupant converts the row into a board occupant. Persisted reservations
// are never locked.
func (r Reservation) Occupant() schedule.Occupant {
	return schedule.Occupant{
		ReservationID: r.ID,
		UserID:        r.UserID,
		FullName:      r.FullName,
		StartTime:     r.StartTime,
		IsLocked:      false,
	}
}

type ClickRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
	// No required binding: hour 0 is a valid slot start when the board
	// opens at midnight. Click validates it against the hour grid.
	Hour int `json:"hour"`
}

// BoardView is the fully evaluated 7-day board.
type BoardView struct {
	StartDate time.Time           `json:"start_date"`
	Days      []time.Time         `json:"days"`
	Hours     []int               `json:"hours"`
	Capacity  int                 `json:"capacity"`
	Cells     []schedule.SlotView `json:"cells"`
}

// Outcome of one slot click, per the interaction rules: locked beats
// everything, then authentication, role, past-slot suppression, own
// reservation, capacity, and finally the insert.
type Outcome string

const (
	OutcomeLocked        Outcome = "locked"
	OutcomeAuthRequired  Outcome = "auth_required"
	OutcomeForbidden     Outcome = "forbidden"
	OutcomePast          Outcome = "past"
	OutcomeConfirmCancel Outcome = "confirm_cancel"
	OutcomeFull          Outcome = "full"
	OutcomeReserved      Outcome = "reserved"
)

type ClickResult struct {
	Outcome Outcome `json:"outcome"`
	// The freshly created reservation for OutcomeReserved, or the caller's
	// existing one for OutcomeConfirmCancel.
	Reservation *Reservation      `json:"reservation,omitempty"`
	Slot        schedule.SlotView `json:"slot"`
}
