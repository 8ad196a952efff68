package schedule

import "time"

// Occupant is one entry in a slot: either a persisted reservation or a
// synthesized recurring club slot (ReservationID 0, UserID 0, IsLocked).
type Occupant struct {
	ReservationID int       `json:"reservation_id,omitempty"`
	UserID        int       `json:"user_id,omitempty"`
	FullName      string    `json:"full_name"`
	StartTime     time.Time `json:"start_time"`
	IsLocked      bool      `json:"is_locked"`
}

// SlotView is the evaluated state of one (day, hour) cell of the board.
type SlotView struct {
	Day           time.Time  `json:"day"`
	Hour          int        `json:"hour"`
	StartTime     time.Time  `json:"start_time"`
	Occupants     []Occupant `json:"occupants"`
	Count         int        `json:"count"`
	Capacity      int        `json:"capacity"`
	IsLocked      bool       `json:"is_locked"`
	MyReservation *Occupant  `json:"my_reservation,omitempty"`
}

// IsFull reports whether the slot accepts no further reservations on
// capacity grounds. Locked slots refuse reservations regardless.
func (v SlotView) IsFull() bool {
	return v.Count >= v.Capacity
}

// EvaluateSlot computes the view of the slot at (dayOffset, hour) from the
// flat merged occupant list. A slot is locked as soon as one occupant is a
// recurring club slot. MyReservation is the first unlocked occupant owned by
// currentUserID (0 for anonymous sessions).
func EvaluateSlot(w Window, occupants []Occupant, dayOffset, hour, capacity, currentUserID int) SlotView {
	slotStart := w.SlotStart(dayOffset, hour)

	view := SlotView{
		Day:       w.Days[dayOffset],
		Hour:      hour,
		StartTime: slotStart,
		Capacity:  capacity,
	}

	for _, o := range occupants {
		if !sameSlot(o.StartTime, slotStart) {
			continue
		}
		view.Occupants = append(view.Occupants, o)
		if o.IsLocked {
			view.IsLocked = true
		}
		if view.MyReservation == nil && !o.IsLocked && currentUserID != 0 && o.UserID == currentUserID {
			mine := o
			view.MyReservation = &mine
		}
	}

	view.Count = len(view.Occupants)
	return view
}

// EvaluateWindow computes every cell of the board, day-major.
func EvaluateWindow(w Window, occupants []Occupant, capacity, currentUserID int) []SlotView {
	views := make([]SlotView, 0, len(w.Days)*len(w.Hours))
	for d := range w.Days {
		for _, h := range w.Hours {
			views = append(views, EvaluateSlot(w, occupants, d, h, capacity, currentUserID))
		}
	}
	return views
}
