package schedule

import "time"

// SlotHours is the length of every bookable slot.
const SlotHours = 2

// DefaultCapacity is the maximum number of reservations an unlocked slot
// accepts.
const DefaultCapacity = 8

// Window is the 7-day range of dates rendered on the booking board,
// always starting on a Monday.
type Window struct {
	StartDate time.Time    `json:"start_date"`
	Days      [7]time.Time `json:"days"`
	Hours     []int        `json:"hours"`
}

// ResolveWindow converts any pivot date into the week window containing it.
// StartDate is the most recent Monday at or before the pivot, at midnight in
// the pivot's location. Hours are the slot-start hours from openingHour up
// to (but excluding) closingHour, in two-hour steps.
func ResolveWindow(pivot time.Time, openingHour, closingHour int) Window {
	day := dateOf(pivot)
	// Monday = 0 .. Sunday = 6
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)

	var days [7]time.Time
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}

	var hours []int
	for h := openingHour; h+SlotHours <= closingHour; h += SlotHours {
		hours = append(hours, h)
	}

	return Window{StartDate: start, Days: days, Hours: hours}
}

// Next resolves the window one week later.
func (w Window) Next() Window {
	return ResolveWindow(w.StartDate.AddDate(0, 0, 7), w.openingHour(), w.closingHour())
}

// Previous resolves the window one week earlier.
func (w Window) Previous() Window {
	return ResolveWindow(w.StartDate.AddDate(0, 0, -7), w.openingHour(), w.closingHour())
}

// End is the exclusive upper bound of the window's date range.
func (w Window) End() time.Time {
	return w.StartDate.AddDate(0, 0, 7)
}

// Contains reports whether t falls inside [StartDate, StartDate+7d).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.StartDate) && t.Before(w.End())
}

// SlotStart returns the start instant of the slot at (dayOffset, hour).
func (w Window) SlotStart(dayOffset, hour int) time.Time {
	day := w.Days[dayOffset]
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}

// HasHour reports whether hour is one of the window's slot-start hours.
func (w Window) HasHour(hour int) bool {
	for _, h := range w.Hours {
		if h == hour {
			return true
		}
	}
	return false
}

func (w Window) openingHour() int {
	if len(w.Hours) == 0 {
		return 0
	}
	return w.Hours[0]
}

func (w Window) closingHour() int {
	if len(w.Hours) == 0 {
		return 0
	}
	return w.Hours[len(w.Hours)-1] + SlotHours
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
