package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RecurringSlot is a weekly club training group permanently occupying one
// slot. Recurring slots are configuration, never persisted: they are
// synthesized fresh for every window and always lock their slot.
type RecurringSlot struct {
	DayOffset int    `json:"day_offset"` // 0 = Monday .. 6 = Sunday
	Hour      int    `json:"hour"`
	Label     string `json:"label"`
}

func (s RecurringSlot) Validate(openingHour, closingHour int) error {
	if s.DayOffset < 0 || s.DayOffset > 6 {
		return fmt.Errorf("recurring slot %q: day_offset %d out of range 0..6", s.Label, s.DayOffset)
	}
	if s.Hour < openingHour || s.Hour+SlotHours > closingHour {
		return fmt.Errorf("recurring slot %q: hour %d outside opening hours %d-%d", s.Label, s.Hour, openingHour, closingHour)
	}
	if (s.Hour-openingHour)%SlotHours != 0 {
		return fmt.Errorf("recurring slot %q: hour %d not aligned on the %dh grid", s.Label, s.Hour, SlotHours)
	}
	if s.Label == "" {
		return fmt.Errorf("recurring slot at day %d hour %d: empty label", s.DayOffset, s.Hour)
	}
	return nil
}

// DefaultRecurringSlots is the club's weekly training plan, used when no
// configuration file is provided.
func DefaultRecurringSlots() []RecurringSlot {
	return []RecurringSlot{
		{DayOffset: 0, Hour: 18, Label: "JACQUES LUCAS"},
		{DayOffset: 1, Hour: 18, Label: "ECOLE D'ATHLETISME"},
		{DayOffset: 2, Hour: 18, Label: "GROUPE DEMI-FOND"},
		{DayOffset: 3, Hour: 18, Label: "JACQUES LUCAS"},
		{DayOffset: 4, Hour: 18, Label: "GROUPE SPRINT"},
		{DayOffset: 5, Hour: 10, Label: "GROUPE COMPETITION"},
	}
}

// LoadRecurringSlots reads the recurring training groups from a JSON file.
// An empty path returns the defaults.
func LoadRecurringSlots(path string, openingHour, closingHour int) ([]RecurringSlot, error) {
	if path == "" {
		return DefaultRecurringSlots(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recurring slots file: %w", err)
	}

	var slots []RecurringSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("failed to parse recurring slots file: %w", err)
	}

	for _, s := range slots {
		if err := s.Validate(openingHour, closingHour); err != nil {
			return nil, err
		}
	}

	return slots, nil
}

// SynthesizeOccupants expands the recurring slots into locked occupants of
// the given window. Entries that fall outside the window's hour grid are
// skipped.
func SynthesizeOccupants(w Window, recurring []RecurringSlot) []Occupant {
	var occupants []Occupant
	for _, s := range recurring {
		if s.DayOffset < 0 || s.DayOffset > 6 || !w.HasHour(s.Hour) {
			continue
		}
		occupants = append(occupants, Occupant{
			FullName:  s.Label,
			StartTime: w.SlotStart(s.DayOffset, s.Hour),
			IsLocked:  true,
		})
	}
	return occupants
}

// sameSlot reports whether t falls on the same calendar day and hour as the
// slot starting at slotStart, comparing in the slot's location.
func sameSlot(t, slotStart time.Time) bool {
	lt := t.In(slotStart.Location())
	return lt.Year() == slotStart.Year() &&
		lt.Month() == slotStart.Month() &&
		lt.Day() == slotStart.Day() &&
		lt.Hour() == slotStart.Hour()
}
