package reservation

import (
	"context"
	"errors"
	"time"

	"clubboard/internal/auth"
	"clubboard/internal/feed"
	"clubboard/internal/logger"
	"clubboard/internal/metrics"
	"clubboard/internal/schedule"
	"clubboard/internal/user"
)

var (
	ErrInvalidSlot = errors.New("not a valid slot of the board")
	ErrNotOwner    = errors.New("can only cancel own reservations")
)

// Session identifies the authenticated caller. A nil *Session is an
// anonymous visitor. The role is deliberately not part of the session: it is
// looked up fresh on every write so revocations take effect immediately, and
// a failed lookup denies instead of failing open.
type Session struct {
	UserID int
	Name   string
}

// Mailer sends reservation lifecycle notifications.
type Mailer interface {
	SendReservationConfirmation(ctx context.Context, to, name string, slotStart time.Time) error
	SendReservationCancelled(ctx context.Context, to, name string, slotStart time.Time) error
}

// Config carries the board parameters and the recurring club slots.
type Config struct {
	OpeningHour int
	ClosingHour int
	Capacity    int
	Recurring   []schedule.RecurringSlot
}

type Service interface {
	Board(ctx context.Context, pivot time.Time, sess *Session) (*BoardView, error)
	Click(ctx context.Context, sess *Session, day time.Time, hour int) (*ClickResult, error)
	Cancel(ctx context.Context, sess *Session, reservationID int) error
	AdminCancel(ctx context.Context, reservationID int) error
	ListInRange(ctx context.Context, from, to time.Time) ([]Reservation, error)
}

type service struct {
	cfg       Config
	repo      Repository
	userRepo  user.Repository
	publisher feed.Publisher
	mailer    Mailer

	now func() time.Time
}

func NewService(cfg Config, repo Repository, userRepo user.Repository, publisher feed.Publisher, mailer Mailer) Service {
	return &service{
		cfg:       cfg,
		repo:      repo,
		userRepo:  userRepo,
		publisher: publisher,
		mailer:    mailer,
		now:       time.Now,
	}
}

// occupants returns the window's persisted reservations merged with the
// synthesized recurring club slots.
func (s *service) occupants(ctx context.Context, w schedule.Window) ([]schedule.Occupant, error) {
	reservations, err := s.repo.ListInRange(ctx, w.StartDate, w.End())
	if err != nil {
		return nil, err
	}

	occupants := schedule.SynthesizeOccupants(w, s.cfg.Recurring)
	for _, r := range reservations {
		occupants = append(occupants, r.Occupant())
	}

	return occupants, nil
}

func (s *service) Board(ctx context.Context, pivot time.Time, sess *Session) (*BoardView, error) {
	w := schedule.ResolveWindow(pivot, s.cfg.OpeningHour, s.cfg.ClosingHour)

	occupants, err := s.occupants(ctx, w)
	if err != nil {
		// Fail open for the availability display: the recurring club slots
		// are still shown, fetched reservations are not.
		logger.Errorf("Window fetch failed, showing empty week: %v", err)
		occupants = schedule.SynthesizeOccupants(w, s.cfg.Recurring)
	}

	currentUserID := 0
	if sess != nil {
		currentUserID = sess.UserID
	}

	return &BoardView{
		StartDate: w.StartDate,
		Days:      w.Days[:],
		Hours:     w.Hours,
		Capacity:  s.cfg.Capacity,
		Cells:     schedule.EvaluateWindow(w, occupants, s.cfg.Capacity, currentUserID),
	}, nil
}

func (s *service) Click(ctx context.Context, sess *Session, day time.Time, hour int) (*ClickResult, error) {
	w := schedule.ResolveWindow(day, s.cfg.OpeningHour, s.cfg.ClosingHour)
	if !w.HasHour(hour) {
		return nil, ErrInvalidSlot
	}

	dayOffset := dayOffsetIn(w, day)
	if dayOffset < 0 {
		return nil, ErrInvalidSlot
	}

	currentUserID := 0
	if sess != nil {
		currentUserID = sess.UserID
	}

	// Unlike the board display, a click needs the real occupancy: a failed
	// fetch here aborts instead of failing open into a bogus write.
	occupants, err := s.occupants(ctx, w)
	if err != nil {
		return nil, err
	}

	view := schedule.EvaluateSlot(w, occupants, dayOffset, hour, s.cfg.Capacity, currentUserID)
	result := &ClickResult{Slot: view}

	outcome, err := s.resolveClick(ctx, sess, view, result)
	if err != nil {
		return nil, err
	}

	result.Outcome = outcome
	metrics.RecordSlotClick(string(outcome))
	return result, nil
}

func (s *service) resolveClick(ctx context.Context, sess *Session, view schedule.SlotView, result *ClickResult) (Outcome, error) {
	if view.IsLocked {
		return OutcomeLocked, nil
	}

	if sess == nil {
		return OutcomeAuthRequired, nil
	}

	u, err := s.userRepo.FindByID(ctx, sess.UserID)
	if err != nil {
		// A failed role lookup denies access rather than guessing.
		return "", err
	}
	if !auth.IsEligibleRole(u.Role) {
		return OutcomeForbidden, nil
	}

	if s.isPastDay(view.StartTime) {
		return OutcomePast, nil
	}

	if view.MyReservation != nil {
		existing, err := s.repo.GetByID(ctx, view.MyReservation.ReservationID)
		if err != nil {
			return "", err
		}
		result.Reservation = existing
		return OutcomeConfirmCancel, nil
	}

	if view.IsFull() {
		return OutcomeFull, nil
	}

	created, err := s.repo.Create(ctx, sess.UserID, u.Name, view.StartTime)
	if err != nil {
		return "", err
	}
	result.Reservation = created

	metrics.RecordReservationCreated()
	if err := s.publisher.Publish(ctx, feed.KindInsert); err != nil {
		logger.Errorf("Failed to publish insert event: %v", err)
	}
	if s.mailer != nil {
		_ = s.mailer.SendReservationConfirmation(ctx, u.Email, u.Name, view.StartTime)
	}

	return OutcomeReserved, nil
}

func (s *service) Cancel(ctx context.Context, sess *Session, reservationID int) error {
	if sess == nil {
		return ErrNotOwner
	}

	existing, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}

	u, err := s.userRepo.FindByID(ctx, sess.UserID)
	if err != nil {
		return err
	}

	if existing.UserID != sess.UserID && u.Role != auth.RoleAdmin {
		return ErrNotOwner
	}

	return s.delete(ctx, existing)
}

func (s *service) AdminCancel(ctx context.Context, reservationID int) error {
	existing, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}

	return s.delete(ctx, existing)
}

func (s *service) delete(ctx context.Context, existing *Reservation) error {
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return err
	}

	metrics.RecordReservationCancelled()
	if err := s.publisher.Publish(ctx, feed.KindDelete); err != nil {
		logger.Errorf("Failed to publish delete event: %v", err)
	}

	if s.mailer != nil {
		if owner, err := s.userRepo.FindByID(ctx, existing.UserID); err == nil {
			_ = s.mailer.SendReservationCancelled(ctx, owner.Email, owner.Name, existing.StartTime)
		}
	}

	return nil
}

func (s *service) ListInRange(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	return s.repo.ListInRange(ctx, from, to)
}

// isPastDay reports whether the slot's calendar day is strictly before
// today. Slots of the current day stay clickable even once their start time
// has passed.
func (s *service) isPastDay(slotStart time.Time) bool {
	now := s.now().In(slotStart.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, slotStart.Location())
	slotDay := time.Date(slotStart.Year(), slotStart.Month(), slotStart.Day(), 0, 0, 0, 0, slotStart.Location())
	return slotDay.Before(today)
}

func dayOffsetIn(w schedule.Window, day time.Time) int {
	for i, d := range w.Days {
		if d.Year() == day.Year() && d.YearDay() == day.YearDay() {
			return i
		}
	}
	return -1
}
