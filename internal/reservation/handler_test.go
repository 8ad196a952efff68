package reservation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"clubboard/internal/schedule"
)

type MockService struct{ mock.Mock }

func (m *MockService) Board(ctx context.Context, pivot time.Time, sess *Session) (*BoardView, error) {
	args := m.Called(ctx, pivot, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BoardView), args.Error(1)
}

func (m *MockService) Click(ctx context.Context, sess *Session, day time.Time, hour int) (*ClickResult, error) {
	args := m.Called(ctx, sess, day, hour)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClickResult), args.Error(1)
}

func (m *MockService) Cancel(ctx context.Context, sess *Session, reservationID int) error {
	return m.Called(ctx, sess, reservationID).Error(0)
}

func (m *MockService) AdminCancel(ctx context.Context, reservationID int) error {
	return m.Called(ctx, reservationID).Error(0)
}

func (m *MockService) ListInRange(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Reservation), args.Error(1)
}

func setupHandlerRouter(svc Service, sessionUserID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if sessionUserID != 0 {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", sessionUserID)
			c.Set("user_name", "Test User")
		})
	}

	h := NewHandler(svc)
	r.GET("/board", h.Board)
	r.POST("/board/click", h.Click)
	r.DELETE("/reservations/:reservationID", h.Cancel)
	return r
}

func TestBoardHandlerInvalidDate(t *testing.T) {
	svc := new(MockService)
	r := setupHandlerRouter(svc, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/board?date=03-06-2024", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Board")
}

func TestBoardHandlerPassesSession(t *testing.T) {
	svc := new(MockService)
	r := setupHandlerRouter(svc, 42)

	svc.On("Board", mock.Anything, mock.Anything, &Session{UserID: 42, Name: "Test User"}).
		Return(&BoardView{Capacity: 8}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/board?date=2024-06-03", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestClickHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		outcome Outcome
		status  int
	}{
		{OutcomeReserved, http.StatusCreated},
		{OutcomeAuthRequired, http.StatusUnauthorized},
		{OutcomeForbidden, http.StatusForbidden},
		{OutcomeLocked, http.StatusConflict},
		{OutcomeFull, http.StatusConflict},
		{OutcomePast, http.StatusOK},
		{OutcomeConfirmCancel, http.StatusOK},
	}

	for _, tc := range cases {
		svc := new(MockService)
		r := setupHandlerRouter(svc, 1)

		svc.On("Click", mock.Anything, mock.Anything, mock.Anything, 10).
			Return(&ClickResult{Outcome: tc.outcome, Slot: schedule.SlotView{}}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/board/click",
			strings.NewReader(`{"date":"2024-06-05","hour":10}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, tc.status, w.Code, "outcome %s", tc.outcome)
		assert.Contains(t, w.Body.String(), string(tc.outcome))
	}
}

func TestBoardHandlerDefaultPivotIsUTC(t *testing.T) {
	svc := new(MockService)
	r := setupHandlerRouter(svc, 0)

	svc.On("Board", mock.Anything, mock.MatchedBy(func(pivot time.Time) bool {
		return pivot.Location() == time.UTC
	}), (*Session)(nil)).Return(&BoardView{Capacity: 8}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestClickHandlerAcceptsHourZero(t *testing.T) {
	svc := new(MockService)
	r := setupHandlerRouter(svc, 1)

	// Hour 0 is a real slot start on a board opening at midnight; the
	// binding must not reject the zero value before HasHour gets to it.
	svc.On("Click", mock.Anything, mock.Anything, mock.Anything, 0).
		Return(nil, ErrInvalidSlot)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/board/click",
		strings.NewReader(`{"date":"2024-06-05","hour":0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestClickHandlerInvalidSlot(t *testing.T) {
	svc := new(MockService)
	r := setupHandlerRouter(svc, 1)

	svc.On("Click", mock.Anything, mock.Anything, mock.Anything, 9).
		Return(nil, ErrInvalidSlot)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/board/click",
		strings.NewReader(`{"date":"2024-06-05","hour":9}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelHandlerRequiresAuth(t *testing.T) {
	svc := new(MockService)
	r := setupHandlerRouter(svc, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/reservations/3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Cancel")
}

func TestCancelHandlerNotFound(t *testing.T) {
	svc := new(MockService)
	r := setupHandlerRouter(svc, 1)

	svc.On("Cancel", mock.Anything, mock.Anything, 3).Return(ErrReservationNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/reservations/3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelHandlerNotOwner(t *testing.T) {
	svc := new(MockService)
	r := setupHandlerRouter(svc, 1)

	svc.On("Cancel", mock.Anything, mock.Anything, 3).Return(ErrNotOwner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/reservations/3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
