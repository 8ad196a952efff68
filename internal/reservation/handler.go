package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"clubboard/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func sessionFrom(c *gin.Context) *Session {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return nil
	}
	name, _ := auth.GetUserName(c)
	return &Session{UserID: userID, Name: name}
}

// Board godoc
// @Summary      Booking board for one week
// @Description  Resolves the week containing the given date (default today) and returns every evaluated slot.
// @Tags         board
// @Produce      json
// @Param        date  query     string  false  "Pivot date (YYYY-MM-DD)"
// @Success      200   {object}  BoardView
// @Failure      400   {object}  api.ErrorResponse
// @Router       /board [get]
func (h *Handler) Board(c *gin.Context) {
	// Explicit dates parse as UTC, so the default pivot lives there too;
	// otherwise the same instant can land in a different cell depending on
	// whether ?date= was passed.
	pivot := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		pivot = parsed
	}

	board, err := h.service.Board(c.Request.Context(), pivot, sessionFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load board"})
		return
	}

	c.JSON(http.StatusOK, board)
}

// Click godoc
// @Summary      Click a slot
// @Description  Runs the slot interaction rules and either reserves, asks for cancel confirmation, or reports why nothing happened.
// @Tags         board
// @Accept       json
// @Produce      json
// @Param        request  body      ClickRequest  true  "Target slot"
// @Success      200      {object}  ClickResult
// @Success      201      {object}  ClickResult
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  ClickResult
// @Failure      403      {object}  ClickResult
// @Failure      409      {object}  ClickResult
// @Router       /board/click [post]
func (h *Handler) Click(c *gin.Context) {
	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	result, err := h.service.Click(c.Request.Context(), sessionFrom(c), day, req.Hour)
	if err != nil {
		if errors.Is(err, ErrInvalidSlot) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Not a valid slot"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process click"})
		return
	}

	c.JSON(clickStatus(result.Outcome), result)
}

func clickStatus(outcome Outcome) int {
	switch outcome {
	case OutcomeReserved:
		return http.StatusCreated
	case OutcomeAuthRequired:
		return http.StatusUnauthorized
	case OutcomeForbidden:
		return http.StatusForbidden
	case OutcomeLocked, OutcomeFull:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

// Cancel godoc
// @Summary      Cancel a reservation
// @Description  Confirmed cancel of the caller's own reservation (admins may cancel any).
// @Tags         board
// @Security     BearerAuth
// @Produce      json
// @Param        reservationID  path      int  true  "Reservation ID"
// @Success      200            {object}  api.MessageResponse
// @Failure      403            {object}  api.ErrorResponse
// @Failure      404            {object}  api.ErrorResponse
// @Router       /reservations/{reservationID} [delete]
func (h *Handler) Cancel(c *gin.Context) {
	sess := sessionFrom(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), sess, reservationID); err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Can only cancel own reservations"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel reservation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled"})
}

// AdminList godoc
// @Summary      List reservations in a time range
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  true  "Range start (YYYY-MM-DD)"
// @Param        to    query     string  true  "Range end, exclusive (YYYY-MM-DD)"
// @Success      200   {array}   Reservation
// @Failure      400   {object}  api.ErrorResponse
// @Router       /admin/reservations [get]
func (h *Handler) AdminList(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}

	reservations, err := h.service.ListInRange(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reservations"})
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// AdminCancel godoc
// @Summary      Cancel any reservation
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        reservationID  path      int  true  "Reservation ID"
// @Success      200            {object}  api.MessageResponse
// @Failure      404            {object}  api.ErrorResponse
// @Router       /admin/reservations/{reservationID} [delete]
func (h *Handler) AdminCancel(c *gin.Context) {
	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	if err := h.service.AdminCancel(c.Request.Context(), reservationID); err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel reservation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled"})
}
