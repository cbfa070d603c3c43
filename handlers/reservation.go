package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	tableRepo "github.com/Janrichter12345/freetables/database/repository/table"
	"github.com/Janrichter12345/freetables/middleware"
	"github.com/Janrichter12345/freetables/services/reservation"
)

// ReservationHandler exposes the reservation lifecycle over HTTP.
type ReservationHandler struct {
	Service reservation.ReservationService
	Logger  *zap.Logger
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(svc reservation.ReservationService, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{Service: svc, Logger: logger}
}

// CreateReservationHandler handles POST /api/reservations.
func (h *ReservationHandler) CreateReservationHandler(c *gin.Context) {
	var input struct {
		RestaurantID string `json:"restaurant_id"`
		TableID      string `json:"table_id"`
		ReservedFor  string `json:"reserved_for"`
		Seats        int    `json:"seats"`
		EtaMinutes   int    `json:"eta_minutes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_body", "details": err.Error()})
		return
	}

	result, err := h.Service.Create(c.Request.Context(), reservation.CreateInput{
		RestaurantID: input.RestaurantID,
		TableID:      input.TableID,
		ReservedFor:  input.ReservedFor,
		Seats:        input.Seats,
		EtaMinutes:   input.EtaMinutes,
		UserID:       middleware.UserID(c),
	})
	if err != nil {
		h.writeCreateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"reservation_id": result.ReservationID,
		"expires_at":     result.ExpiresAt,
		"call_sid":       result.CallSID,
	})
}

func (h *ReservationHandler) writeCreateError(c *gin.Context, err error) {
	var validationErr reservation.ValidationError
	var activeErr reservation.ActiveReservationError
	var callErr reservation.CallPlacementError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": validationErr.Reason})
	case errors.As(err, &activeErr):
		c.JSON(http.StatusConflict, gin.H{
			"ok":                    false,
			"error":                 "active_reservation_exists",
			"active_reservation_id": activeErr.ActiveID,
		})
	case errors.Is(err, tableRepo.ErrNotAvailable):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "table_not_available"})
	case errors.Is(err, tableRepo.ErrWrongRestaurant):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "table_not_in_restaurant"})
	case errors.Is(err, reservation.ErrRestaurantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "restaurant_not_found"})
	case errors.Is(err, reservation.ErrMissingPhone):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing_restaurant_phone"})
	case errors.As(err, &callErr):
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "call_failed"})
	default:
		h.Logger.Error("reservation creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
	}
}

// CancelReservationHandler handles POST /api/reservations/cancel.
func (h *ReservationHandler) CancelReservationHandler(c *gin.Context) {
	var input struct {
		ReservationID string `json:"reservation_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ReservationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing_reservation_id"})
		return
	}

	err := h.Service.Cancel(c.Request.Context(), input.ReservationID, middleware.UserID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, reservation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not_found"})
	case errors.Is(err, reservation.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "forbidden"})
	default:
		h.Logger.Error("reservation cancellation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
	}
}

// ReservationStatusesHandler handles POST /api/reservations/status.
func (h *ReservationHandler) ReservationStatusesHandler(c *gin.Context) {
	var input struct {
		ReservationIDs []string `json:"reservation_ids"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_body"})
		return
	}

	items, err := h.Service.Statuses(c.Request.Context(), input.ReservationIDs, middleware.UserID(c))
	if err != nil {
		h.Logger.Error("status lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "db_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}
