package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	// Reservation endpoints.
	CreateReservationHandler   gin.HandlerFunc
	CancelReservationHandler   gin.HandlerFunc
	ReservationStatusesHandler gin.HandlerFunc
	SyncHistoryHandler         gin.HandlerFunc

	// Telephony provider endpoints.
	VoiceLegHandler   gin.HandlerFunc
	CallStatusHandler gin.HandlerFunc
}
