package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Janrichter12345/freetables/handlers"
	"github.com/Janrichter12345/freetables/middleware"
)

// RegisterReservationRoutes registers the diner-facing reservation endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	{
		// All reservation operations require an authenticated diner.
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.CreateReservationHandler)
		api.POST("/cancel", hb.CancelReservationHandler)
		api.POST("/status", hb.ReservationStatusesHandler)
		api.POST("/history/sync", hb.SyncHistoryHandler)
	}
}

// RegisterTwilioRoutes registers the provider-facing webhook endpoints.
// These are authenticated by the shared webhook token in the query string,
// checked inside the handlers so failures still answer politely.
func RegisterTwilioRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	twilio := r.Group("/twilio")
	{
		twilio.POST("/voice", hb.VoiceLegHandler)
		twilio.POST("/call-status", hb.CallStatusHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Free Tables"})
	})
}

// RegisterRoutes applies CORS and wires all route groups.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterReservationRoutes(r, hb)
	RegisterTwilioRoutes(r, hb)
}
