// File: freetables/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Janrichter12345/freetables/config"
	"github.com/Janrichter12345/freetables/cron"
	"github.com/Janrichter12345/freetables/database"
	reservationRepoPkg "github.com/Janrichter12345/freetables/database/repository/reservation"
	restaurantRepoPkg "github.com/Janrichter12345/freetables/database/repository/restaurant"
	tableRepoPkg "github.com/Janrichter12345/freetables/database/repository/table"
	"github.com/Janrichter12345/freetables/handlers"
	"github.com/Janrichter12345/freetables/middleware"
	"github.com/Janrichter12345/freetables/routes"
	"github.com/Janrichter12345/freetables/services/history"
	"github.com/Janrichter12345/freetables/services/reservation"
	"github.com/Janrichter12345/freetables/services/voice"
	"github.com/Janrichter12345/freetables/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitHistoryCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	tableRepo := tableRepoPkg.NewMongoTableRepo()
	reservationRepo := reservationRepoPkg.NewMongoReservationRepo()
	restaurantRepo := restaurantRepoPkg.NewCachedRestaurantRepo(
		restaurantRepoPkg.NewMongoRestaurantRepo(), utils.GetCacheClient())

	// Services.
	caller := voice.NewTwilioCaller()

	reservationService := &reservation.DefaultReservationService{
		Reservations: reservationRepo,
		Tables:       tableRepo,
		Restaurants:  restaurantRepo,
		Caller:       caller,
		Logger:       logger,
		TestToNumber: config.AppConfig.TestToNumber,
	}

	voiceEngine := &voice.DefaultEngine{
		Reservations:  reservationRepo,
		Tables:        tableRepo,
		Logger:        logger,
		PublicBaseURL: config.AppConfig.PublicBaseURL,
		WebhookToken:  config.AppConfig.TwilioWebhookToken,
	}

	reconciler := &voice.DefaultReconciler{
		Reservations: reservationRepo,
		Tables:       tableRepo,
		Logger:       logger,
	}

	historyStore := &history.RedisStore{Client: utils.GetHistoryCacheClient()}

	reservationHandler := handlers.NewReservationHandler(reservationService, logger)
	voiceHandler := handlers.NewVoiceHandler(voiceEngine, reconciler, config.AppConfig.TwilioWebhookToken)
	historyHandler := handlers.NewHistoryHandler(reservationService, historyStore, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		CreateReservationHandler:   reservationHandler.CreateReservationHandler,
		CancelReservationHandler:   reservationHandler.CancelReservationHandler,
		ReservationStatusesHandler: reservationHandler.ReservationStatusesHandler,
		SyncHistoryHandler:         historyHandler.SyncHistoryHandler,

		VoiceLegHandler:   voiceHandler.VoiceLegHandler,
		CallStatusHandler: voiceHandler.CallStatusHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background sweep for reservations whose call never reported back.
	cron.InitSweeper(reservationRepo, tableRepo)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
