// File: bookly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"

	"bookly/config"
	"bookly/cron"
	"bookly/database"
	bookingRepo "bookly/database/repository/booking"
	catalogRepo "bookly/database/repository/catalog"
	slotRepo "bookly/database/repository/slot"
	"bookly/handlers"
	"bookly/middleware"
	"bookly/routes"
	bookingsvc "bookly/services/booking"
	"bookly/services/notification"
	"bookly/services/payment"
	"bookly/services/scheduling"
	"bookly/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	slots := slotRepo.NewMongoSlotRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	catalog := catalogRepo.NewMongoCatalogRepo()

	// Services.
	notifier := notification.LogNotifier{}
	reminders := cron.NewAsynqReminderScheduler()
	paymentHandler := payment.NewStripePaymentHandler(logger)

	coordinator := &scheduling.DefaultReservationCoordinator{
		Slots:      slots,
		Bookings:   bookings,
		Notifier:   notifier,
		Reminders:  reminders,
		Policy:     scheduling.NewCancellationPolicy(time.Duration(config.AppConfig.RefundCutoffHours) * time.Hour),
		HoldWindow: time.Duration(config.AppConfig.HoldWindowMinutes) * time.Minute,
	}

	generator := &scheduling.DefaultSlotGenerator{
		Catalog: catalog,
		Slots:   slots,
	}

	workflow := &bookingsvc.DefaultBookingWorkflow{
		Sessions: &bookingsvc.RedisSessionStore{
			Client: utils.GetSessionCacheClient(),
			TTL:    time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute,
		},
		Generator:   generator,
		Coordinator: coordinator,
		Catalog:     catalog,
		Payments:    paymentHandler,
		BookingFee:  config.AppConfig.BookingFee,
	}

	bookingHandler := handlers.NewBookingHandler(workflow, logger)
	routes.RegisterRoutes(router, bookingHandler)

	// Background workers.
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go cron.StartHoldSweeper(sweepCtx, coordinator,
		time.Duration(config.AppConfig.HoldSweepSeconds)*time.Second)
	cron.InitReminderWorker(notifier)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetSessionCacheClient()},
		database.MongoClient,
	)

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

	cancelSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
