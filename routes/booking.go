package routes

import (
	"github.com/gin-gonic/gin"

	"bookly/handlers"
	"bookly/middleware"
)

// RegisterBookingRoutes registers all endpoints for the booking workflow.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	booking := r.Group("/api/booking")
	booking.Use(middleware.CustomerAuthMiddleware())
	{
		booking.POST("/session", h.StartSession)
		booking.GET("/session/:sessionID", h.GetSession)
		booking.PUT("/session/:sessionID/slot", h.SelectSlot)
		booking.PUT("/session/:sessionID/review", h.Review)
		booking.PUT("/session/:sessionID/deposit", h.ChooseDeposit)
		booking.POST("/session/:sessionID/confirm", h.Confirm)
		booking.POST("/session/:sessionID/payment", h.CapturePayment)
		booking.POST("/session/:sessionID/abandon", h.Abandon)
		booking.POST("/:bookingID/cancel", h.CancelBooking)
	}
}
