// File: handlers/booking.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookly/models"
	bookingsvc "bookly/services/booking"
	"bookly/services/payment"
	"bookly/services/scheduling"
	"bookly/utils"
)

// BookingHandler exposes the booking workflow to the UI layer.
type BookingHandler struct {
	Workflow bookingsvc.WorkflowService
	Logger   *zap.Logger
}

// NewBookingHandler constructs the booking HTTP handler.
func NewBookingHandler(workflow bookingsvc.WorkflowService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Workflow: workflow, Logger: logger}
}

func customerID(c *gin.Context) string {
	if v, ok := c.Get("customerID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// StartSession opens a workflow session and returns the candidate slots.
func (h *BookingHandler) StartSession(c *gin.Context) {
	var input struct {
		ProviderID string `json:"providerId" binding:"required"`
		ServiceID  string `json:"serviceId" binding:"required"`
		Date       string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Workflow.StartSession(c.Request.Context(), customerID(c), input.ProviderID, input.ServiceID, input.Date)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSession returns the current workflow state and candidate list.
func (h *BookingHandler) GetSession(c *gin.Context) {
	session, err := h.Workflow.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SelectSlot records the customer's chosen slot.
func (h *BookingHandler) SelectSlot(c *gin.Context) {
	var input struct {
		SlotID string `json:"slotId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Workflow.SelectSlot(c.Request.Context(), c.Param("sessionID"), input.SlotID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Review advances past the review step, attaching optional notes.
func (h *BookingHandler) Review(c *gin.Context) {
	var input struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Workflow.ProceedToDeposit(c.Request.Context(), c.Param("sessionID"), input.Notes)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ChooseDeposit picks the deposit policy and computes the breakdown.
func (h *BookingHandler) ChooseDeposit(c *gin.Context) {
	var input struct {
		Policy      models.DepositPolicy `json:"policy" binding:"required"`
		AcceptTerms bool                 `json:"acceptTerms"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Workflow.ChooseDeposit(c.Request.Context(), c.Param("sessionID"), input.Policy, input.AcceptTerms)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Confirm attempts the reservation. A conflict returns 409 with the
// refreshed session so the client re-renders slot selection.
func (h *BookingHandler) Confirm(c *gin.Context) {
	session, err := h.Workflow.Confirm(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		if errors.Is(err, scheduling.ErrReservationConflict) && session != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "slot no longer available",
				"session": session,
			})
			return
		}
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CapturePayment captures the deposit and finalizes the reservation.
func (h *BookingHandler) CapturePayment(c *gin.Context) {
	var input struct {
		Method string `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Workflow.CapturePayment(c.Request.Context(), c.Param("sessionID"), input.Method)
	if err != nil {
		var capErr *payment.CaptureError
		if errors.As(err, &capErr) && session != nil {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":   capErr.Reason,
				"session": session,
			})
			return
		}
		if errors.Is(err, scheduling.ErrReservationConflict) && session != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "hold expired before payment completed",
				"session": session,
			})
			return
		}
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Abandon ends the session, releasing any held slot.
func (h *BookingHandler) Abandon(c *gin.Context) {
	session, err := h.Workflow.Abandon(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CancelBooking cancels a confirmed or awaiting-payment booking and
// reports refund eligibility.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	result, err := h.Workflow.CancelBooking(c.Request.Context(), customerID(c), c.Param("bookingID"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) renderError(c *gin.Context, err error) {
	var wfErr *bookingsvc.WorkflowError
	if errors.As(err, &wfErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": wfErr.Message, "code": wfErr.Code})
		return
	}

	var notFound *bookingsvc.SessionNotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}

	switch {
	case errors.Is(err, scheduling.ErrNotBookingOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, scheduling.ErrCancellationNotAllowed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, scheduling.ErrInvalidPrice), errors.Is(err, scheduling.ErrUnknownDepositPolicy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.Logger.Error("booking handler error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
