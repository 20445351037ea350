package handlers

import (
	"errors"
	"net/http"
	"time"

	"taxly/config"
	"taxly/models"
	"taxly/services/flow"
	"taxly/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// waitTimeout bounds the long-poll wait for verification.
const waitTimeout = 25 * time.Second

// FlowHandler exposes the registration wizard over HTTP.
type FlowHandler struct {
	Flow     flow.FlowService
	Payments payment.Service
	Cooldown time.Duration
}

// NewFlowHandler wires the flow endpoints.
func NewFlowHandler(flowSvc flow.FlowService, payments payment.Service) *FlowHandler {
	return &FlowHandler{Flow: flowSvc, Payments: payments, Cooldown: flow.DefaultCooldown}
}

// snapshotView strips credentials from a snapshot before it leaves the server
// and attaches the derived cooldown.
func (h *FlowHandler) snapshotView(snap *models.FlowSnapshot) gin.H {
	view := *snap
	view.Data.Password = ""
	view.Data.ConfirmPassword = ""
	return gin.H{
		"flow":            view,
		"cooldownSeconds": int(snap.CooldownRemaining(time.Now(), h.Cooldown).Round(time.Second).Seconds()),
	}
}

// respondFlowError maps controller errors onto HTTP statuses.
func respondFlowError(c *gin.Context, err error) {
	logger := getLogger(c)

	var invalid *flow.InvalidTransitionError
	var cooldown *flow.CooldownActiveError
	switch {
	case errors.Is(err, flow.ErrFlowNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrInvalidEmail),
		errors.Is(err, flow.ErrMissingFields),
		errors.Is(err, flow.ErrPasswordTooShort),
		errors.Is(err, flow.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrOperationInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrPaymentNotConfirmed):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrNotAwaitingVerification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, flow.ErrInconsistentState):
		logger.Error("inconsistent registration state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusConflict, gin.H{"error": invalid.Error()})
	case errors.As(err, &cooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message":        cooldown.Error(),
			"retryInSeconds": int(cooldown.Remaining.Round(time.Second).Seconds()),
		})
	default:
		logger.Error("flow operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// StartFlowHandler creates or resumes a flow, consuming any pending
// verification signal.
func (h *FlowHandler) StartFlowHandler(c *gin.Context) {
	var req struct {
		FlowID string `json:"flowId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	snap, err := h.Flow.Initialize(c.Request.Context(), req.FlowID)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	// Resuming onto the verification step retriggers the one-shot
	// automatic send; the persisted sent flag keeps it idempotent.
	if snap.CurrentStep == models.StepEmailVerification {
		if _, err := h.Flow.RequestVerificationEmail(c.Request.Context(), snap.FlowID, false); err != nil {
			getLogger(c).Warn("automatic verification send failed", zap.Error(err))
		}
		if snap, err = h.Flow.Get(c.Request.Context(), snap.FlowID); err != nil {
			respondFlowError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, h.snapshotView(snap))
}

// SubmitEmailHandler handles the email-input step.
func (h *FlowHandler) SubmitEmailHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	snap, err := h.Flow.SubmitEmail(c.Request.Context(), flowID, req.Email)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	// First entry onto the verification step fires the automatic send.
	if _, err := h.Flow.RequestVerificationEmail(c.Request.Context(), flowID, false); err != nil {
		getLogger(c).Warn("automatic verification send failed", zap.Error(err))
	}
	if snap, err = h.Flow.Get(c.Request.Context(), flowID); err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.snapshotView(snap))
}

// ResendVerificationHandler handles a manual "resend email" click.
func (h *FlowHandler) ResendVerificationHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	cooldown, err := h.Flow.RequestVerificationEmail(c.Request.Context(), flowID, true)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Verification email sent",
		"cooldownSeconds": int(cooldown.Round(time.Second).Seconds()),
	})
}

// FlowStatusHandler reports the current snapshot, folding in a one-shot
// verification check so plain polling clients advance too.
func (h *FlowHandler) FlowStatusHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	snap, err := h.Flow.PollVerificationStatus(c.Request.Context(), flowID)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshotView(snap))
}

// WaitVerificationHandler long-polls until the address is verified, the
// timeout passes, or the client goes away. The watcher's timers are torn
// down on every exit path.
func (h *FlowHandler) WaitVerificationHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	watcher, err := h.Flow.WatchVerification(c.Request.Context(), flowID)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	defer watcher.Stop()

	select {
	case snap := <-watcher.Result():
		c.JSON(http.StatusOK, h.snapshotView(snap))
	case <-time.After(waitTimeout):
		snap, err := h.Flow.Get(c.Request.Context(), flowID)
		if err != nil {
			respondFlowError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.snapshotView(snap))
	case <-c.Request.Context().Done():
	}
}

// SubmitPersonalInfoHandler handles the personal-info step.
func (h *FlowHandler) SubmitPersonalInfoHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	var req models.PersonalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	snap, err := h.Flow.SubmitPersonalInfo(c.Request.Context(), flowID, req)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshotView(snap))
}

// SelectPlanHandler records the plan choice and branches.
func (h *FlowHandler) SelectPlanHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	var req struct {
		PlanID string `json:"planId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	snap, err := h.Flow.SelectPlan(c.Request.Context(), flowID, req.PlanID)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshotView(snap))
}

// PlanBackHandler returns from payment to plan-selection.
func (h *FlowHandler) PlanBackHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	snap, err := h.Flow.GoBackToPlans(c.Request.Context(), flowID)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshotView(snap))
}

// CreatePaymentIntentHandler creates the Stripe intent for the selected plan.
func (h *FlowHandler) CreatePaymentIntentHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	snap, err := h.Flow.Get(c.Request.Context(), flowID)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	if snap.CurrentStep != models.StepPayment || snap.SelectedPlan == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "flow is not on the payment step"})
		return
	}

	intent, err := h.Payments.CreateIntent(c.Request.Context(), snap.UserID, *snap.SelectedPlan)
	if err != nil {
		getLogger(c).Error("failed to create payment intent", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not start payment. Please try again."})
		return
	}
	c.JSON(http.StatusOK, intent)
}

// PaymentSuccessHandler confirms the intent and advances to success.
func (h *FlowHandler) PaymentSuccessHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	var req struct {
		IntentID string `json:"intentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	snap, err := h.Flow.HandlePaymentSuccess(c.Request.Context(), flowID, req.IntentID)
	if err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.snapshotView(snap))
}

// FinalizeHandler fires the success side effects, clears persisted state,
// and hands the user off to the dashboard.
func (h *FlowHandler) FinalizeHandler(c *gin.Context) {
	flowID := c.Param("flowID")

	if err := h.Flow.FinalizeAndExit(c.Request.Context(), flowID); err != nil {
		respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboardUrl": config.AppConfig.DashboardURL})
}
