package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"onboarding-reminders/internal/models"
)

// TestSend runs a manual dispatch over an explicit status list, optionally
// bypassing the rate limit.
func (h *Handler) TestSend(c *gin.Context) {
	var req struct {
		Statuses        []string `json:"statuses" binding:"required,min=1"`
		BypassRateLimit bool     `json:"bypass_rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "No statuses provided", err)
		return
	}

	statuses := make([]models.OnboardingStatus, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		status, err := models.ParseReminderStatus(raw)
		if err != nil {
			h.handleError(c, http.StatusBadRequest, fmt.Sprintf("Invalid status %q", raw), err)
			return
		}
		statuses = append(statuses, status)
	}

	sent, eligible, err := h.dispatcher.SendNow(c.Request.Context(), statuses, req.BypassRateLimit)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to send reminders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Sent %d reminders to %d eligible vendors", sent, eligible),
		"data":    gin.H{"sent": sent, "eligible": eligible},
	})
}

// SendSingleReminder sends one reminder to the account in the URL.
func (h *Handler) SendSingleReminder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid account ID", err)
		return
	}

	if err := h.dispatcher.SendSingle(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.handleError(c, http.StatusNotFound, "Account not found", err)
			return
		}
		h.handleError(c, http.StatusUnprocessableEntity, "Could not send reminder", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Reminder sent to account %d", id),
	})
}

// DebugSend sends a rendered test email for a status to an arbitrary
// address without touching any account.
func (h *Handler) DebugSend(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
		Email  string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Status and a valid email are required", err)
		return
	}

	status, err := models.ParseReminderStatus(req.Status)
	if err != nil {
		h.handleError(c, http.StatusBadRequest, fmt.Sprintf("Invalid status %q", req.Status), err)
		return
	}

	if err := h.dispatcher.SendDebug(c.Request.Context(), status, req.Email); err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to send debug email", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Debug email sent to %s", req.Email),
	})
}
