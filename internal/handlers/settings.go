package handlers

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/gin-gonic/gin"

	"onboarding-reminders/internal/models"
)

// GetSettings returns the current reminder settings, defaults included.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.settings.ReminderSettings(c.Request.Context())
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": settings})
}

// UpdateSettings validates and replaces the reminder settings. The rate
// limit is clamped rather than rejected so the stored value is always in
// range.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req models.ReminderSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid settings payload", err)
		return
	}

	if err := validateSettings(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := c.Request.Context()

	// The manual-trigger stamp is not client-editable; carry it over.
	current, err := h.settings.ReminderSettings(ctx)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	req.LastManualSendAt = current.LastManualSendAt
	req.RateLimitDays = models.ClampRateLimitDays(req.RateLimitDays)

	if err := h.settings.SaveReminderSettings(ctx, req); err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": req, "message": "Settings saved"})
}

func validateSettings(s *models.ReminderSettings) error {
	if s.FromEmail != "" {
		if _, err := mail.ParseAddress(s.FromEmail); err != nil {
			return fmt.Errorf("invalid from email %q", s.FromEmail)
		}
	}
	if s.AdminEmail != "" {
		if _, err := mail.ParseAddress(s.AdminEmail); err != nil {
			return fmt.Errorf("invalid admin email %q", s.AdminEmail)
		}
	}
	if s.IncludeAdminCopy && s.AdminEmail == "" {
		return fmt.Errorf("admin email is required when admin copy is enabled")
	}

	for status := range s.Notifications {
		if !status.ReminderEligible() {
			return fmt.Errorf("unknown status %q in notifications", status)
		}
	}
	for status := range s.Subjects {
		if !status.ReminderEligible() {
			return fmt.Errorf("unknown status %q in subjects", status)
		}
	}
	for status := range s.Templates {
		if !status.ReminderEligible() {
			return fmt.Errorf("unknown status %q in templates", status)
		}
	}
	for status := range s.ButtonText {
		if !status.ReminderEligible() {
			return fmt.Errorf("unknown status %q in button text", status)
		}
	}
	return nil
}
