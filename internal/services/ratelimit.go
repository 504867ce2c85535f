package services

import (
	"time"

	"onboarding-reminders/internal/models"
)

// ShouldSuppress reports whether a reminder to this vendor must be skipped
// because one was already sent within the cooldown window. Accounts with no
// Send Record are never suppressed.
func ShouldSuppress(acct *models.VendorAccount, cooldownDays int, now time.Time) bool {
	if acct.LastReminderSentAt == nil {
		return false
	}
	days := models.ClampRateLimitDays(cooldownDays)
	return now.Sub(*acct.LastReminderSentAt) < time.Duration(days)*24*time.Hour
}
