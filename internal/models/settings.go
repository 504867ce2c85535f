package models

import (
	"time"

	"gorm.io/datatypes"
)

// SettingKeyReminders is the row key under which reminder settings are stored.
const SettingKeyReminders = "reminder_settings"

// Rate limit bounds for reminder emails, in days.
const (
	DefaultRateLimitDays = 30
	MaxRateLimitDays     = 90
)

// Setting is a generic key/value settings row. Values are stored as JSONB so
// structured settings survive round-trips without schema changes.
type Setting struct {
	Key       string         `gorm:"primaryKey;size:64" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for the Setting model
func (Setting) TableName() string {
	return "setting"
}

// ReminderSettings holds all admin-editable configuration for reminder
// emails. Per-status maps are keyed by the reminder-eligible statuses.
type ReminderSettings struct {
	FromName          string                      `json:"from_name"`
	FromEmail         string                      `json:"from_email"`
	PayoutSettingsURL string                      `json:"payout_settings_url"`
	RateLimitDays     int                         `json:"rate_limit_days"`
	IncludeAdminCopy  bool                        `json:"include_admin_copy"`
	AdminEmail        string                      `json:"admin_email"`
	Notifications     map[OnboardingStatus]bool   `json:"notifications"`
	Subjects          map[OnboardingStatus]string `json:"subjects"`
	Templates         map[OnboardingStatus]string `json:"templates"`
	ButtonText        map[OnboardingStatus]string `json:"button_text"`
	CommonFooter      string                      `json:"common_footer"`
	LastManualSendAt  *time.Time                  `json:"last_manual_send_at,omitempty"`
}

// DefaultReminderSettings returns the settings used before an admin saves
// anything, seeded with the site name and admin email.
func DefaultReminderSettings(siteName, adminEmail string) ReminderSettings {
	return ReminderSettings{
		FromName:          siteName,
		FromEmail:         adminEmail,
		PayoutSettingsURL: "/dashboard/payout-settings/",
		RateLimitDays:     DefaultRateLimitDays,
		IncludeAdminCopy:  false,
		AdminEmail:        adminEmail,
		Notifications: map[OnboardingStatus]bool{
			StatusActiveNoShipping: true,
			StatusPending:          true,
			StatusNotSetup:         true,
		},
		Subjects: map[OnboardingStatus]string{
			StatusActiveNoShipping: "Action required: Complete your payout information",
			StatusPending:          "Reminder: Complete your Stripe onboarding",
			StatusNotSetup:         "Set up your Stripe account to receive payments",
		},
		Templates: map[OnboardingStatus]string{
			StatusActiveNoShipping: "<p>Your Stripe account is active, but you need to provide your shipping information to start receiving payouts.</p>\n" +
				"<p>Without this information, you may experience delays in receiving your funds.</p>\n" +
				"<p><strong>What's missing:</strong> Shipping address and contact information</p>",
			StatusPending: "<p>Your Stripe account setup is incomplete. You need to finish setting up your account to start receiving payments.</p>\n" +
				"<p>At this point, you cannot receive any payments until you complete the required verification steps.</p>\n" +
				"<p><strong>Required action:</strong> Complete the Stripe onboarding process by providing the requested information.</p>",
			StatusNotSetup: "<p>You have not set up your Stripe account yet. Setting up your account is necessary to receive payments through our platform.</p>\n" +
				"<p>Until you complete this setup, you won't be able to receive any payments for your products or services.</p>\n" +
				"<p><strong>Required action:</strong> Start the Stripe account creation and verification process.</p>",
		},
		ButtonText: map[OnboardingStatus]string{
			StatusActiveNoShipping: "Complete Shipping Information",
			StatusPending:          "Complete Your Stripe Account",
			StatusNotSetup:         "Set Up Your Stripe Account",
		},
		CommonFooter: "<p>If you have any questions or need assistance with your account setup, please contact our support team.</p>\n" +
			"<p>Thank you,<br>%site_name% Team</p>",
	}
}

// EffectiveRateLimitDays clamps the configured rate limit to the allowed
// window. Values below 1 fall back to the default, values above the maximum
// are capped.
func (s ReminderSettings) EffectiveRateLimitDays() int {
	return ClampRateLimitDays(s.RateLimitDays)
}

// ClampRateLimitDays normalizes a raw rate limit value into [1, 90] with
// out-of-range low values falling back to the 30-day default.
func ClampRateLimitDays(days int) int {
	if days < 1 {
		return DefaultRateLimitDays
	}
	if days > MaxRateLimitDays {
		return MaxRateLimitDays
	}
	return days
}

// EnabledStatuses returns the reminder-eligible statuses whose notification
// flag is on, in scheduled processing order.
func (s ReminderSettings) EnabledStatuses() []OnboardingStatus {
	var enabled []OnboardingStatus
	for _, status := range ReminderStatuses() {
		if s.Notifications[status] {
			enabled = append(enabled, status)
		}
	}
	return enabled
}

// NotificationsEnabled reports whether reminders are turned on for a status.
func (s ReminderSettings) NotificationsEnabled(status OnboardingStatus) bool {
	return s.Notifications[status]
}

// SubjectFor returns the configured subject for a status, falling back to
// the shipped default when the admin left it blank.
func (s ReminderSettings) SubjectFor(status OnboardingStatus) string {
	if subj := s.Subjects[status]; subj != "" {
		return subj
	}
	return DefaultReminderSettings("", "").Subjects[status]
}

// TemplateFor returns the configured body template for a status, falling
// back to the shipped default when the admin left it blank.
func (s ReminderSettings) TemplateFor(status OnboardingStatus) string {
	if tpl := s.Templates[status]; tpl != "" {
		return tpl
	}
	return DefaultReminderSettings("", "").Templates[status]
}

// ButtonTextFor returns the call-to-action label for a status, falling back
// to the shipped default when the admin left it blank.
func (s ReminderSettings) ButtonTextFor(status OnboardingStatus) string {
	if txt := s.ButtonText[status]; txt != "" {
		return txt
	}
	return DefaultReminderSettings("", "").ButtonText[status]
}
