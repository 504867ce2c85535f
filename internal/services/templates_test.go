package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding-reminders/internal/models"
)

func testAccount() *models.VendorAccount {
	return &models.VendorAccount{
		ID:          7,
		Username:    "craftshop",
		DisplayName: "Craft Shop",
		Email:       "owner@craftshop.test",
		Role:        models.RoleSeller,
	}
}

func testSettings() models.ReminderSettings {
	s := models.DefaultReminderSettings("Acme Market", "admin@acme.test")
	s.Templates[models.StatusPending] = "<p>Hi %user_name%, finish setup on %site_name%.</p><p>Go to %payout_url% or mail %admin_email%.</p>"
	return s
}

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	r := NewTemplateRenderer("Acme Market", "https://acme.test")
	subject, body := r.Render(testAccount(), models.StatusPending, testSettings())

	assert.Equal(t, "Reminder: Complete your Stripe onboarding", subject)
	assert.Contains(t, body, "Craft Shop")
	assert.Contains(t, body, "Acme Market")
	assert.Contains(t, body, "https://acme.test/dashboard/payout-settings/")
	assert.Contains(t, body, "admin@acme.test")

	// no raw placeholder tokens survive rendering
	for _, token := range []string{PlaceholderUserName, PlaceholderSiteName, PlaceholderPayoutURL, PlaceholderAdminEmail} {
		assert.NotContains(t, body, token)
	}
}

func TestRenderFallsBackToUsername(t *testing.T) {
	r := NewTemplateRenderer("Acme Market", "https://acme.test")
	acct := testAccount()
	acct.DisplayName = ""

	_, body := r.Render(acct, models.StatusNotSetup, testSettings())
	assert.Contains(t, body, "Hello craftshop,")
}

func TestPayoutURL(t *testing.T) {
	r := NewTemplateRenderer("Acme Market", "https://acme.test/")

	s := models.ReminderSettings{PayoutSettingsURL: "/dashboard/payout-settings/"}
	assert.Equal(t, "https://acme.test/dashboard/payout-settings/", r.PayoutURL(s))

	s.PayoutSettingsURL = "dashboard/payouts"
	assert.Equal(t, "https://acme.test/dashboard/payouts", r.PayoutURL(s))

	s.PayoutSettingsURL = "https://external.test/payouts"
	assert.Equal(t, "https://external.test/payouts", r.PayoutURL(s))

	s.PayoutSettingsURL = ""
	assert.Equal(t, "https://acme.test/dashboard/payout-settings/", r.PayoutURL(s))
}

func TestRenderDebugAddsTestMarkers(t *testing.T) {
	r := NewTemplateRenderer("Acme Market", "https://acme.test")
	subject, body := r.RenderDebug("Test Vendor", models.StatusNotSetup, testSettings())

	assert.True(t, strings.HasPrefix(subject, "[TEST] "))
	assert.Contains(t, body, "TEST EMAIL")
	assert.Contains(t, body, models.StatusNotSetup.DisplayName())

	// banner lands inside the body, after the opening tag
	bodyTag := strings.Index(body, "<body")
	banner := strings.Index(body, "TEST EMAIL")
	require.Greater(t, banner, bodyTag)
}

func TestAdminCopy(t *testing.T) {
	r := NewTemplateRenderer("Acme Market", "https://acme.test")
	acct := testAccount()
	subject, body := r.Render(acct, models.StatusPending, testSettings())

	sentAt := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	adminSubject, adminBody := r.AdminCopy(acct, models.StatusPending, subject, body, sentAt)

	assert.Equal(t, "[Copy] "+subject+" - Sent to owner@craftshop.test", adminSubject)
	assert.Contains(t, adminBody, "Admin Copy of Email Sent to User")
	assert.Contains(t, adminBody, "Craft Shop")
	assert.Contains(t, adminBody, "owner@craftshop.test")
	assert.Contains(t, adminBody, "2026-09-01 10:30:00")
	assert.Contains(t, adminBody, "<p>Hi Craft Shop, finish setup on Acme Market.</p>", "original content preserved")
}

func TestInsertAfterBodyTag(t *testing.T) {
	doc := `<html><body style="margin:0;"><p>content</p></body></html>`
	out := insertAfterBodyTag(doc, "<b>X</b>")
	assert.Contains(t, out, `<body style="margin:0;">`+"\n"+"<b>X</b>")

	// documents without a body tag get the fragment prepended
	out = insertAfterBodyTag("<p>bare</p>", "<b>X</b>")
	assert.True(t, strings.HasPrefix(out, "<b>X</b>"))
}
