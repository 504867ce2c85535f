package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"onboarding-reminders/internal/models"
)

// Supported placeholders in admin-edited template content.
const (
	PlaceholderUserName   = "%user_name%"
	PlaceholderSiteName   = "%site_name%"
	PlaceholderPayoutURL  = "%payout_url%"
	PlaceholderAdminEmail = "%admin_email%"
)

// emailLayout is the fixed shell around the per-status body. Styles are
// inline because email clients strip <style> blocks.
const emailLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body style="font-family: Arial, Helvetica, sans-serif; color: #333333; margin: 0; padding: 0; background-color: #f5f5f5;">
<div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; padding: 20px;">
<div style="text-align: center; padding-bottom: 20px; border-bottom: 1px solid #eeeeee;">
<h1 style="color: #32373c; font-size: 24px; margin: 0;">%s</h1>
</div>
<div style="padding: 20px 0;">
<p>Hello %s,</p>
%s
<p style="text-align: center; margin: 30px 0;"><a href="%s" style="background-color: #2271b1; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">%s</a></p>
<div style="background-color: #f8f9fa; border-left: 4px solid #2271b1; padding: 12px 15px; margin: 20px 0;">
<p style="margin: 5px 0;"><strong>Why is this important?</strong></p>
<p style="margin: 5px 0;">A complete Stripe account setup ensures that you can receive payments promptly and without disruption. Missing information can delay payouts or prevent you from receiving funds altogether.</p>
</div>
%s
</div>
<div style="text-align: center; padding-top: 20px; border-top: 1px solid #eeeeee; font-size: 12px; color: #888888;">
<p>This is an automated reminder from %s. You are receiving this because you have an incomplete Stripe onboarding process.</p>
</div>
</div>
</body>
</html>`

const testBanner = `<div style="background-color: #ffeb3b; padding: 10px; margin-bottom: 20px; border-radius: 3px;"><strong>TEST EMAIL</strong> - This is a test email for the status: <strong>%s</strong></div>`

const adminCopyBanner = `<div style="padding: 15px; background-color: #f0f0f1; border-bottom: 4px solid #2271b1; margin-bottom: 20px;">` +
	`<h2 style="margin: 0; color: #2c3338; font-size: 18px;">Admin Copy of Email Sent to User</h2>` +
	`<p style="margin: 10px 0 0 0;"><strong>User:</strong> %s (%s)</p>` +
	`<p style="margin: 5px 0 0 0;"><strong>Status:</strong> %s</p>` +
	`<p style="margin: 5px 0 0 0;"><strong>Sent:</strong> %s</p>` +
	`</div>`

// TemplateRenderer turns admin-edited templates into full reminder emails.
type TemplateRenderer struct {
	siteName string
	baseURL  string
}

// NewTemplateRenderer creates a renderer bound to the site identity.
func NewTemplateRenderer(siteName, baseURL string) *TemplateRenderer {
	return &TemplateRenderer{
		siteName: siteName,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Render produces the subject and HTML body of a reminder email for the
// given vendor and status.
func (r *TemplateRenderer) Render(acct *models.VendorAccount, status models.OnboardingStatus, settings models.ReminderSettings) (string, string) {
	subject := settings.SubjectFor(status)
	body := r.renderBody(acct.RecipientName(), status, subject, settings)
	return subject, body
}

// RenderDebug produces a test email for a status without a real vendor:
// the subject gets a [TEST] prefix and a yellow banner is injected at the
// top of the body.
func (r *TemplateRenderer) RenderDebug(recipientName string, status models.OnboardingStatus, settings models.ReminderSettings) (string, string) {
	subject := "[TEST] " + settings.SubjectFor(status)
	body := r.renderBody(recipientName, status, settings.SubjectFor(status), settings)
	banner := fmt.Sprintf(testBanner, html.EscapeString(status.DisplayName()))
	return subject, insertAfterBodyTag(body, banner)
}

// AdminCopy wraps an already-rendered reminder with an admin banner naming
// the original recipient, for the include-admin-copy setting.
func (r *TemplateRenderer) AdminCopy(acct *models.VendorAccount, status models.OnboardingStatus, subject, original string, sentAt time.Time) (string, string) {
	adminSubject := "[Copy] " + subject + " - Sent to " + acct.Email
	banner := fmt.Sprintf(adminCopyBanner,
		html.EscapeString(acct.RecipientName()),
		html.EscapeString(acct.Email),
		html.EscapeString(status.DisplayName()),
		html.EscapeString(sentAt.Format("2006-01-02 15:04:05")),
	)
	return adminSubject, insertAfterBodyTag(original, banner)
}

// PayoutURL resolves the configured payout settings location against the
// site base URL. Absolute URLs are passed through.
func (r *TemplateRenderer) PayoutURL(settings models.ReminderSettings) string {
	u := settings.PayoutSettingsURL
	if u == "" {
		u = models.DefaultReminderSettings("", "").PayoutSettingsURL
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return r.baseURL + u
}

func (r *TemplateRenderer) renderBody(recipientName string, status models.OnboardingStatus, subject string, settings models.ReminderSettings) string {
	payoutURL := r.PayoutURL(settings)

	replacer := strings.NewReplacer(
		PlaceholderUserName, html.EscapeString(recipientName),
		PlaceholderSiteName, html.EscapeString(r.siteName),
		PlaceholderPayoutURL, payoutURL,
		PlaceholderAdminEmail, html.EscapeString(settings.AdminEmail),
	)

	content := replacer.Replace(settings.TemplateFor(status))
	footer := replacer.Replace(settings.CommonFooter)

	return fmt.Sprintf(emailLayout,
		html.EscapeString(subject),
		html.EscapeString(r.siteName),
		html.EscapeString(recipientName),
		content,
		payoutURL,
		html.EscapeString(settings.ButtonTextFor(status)),
		footer,
		html.EscapeString(r.siteName),
	)
}

// insertAfterBodyTag injects a fragment right after the opening <body> tag,
// tolerating attributes on the tag.
func insertAfterBodyTag(doc, fragment string) string {
	start := strings.Index(doc, "<body")
	if start == -1 {
		return fragment + doc
	}
	end := strings.Index(doc[start:], ">")
	if end == -1 {
		return fragment + doc
	}
	pos := start + end + 1
	return doc[:pos] + "\n" + fragment + doc[pos:]
}
