package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailMessage is a fully resolved outbound email.
type EmailMessage struct {
	FromName  string
	FromEmail string
	ToName    string
	ToEmail   string
	Subject   string
	HTMLBody  string
}

// Mailer delivers reminder emails.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailService sends email through SendGrid.
type EmailService struct {
	client *sendgrid.Client

	// defaults used when settings leave the sender blank
	fromName  string
	fromEmail string
}

// NewEmailService creates a SendGrid-backed mailer with default sender
// identity for messages that do not set their own.
func NewEmailService(apiKey, fromName, fromEmail string) *EmailService {
	return &EmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send delivers one email. A non-2xx response from SendGrid counts as a
// failure even when the transport succeeded.
func (s *EmailService) Send(ctx context.Context, msg EmailMessage) error {
	fromName := msg.FromName
	if fromName == "" {
		fromName = s.fromName
	}
	fromEmail := msg.FromEmail
	if fromEmail == "" {
		fromEmail = s.fromEmail
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, htmlToPlain(msg.HTMLBody), msg.HTMLBody)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email to %s: %d", msg.ToEmail, response.StatusCode)
	}
	return nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// htmlToPlain produces the plain-text alternative part from the HTML body.
func htmlToPlain(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(text), " ")
}
