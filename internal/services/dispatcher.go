package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"onboarding-reminders/internal/models"
)

// Pacing for outbound mail: pause after every batch of successful sends so
// a large vendor base does not hammer the mail provider.
const (
	pauseBatchSize = 25
	scheduledPause = 5 * time.Second
	manualPause    = 2 * time.Second
)

// debugRecipientName addresses debug emails that have no real vendor.
const debugRecipientName = "Test Vendor"

// VendorStore is the account access the dispatcher needs.
type VendorStore interface {
	ListByRoles(ctx context.Context, roles []string) ([]models.VendorAccount, error)
	GetByID(ctx context.Context, id uint) (*models.VendorAccount, error)
	RecordReminderSent(ctx context.Context, id uint, status models.OnboardingStatus, at time.Time) error
}

// SettingsSource loads reminder settings and records manual triggers.
type SettingsSource interface {
	ReminderSettings(ctx context.Context) (models.ReminderSettings, error)
	RecordManualTrigger(ctx context.Context, at time.Time) error
}

// StatusClassifier computes the onboarding status of one account.
type StatusClassifier interface {
	Classify(ctx context.Context, acct *models.VendorAccount) models.OnboardingStatus
}

// Dispatcher runs reminder batches: the monthly scheduled run, manual runs
// from the admin surface, single-account sends and debug sends.
type Dispatcher struct {
	vendors    VendorStore
	settings   SettingsSource
	classifier StatusClassifier
	renderer   *TemplateRenderer
	mailer     Mailer
	roles      []string
	log        *zap.Logger

	// injectable for tests
	sleep func(time.Duration)
	now   func() time.Time
}

// NewDispatcher wires a dispatcher over the given collaborators. roles is
// the set of marketplace roles scanned for reminders.
func NewDispatcher(vendors VendorStore, settings SettingsSource, classifier StatusClassifier, renderer *TemplateRenderer, mailer Mailer, roles []string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		vendors:    vendors,
		settings:   settings,
		classifier: classifier,
		renderer:   renderer,
		mailer:     mailer,
		roles:      roles,
		log:        log,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// RunScheduled executes one scheduled reminder run: every enabled status in
// order, rate limiting applied, Send Records written. Per-account failures
// are logged and skipped; nothing aborts the run.
func (d *Dispatcher) RunScheduled(ctx context.Context) {
	settings, err := d.settings.ReminderSettings(ctx)
	if err != nil {
		d.log.Error("scheduled run aborted, cannot load settings", zap.Error(err))
		return
	}

	enabled := settings.EnabledStatuses()
	if len(enabled) == 0 {
		d.log.Info("no reminder statuses enabled, nothing to send")
		return
	}

	d.log.Info("starting scheduled reminder run",
		zap.Int("statuses", len(enabled)),
		zap.Int("rate_limit_days", settings.EffectiveRateLimitDays()))

	grouped, err := d.groupByStatus(ctx)
	if err != nil {
		d.log.Error("scheduled run aborted, cannot list vendors", zap.Error(err))
		return
	}

	total := 0
	sentInRun := 0
	for _, status := range enabled {
		sent := d.sendBatch(ctx, grouped[status], status, settings, false, scheduledPause, &sentInRun)
		d.log.Info("status batch complete",
			zap.String("status", string(status)),
			zap.Int("eligible", len(grouped[status])),
			zap.Int("sent", sent))
		total += sent
	}

	d.log.Info("scheduled reminder run complete", zap.Int("total_sent", total))
}

// SendNow runs a manual dispatch over an explicit status list. Unlike the
// scheduled run it can bypass rate limiting, uses a shorter inter-batch
// pause, and stamps the manual-trigger time. Returns how many reminders
// went out and how many accounts matched the statuses.
func (d *Dispatcher) SendNow(ctx context.Context, statuses []models.OnboardingStatus, bypassRateLimit bool) (int, int, error) {
	settings, err := d.settings.ReminderSettings(ctx)
	if err != nil {
		return 0, 0, err
	}

	grouped, err := d.groupByStatus(ctx)
	if err != nil {
		return 0, 0, err
	}

	d.log.Info("starting manual reminder run",
		zap.Int("statuses", len(statuses)),
		zap.Bool("bypass_rate_limit", bypassRateLimit))

	sent, eligible := 0, 0
	sentInRun := 0
	for _, status := range statuses {
		accounts := grouped[status]
		eligible += len(accounts)
		sent += d.sendBatch(ctx, accounts, status, settings, bypassRateLimit, manualPause, &sentInRun)
	}

	if err := d.settings.RecordManualTrigger(ctx, d.now()); err != nil {
		d.log.Warn("failed to record manual trigger time", zap.Error(err))
	}

	d.log.Info("manual reminder run complete", zap.Int("sent", sent), zap.Int("eligible", eligible))
	return sent, eligible, nil
}

// SendSingle sends one reminder to a specific account based on its current
// status. Accounts whose status needs no reminder are rejected.
func (d *Dispatcher) SendSingle(ctx context.Context, id uint) error {
	settings, err := d.settings.ReminderSettings(ctx)
	if err != nil {
		return err
	}

	acct, err := d.vendors.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading account %d: %w", id, err)
	}

	status := d.classifier.Classify(ctx, acct)
	if !status.ReminderEligible() {
		return fmt.Errorf("account %d does not need onboarding reminders (status %s)", id, status)
	}

	if err := d.deliver(ctx, acct, status, settings); err != nil {
		return err
	}

	d.log.Info("single reminder sent",
		zap.Uint("account_id", id),
		zap.String("status", string(status)))
	return nil
}

// SendDebug sends a rendered test email for a status to an arbitrary
// address. No account is touched and no Send Record is written.
func (d *Dispatcher) SendDebug(ctx context.Context, status models.OnboardingStatus, email string) error {
	if !status.ReminderEligible() {
		return fmt.Errorf("invalid reminder status %q", status)
	}

	settings, err := d.settings.ReminderSettings(ctx)
	if err != nil {
		return err
	}

	subject, body := d.renderer.RenderDebug(debugRecipientName, status, settings)
	msg := EmailMessage{
		FromName:  settings.FromName,
		FromEmail: settings.FromEmail,
		ToName:    debugRecipientName,
		ToEmail:   email,
		Subject:   subject,
		HTMLBody:  body,
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending debug email to %s: %w", email, err)
	}

	d.log.Info("debug email sent",
		zap.String("status", string(status)),
		zap.String("email", email))
	return nil
}

// groupByStatus classifies the whole role-filtered vendor base once and
// buckets reminder-eligible accounts by status.
func (d *Dispatcher) groupByStatus(ctx context.Context) (map[models.OnboardingStatus][]models.VendorAccount, error) {
	accounts, err := d.vendors.ListByRoles(ctx, d.roles)
	if err != nil {
		return nil, err
	}

	grouped := make(map[models.OnboardingStatus][]models.VendorAccount)
	for i := range accounts {
		status := d.classifier.Classify(ctx, &accounts[i])
		if status.ReminderEligible() {
			grouped[status] = append(grouped[status], accounts[i])
		}
	}
	return grouped, nil
}

// sendBatch delivers reminders to one status bucket. sentInRun counts
// successful sends across the whole run so the pacing pause lands after
// every 25 deliveries regardless of status boundaries.
func (d *Dispatcher) sendBatch(ctx context.Context, accounts []models.VendorAccount, status models.OnboardingStatus, settings models.ReminderSettings, bypassRateLimit bool, pause time.Duration, sentInRun *int) int {
	cooldown := settings.EffectiveRateLimitDays()
	sent := 0

	for i := range accounts {
		acct := &accounts[i]

		if !bypassRateLimit && ShouldSuppress(acct, cooldown, d.now()) {
			d.log.Debug("reminder suppressed by rate limit",
				zap.Uint("account_id", acct.ID),
				zap.String("status", string(status)))
			continue
		}

		if err := d.deliver(ctx, acct, status, settings); err != nil {
			d.log.Warn("reminder send failed, skipping account",
				zap.Uint("account_id", acct.ID),
				zap.String("status", string(status)),
				zap.Error(err))
			continue
		}

		sent++
		*sentInRun++
		if *sentInRun%pauseBatchSize == 0 {
			d.sleep(pause)
		}
	}

	return sent
}

// deliver renders and sends one reminder, writes the Send Record and sends
// the admin copy when configured. The Send Record is written even if the
// admin copy later fails.
func (d *Dispatcher) deliver(ctx context.Context, acct *models.VendorAccount, status models.OnboardingStatus, settings models.ReminderSettings) error {
	subject, body := d.renderer.Render(acct, status, settings)
	msg := EmailMessage{
		FromName:  settings.FromName,
		FromEmail: settings.FromEmail,
		ToName:    acct.RecipientName(),
		ToEmail:   acct.Email,
		Subject:   subject,
		HTMLBody:  body,
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return err
	}

	now := d.now()
	if err := d.vendors.RecordReminderSent(ctx, acct.ID, status, now); err != nil {
		// The email already went out; a missing Send Record only risks an
		// early repeat, so log and move on.
		d.log.Warn("failed to record reminder send",
			zap.Uint("account_id", acct.ID),
			zap.Error(err))
	}

	if settings.IncludeAdminCopy && settings.AdminEmail != "" {
		adminSubject, adminBody := d.renderer.AdminCopy(acct, status, subject, body, now)
		adminMsg := EmailMessage{
			FromName:  settings.FromName,
			FromEmail: settings.FromEmail,
			ToName:    "Admin",
			ToEmail:   settings.AdminEmail,
			Subject:   adminSubject,
			HTMLBody:  adminBody,
		}
		if err := d.mailer.Send(ctx, adminMsg); err != nil {
			d.log.Warn("admin copy send failed",
				zap.Uint("account_id", acct.ID),
				zap.Error(err))
		}
	}

	return nil
}
