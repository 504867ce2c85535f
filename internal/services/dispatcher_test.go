package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"onboarding-reminders/internal/models"
)

// MockMailer records outbound email via testify mock.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// fakeVendorStore serves accounts from memory and records Send Records.
type fakeVendorStore struct {
	accounts []models.VendorAccount
	records  map[uint]models.OnboardingStatus
	listErr  error
}

func newFakeVendorStore(accounts ...models.VendorAccount) *fakeVendorStore {
	return &fakeVendorStore{accounts: accounts, records: make(map[uint]models.OnboardingStatus)}
}

func (s *fakeVendorStore) ListByRoles(ctx context.Context, roles []string) ([]models.VendorAccount, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.accounts, nil
}

func (s *fakeVendorStore) GetByID(ctx context.Context, id uint) (*models.VendorAccount, error) {
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			return &s.accounts[i], nil
		}
	}
	return nil, fmt.Errorf("account %d: not found", id)
}

func (s *fakeVendorStore) RecordReminderSent(ctx context.Context, id uint, status models.OnboardingStatus, at time.Time) error {
	s.records[id] = status
	return nil
}

// fakeSettings returns fixed settings and records manual triggers.
type fakeSettings struct {
	settings      models.ReminderSettings
	manualTrigger *time.Time
}

func (s *fakeSettings) ReminderSettings(ctx context.Context) (models.ReminderSettings, error) {
	return s.settings, nil
}

func (s *fakeSettings) RecordManualTrigger(ctx context.Context, at time.Time) error {
	s.manualTrigger = &at
	return nil
}

// fixedClassifier maps account IDs to statuses.
type fixedClassifier struct {
	statuses map[uint]models.OnboardingStatus
}

func (c *fixedClassifier) Classify(ctx context.Context, acct *models.VendorAccount) models.OnboardingStatus {
	if s, ok := c.statuses[acct.ID]; ok {
		return s
	}
	return models.StatusNotSetup
}

func makeAccounts(n int, status models.OnboardingStatus) ([]models.VendorAccount, *fixedClassifier) {
	accounts := make([]models.VendorAccount, 0, n)
	statuses := make(map[uint]models.OnboardingStatus, n)
	for i := 1; i <= n; i++ {
		accounts = append(accounts, models.VendorAccount{
			ID:       uint(i),
			Username: fmt.Sprintf("vendor%d", i),
			Email:    fmt.Sprintf("vendor%d@shop.test", i),
			Role:     models.RoleSeller,
		})
		statuses[uint(i)] = status
	}
	return accounts, &fixedClassifier{statuses: statuses}
}

func newTestDispatcher(vendors *fakeVendorStore, settings *fakeSettings, classifier StatusClassifier, mailer Mailer) (*Dispatcher, *[]time.Duration) {
	renderer := NewTemplateRenderer("Acme Market", "https://acme.test")
	d := NewDispatcher(vendors, settings, classifier, renderer, mailer, []string{models.RoleSeller}, zap.NewNop())

	var pauses []time.Duration
	d.sleep = func(dur time.Duration) { pauses = append(pauses, dur) }
	d.now = func() time.Time { return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC) }
	return d, &pauses
}

func TestRunScheduledPausesEvery25Sends(t *testing.T) {
	accounts, classifier := makeAccounts(52, models.StatusNotSetup)
	vendors := newFakeVendorStore(accounts...)
	settings := &fakeSettings{settings: models.DefaultReminderSettings("Acme Market", "admin@acme.test")}

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	d, pauses := newTestDispatcher(vendors, settings, classifier, mailer)
	d.RunScheduled(context.Background())

	assert.Len(t, mailer.Calls, 52)
	require.Len(t, *pauses, 2, "one pause after send 25, one after send 50")
	assert.Equal(t, scheduledPause, (*pauses)[0])
	assert.Len(t, vendors.records, 52)
}

func TestRunScheduledSkipsDisabledStatuses(t *testing.T) {
	accounts, classifier := makeAccounts(3, models.StatusPending)
	vendors := newFakeVendorStore(accounts...)

	s := models.DefaultReminderSettings("Acme Market", "admin@acme.test")
	s.Notifications[models.StatusPending] = false
	settings := &fakeSettings{settings: s}

	mailer := new(MockMailer)
	d, _ := newTestDispatcher(vendors, settings, classifier, mailer)
	d.RunScheduled(context.Background())

	assert.Empty(t, mailer.Calls, "disabled status sends nothing")
	assert.Empty(t, vendors.records)
}

func TestRunScheduledNoEnabledStatuses(t *testing.T) {
	accounts, classifier := makeAccounts(2, models.StatusNotSetup)
	vendors := newFakeVendorStore(accounts...)

	s := models.DefaultReminderSettings("Acme Market", "admin@acme.test")
	s.Notifications = nil
	settings := &fakeSettings{settings: s}

	mailer := new(MockMailer)
	d, _ := newTestDispatcher(vendors, settings, classifier, mailer)
	d.RunScheduled(context.Background())

	assert.Empty(t, mailer.Calls)
}

func TestRunScheduledRespectsRateLimit(t *testing.T) {
	accounts, classifier := makeAccounts(2, models.StatusNotSetup)
	recent := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC) // 7 days before "now"
	accounts[0].LastReminderSentAt = &recent

	vendors := newFakeVendorStore(accounts...)
	settings := &fakeSettings{settings: models.DefaultReminderSettings("Acme Market", "admin@acme.test")}

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	d, _ := newTestDispatcher(vendors, settings, classifier, mailer)
	d.RunScheduled(context.Background())

	assert.Len(t, mailer.Calls, 1, "only the unsuppressed account gets mail")
	_, suppressed := vendors.records[accounts[0].ID]
	assert.False(t, suppressed)
}

func TestRunScheduledContinuesPastFailures(t *testing.T) {
	accounts, classifier := makeAccounts(3, models.StatusNotSetup)
	vendors := newFakeVendorStore(accounts...)
	settings := &fakeSettings{settings: models.DefaultReminderSettings("Acme Market", "admin@acme.test")}

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg EmailMessage) bool {
		return msg.ToEmail == "vendor2@shop.test"
	})).Return(errors.New("smtp refused"))
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	d, _ := newTestDispatcher(vendors, settings, classifier, mailer)
	d.RunScheduled(context.Background())

	assert.Len(t, mailer.Calls, 3, "failure does not abort the batch")
	assert.Len(t, vendors.records, 2, "failed send writes no Send Record")
	_, failed := vendors.records[2]
	assert.False(t, failed)
}

func TestSendNowBypassesRateLimit(t *testing.T) {
	accounts, classifier := makeAccounts(2, models.StatusPending)
	recent := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	accounts[0].LastReminderSentAt = &recent
	accounts[1].LastReminderSentAt = &recent

	vendors := newFakeVendorStore(accounts...)
	settings := &fakeSettings{settings: models.DefaultReminderSettings("Acme Market", "admin@acme.test")}

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	d, _ := newTestDispatcher(vendors, settings, classifier, mailer)

	sent, eligible, err := d.SendNow(context.Background(), []models.OnboardingStatus{models.StatusPending}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, sent, "both suppressed without bypass")
	assert.Equal(t, 2, eligible)

	sent, eligible, err = d.SendNow(context.Background(), []models.OnboardingStatus{models.StatusPending}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 2, eligible)
	require.NotNil(t, settings.manualTrigger, "manual runs stamp the trigger time")
}

func TestSendNowUsesManualPause(t *testing.T) {
	accounts, classifier := makeAccounts(26, models.StatusNotSetup)
	vendors := newFakeVendorStore(accounts...)
	settings := &fakeSettings{settings: models.DefaultReminderSettings("Acme Market", "admin@acme.test")}

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	d, pauses := newTestDispatcher(vendors, settings, classifier, mailer)
	_, _, err := d.SendNow(context.Background(), []models.OnboardingStatus{models.StatusNotSetup}, true)
	require.NoError(t, err)

	require.Len(t, *pauses, 1)
	assert.Equal(t, manualPause, (*pauses)[0])
}

func TestSendSingle(t *testing.T) {
	accounts, classifier := makeAccounts(1, models.StatusActiveNoShipping)
	vendors := newFakeVendorStore(accounts...)
	settings := &fakeSettings{settings: models.DefaultReminderSettings("Acme Market", "admin@acme.test")}

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	d, _ := newTestDispatcher(vendors, settings, classifier, mailer)

	require.NoError(t, d.SendSingle(context.Background(), 1))
	assert.Equal(t, models.StatusActiveNoShipping, vendors.records[1])
}

func TestSendSingleRejectsIneligibleStatus(t *testing.T) {
	accounts, _ := makeAccounts(1, models.StatusActive)
	vendors := newFakeVendorStore(accounts...)
	settings := &fakeSettings{settings: models.DefaultReminderSettings("Acme Market", "admin@acme.test")}
	classifier := &fixedClassifier{statuses: map[uint]models.OnboardingStatus{1: models.StatusActive}}

	mailer := new(MockMailer)
	d, _ := newTestDispatcher(vendors, settings, classifier, mailer)

	err := d.SendSingle(context.Background(), 1)
	assert.ErrorContains(t, err, "does not need onboarding reminders")
	assert.Empty(t, mailer.Calls)
}

func TestSendDebugWritesNoSendRecord(t *testing.T) {
	vendors := newFakeVendorStore()
	settings := &fakeSettings{settings: models.DefaultReminderSettings("Acme Market", "admin@acme.test")}

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg EmailMessage) bool {
		return msg.ToEmail == "dev@acme.test" && len(msg.Subject) > 7 && msg.Subject[:7] == "[TEST] "
	})).Return(nil)

	d, _ := newTestDispatcher(vendors, settings, &fixedClassifier{}, mailer)

	require.NoError(t, d.SendDebug(context.Background(), models.StatusPending, "dev@acme.test"))
	mailer.AssertExpectations(t)
	assert.Empty(t, vendors.records)
}

func TestDeliverSendsAdminCopy(t *testing.T) {
	accounts, classifier := makeAccounts(1, models.StatusNotSetup)
	vendors := newFakeVendorStore(accounts...)

	s := models.DefaultReminderSettings("Acme Market", "admin@acme.test")
	s.IncludeAdminCopy = true
	settings := &fakeSettings{settings: s}

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	d, _ := newTestDispatcher(vendors, settings, classifier, mailer)
	d.RunScheduled(context.Background())

	require.Len(t, mailer.Calls, 2, "vendor mail plus admin copy")
	adminMsg := mailer.Calls[1].Arguments.Get(1).(EmailMessage)
	assert.Equal(t, "admin@acme.test", adminMsg.ToEmail)
	assert.Contains(t, adminMsg.Subject, "[Copy] ")
}
