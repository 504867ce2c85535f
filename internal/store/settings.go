package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"onboarding-reminders/internal/models"
)

// SettingsStore persists reminder settings as a single JSONB row.
type SettingsStore struct {
	db *gorm.DB

	// used to seed defaults on first access
	siteName   string
	adminEmail string
}

// NewSettingsStore creates a settings store. siteName and adminEmail seed
// the defaults returned before an admin has saved anything.
func NewSettingsStore(db *gorm.DB, siteName, adminEmail string) *SettingsStore {
	return &SettingsStore{db: db, siteName: siteName, adminEmail: adminEmail}
}

// ReminderSettings loads the current settings, falling back to defaults
// when no row exists yet.
func (s *SettingsStore) ReminderSettings(ctx context.Context) (models.ReminderSettings, error) {
	var row models.Setting
	err := s.db.WithContext(ctx).First(&row, "key = ?", models.SettingKeyReminders).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultReminderSettings(s.siteName, s.adminEmail), nil
	}
	if err != nil {
		return models.ReminderSettings{}, fmt.Errorf("loading reminder settings: %w", err)
	}

	var settings models.ReminderSettings
	if err := json.Unmarshal(row.Value, &settings); err != nil {
		return models.ReminderSettings{}, fmt.Errorf("decoding reminder settings: %w", err)
	}
	return settings, nil
}

// SaveReminderSettings replaces the stored settings.
func (s *SettingsStore) SaveReminderSettings(ctx context.Context, settings models.ReminderSettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding reminder settings: %w", err)
	}
	row := models.Setting{
		Key:       models.SettingKeyReminders,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("saving reminder settings: %w", err)
	}
	return nil
}

// RecordManualTrigger stamps the time of the last manual dispatch onto the
// stored settings.
func (s *SettingsStore) RecordManualTrigger(ctx context.Context, at time.Time) error {
	settings, err := s.ReminderSettings(ctx)
	if err != nil {
		return err
	}
	settings.LastManualSendAt = &at
	return s.SaveReminderSettings(ctx, settings)
}
