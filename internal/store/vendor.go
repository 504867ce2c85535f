package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"onboarding-reminders/internal/models"
)

// VendorStore reads and updates vendor account rows.
type VendorStore struct {
	db *gorm.DB
}

// NewVendorStore creates a vendor store on the given database.
func NewVendorStore(db *gorm.DB) *VendorStore {
	return &VendorStore{db: db}
}

// ListByRoles returns all accounts whose role is in the given set, ordered
// by ID so runs process vendors deterministically.
func (s *VendorStore) ListByRoles(ctx context.Context, roles []string) ([]models.VendorAccount, error) {
	var accounts []models.VendorAccount
	err := s.db.WithContext(ctx).
		Where("role IN ?", roles).
		Order("id").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("listing vendor accounts: %w", err)
	}
	return accounts, nil
}

// GetByID fetches a single account.
func (s *VendorStore) GetByID(ctx context.Context, id uint) (*models.VendorAccount, error) {
	var acct models.VendorAccount
	if err := s.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// CountByRoles counts accounts in the given role set.
func (s *VendorStore) CountByRoles(ctx context.Context, roles []string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.VendorAccount{}).
		Where("role IN ?", roles).
		Count(&count).Error
	return count, err
}

// RecordReminderSent overwrites the account's Send Record with the time and
// status of the reminder that was just delivered.
func (s *VendorStore) RecordReminderSent(ctx context.Context, id uint, status models.OnboardingStatus, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.VendorAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_reminder_sent_at": at,
			"last_reminder_status":  string(status),
			"updated_at":            at,
		}).Error
}
