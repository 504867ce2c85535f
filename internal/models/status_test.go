package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderEligible(t *testing.T) {
	assert.True(t, StatusNotSetup.ReminderEligible())
	assert.True(t, StatusPending.ReminderEligible())
	assert.True(t, StatusActiveNoShipping.ReminderEligible())
	assert.False(t, StatusActive.ReminderEligible())
	assert.False(t, StatusInactive.ReminderEligible())
	assert.False(t, OnboardingStatus("bogus").ReminderEligible())
}

func TestReminderStatusesOrder(t *testing.T) {
	assert.Equal(t, []OnboardingStatus{StatusNotSetup, StatusPending, StatusActiveNoShipping}, ReminderStatuses())
}

func TestParseReminderStatus(t *testing.T) {
	status, err := ParseReminderStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	_, err = ParseReminderStatus("active")
	assert.Error(t, err, "non-reminder statuses are rejected")

	_, err = ParseReminderStatus("nonsense")
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Not Set Up", StatusNotSetup.DisplayName())
	assert.Equal(t, "Active (No Shipping)", StatusActiveNoShipping.DisplayName())
	assert.Equal(t, "weird", OnboardingStatus("weird").DisplayName())
}
