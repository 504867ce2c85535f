package models

import "fmt"

// OnboardingStatus classifies where a vendor stands in Stripe payment onboarding.
type OnboardingStatus string

const (
	// StatusNotSetup means the vendor has no connected Stripe account.
	StatusNotSetup OnboardingStatus = "not_setup"
	// StatusPending means a Stripe account exists but charges are not enabled yet.
	StatusPending OnboardingStatus = "pending"
	// StatusActiveNoShipping means payments work but no shipping zone is configured.
	StatusActiveNoShipping OnboardingStatus = "active_no_shipping"
	// StatusActive means the vendor is fully operational.
	StatusActive OnboardingStatus = "active"
	// StatusInactive means the account is out of scope for onboarding reminders.
	StatusInactive OnboardingStatus = "inactive"
)

// ReminderStatuses lists the statuses that can receive reminder emails,
// in the order scheduled runs process them.
func ReminderStatuses() []OnboardingStatus {
	return []OnboardingStatus{StatusNotSetup, StatusPending, StatusActiveNoShipping}
}

// ReminderEligible reports whether vendors with this status receive reminders.
func (s OnboardingStatus) ReminderEligible() bool {
	switch s {
	case StatusNotSetup, StatusPending, StatusActiveNoShipping:
		return true
	}
	return false
}

// Valid reports whether s is one of the five known statuses.
func (s OnboardingStatus) Valid() bool {
	switch s {
	case StatusNotSetup, StatusPending, StatusActiveNoShipping, StatusActive, StatusInactive:
		return true
	}
	return false
}

// DisplayName returns the human-readable label shown in the admin vendor table.
func (s OnboardingStatus) DisplayName() string {
	switch s {
	case StatusNotSetup:
		return "Not Set Up"
	case StatusPending:
		return "Pending Verification"
	case StatusActiveNoShipping:
		return "Active (No Shipping)"
	case StatusActive:
		return "Active"
	case StatusInactive:
		return "Inactive"
	}
	return string(s)
}

// ParseReminderStatus validates a client-supplied status string and requires
// it to be one of the reminder-eligible statuses.
func ParseReminderStatus(raw string) (OnboardingStatus, error) {
	s := OnboardingStatus(raw)
	if !s.ReminderEligible() {
		return "", fmt.Errorf("invalid reminder status %q", raw)
	}
	return s, nil
}
