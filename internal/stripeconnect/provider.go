// Package stripeconnect answers one question for a vendor account: does a
// connected payment account exist, and can it take charges.
package stripeconnect

import (
	"context"

	"onboarding-reminders/internal/models"
)

// AccountState is what a provider knows about a vendor's payment account.
type AccountState struct {
	Exists         bool
	ChargesEnabled bool
}

// Provider supplies payment account state for classification. Implementations
// must be safe for concurrent use.
type Provider interface {
	// AccountState looks up the state of the vendor's connected account.
	AccountState(ctx context.Context, acct *models.VendorAccount) (AccountState, error)
	// Name identifies the provider in logs and debug output.
	Name() string
}
