package stripeconnect

import (
	"context"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"onboarding-reminders/internal/models"
)

// StripeProvider queries the Stripe API for live connected-account state.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a provider backed by the Stripe API.
func NewStripeProvider(apiKey string) *StripeProvider {
	return &StripeProvider{api: client.New(apiKey, nil)}
}

func (p *StripeProvider) Name() string {
	return "stripe"
}

// AccountState fetches the connected account and reports whether it exists
// and has charges enabled. A missing account on Stripe's side is not an
// error, it just means onboarding never completed.
func (p *StripeProvider) AccountState(ctx context.Context, acct *models.VendorAccount) (AccountState, error) {
	if !acct.HasStripeAccount() {
		return AccountState{}, nil
	}

	params := &stripe.AccountParams{
		Params: stripe.Params{Context: ctx},
	}
	account, err := p.api.Accounts.GetByID(acct.StripeAccountID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return AccountState{}, nil
		}
		return AccountState{}, fmt.Errorf("stripe account lookup for %s: %w", acct.StripeAccountID, err)
	}

	return AccountState{
		Exists:         true,
		ChargesEnabled: account.ChargesEnabled,
	}, nil
}
