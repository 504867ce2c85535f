package stripeconnect

import (
	"context"

	"onboarding-reminders/internal/models"
)

// MetadataProvider derives account state from the Stripe metadata mirrored
// onto the vendor row. It never makes network calls, so it doubles as the
// fallback when the live API is unreachable and as the default provider
// when no API key is configured.
type MetadataProvider struct{}

// NewMetadataProvider creates a metadata-backed provider.
func NewMetadataProvider() *MetadataProvider {
	return &MetadataProvider{}
}

func (p *MetadataProvider) Name() string {
	return "metadata"
}

func (p *MetadataProvider) AccountState(ctx context.Context, acct *models.VendorAccount) (AccountState, error) {
	return AccountState{
		Exists:         acct.HasStripeAccount(),
		ChargesEnabled: acct.PaymentsEnabled(),
	}, nil
}
