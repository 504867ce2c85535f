package services

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"onboarding-reminders/internal/config"
	"onboarding-reminders/internal/database"
	"onboarding-reminders/internal/models"
	"onboarding-reminders/internal/stripeconnect"
)

const (
	statusCachePrefix = "onboarding:status:"
	statusCacheTTL    = 6 * time.Hour
)

// Classifier computes the onboarding status of a vendor account. It asks
// the configured provider first and degrades to mirrored metadata when the
// provider fails, so a Stripe outage never turns into missing reminders.
type Classifier struct {
	provider stripeconnect.Provider
	fallback stripeconnect.Provider
	cache    *database.RedisClient
	vendors  config.VendorConfig
	log      *zap.Logger
}

// NewClassifier creates a classifier. cache may be nil, in which case no
// status caching happens.
func NewClassifier(provider stripeconnect.Provider, cache *database.RedisClient, vendors config.VendorConfig, log *zap.Logger) *Classifier {
	return &Classifier{
		provider: provider,
		fallback: stripeconnect.NewMetadataProvider(),
		cache:    cache,
		vendors:  vendors,
		log:      log,
	}
}

// ProviderName identifies the active provider for debug output.
func (c *Classifier) ProviderName() string {
	return c.provider.Name()
}

// Classify returns the onboarding status for one account. It never fails:
// every error path resolves to a deterministic status.
func (c *Classifier) Classify(ctx context.Context, acct *models.VendorAccount) models.OnboardingStatus {
	if !c.vendors.Enabled {
		return models.StatusInactive
	}
	if acct.Role == models.RoleAdministrator {
		if !c.vendors.AdminOnboarding {
			return models.StatusInactive
		}
	} else if !c.isVendorRole(acct.Role) {
		return models.StatusInactive
	}

	state, err := c.provider.AccountState(ctx, acct)
	if err != nil {
		c.log.Warn("account state lookup failed, falling back to metadata",
			zap.String("provider", c.provider.Name()),
			zap.Uint("account_id", acct.ID),
			zap.Error(err))

		if cached := c.cachedStatus(ctx, acct.ID); cached.Valid() {
			return cached
		}
		if s := models.OnboardingStatus(acct.CachedStatus); s.Valid() {
			return s
		}
		// Metadata provider cannot fail.
		state, _ = c.fallback.AccountState(ctx, acct)
	}

	status := statusFromState(state, acct)
	c.cacheStatus(ctx, acct.ID, status)
	return status
}

func (c *Classifier) isVendorRole(role string) bool {
	for _, r := range c.vendors.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c *Classifier) cachedStatus(ctx context.Context, id uint) models.OnboardingStatus {
	if c.cache == nil {
		return ""
	}
	val, err := c.cache.Get(ctx, statusCacheKey(id))
	if err != nil {
		return ""
	}
	return models.OnboardingStatus(val)
}

func (c *Classifier) cacheStatus(ctx context.Context, id uint, status models.OnboardingStatus) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, statusCacheKey(id), string(status), statusCacheTTL); err != nil {
		c.log.Debug("status cache write failed", zap.Uint("account_id", id), zap.Error(err))
	}
}

func statusCacheKey(id uint) string {
	return statusCachePrefix + strconv.FormatUint(uint64(id), 10)
}

// statusFromState maps provider state plus account data onto the status
// ladder, in priority order.
func statusFromState(state stripeconnect.AccountState, acct *models.VendorAccount) models.OnboardingStatus {
	switch {
	case !state.Exists:
		return models.StatusNotSetup
	case !state.ChargesEnabled:
		return models.StatusPending
	case !acct.HasShippingZones():
		return models.StatusActiveNoShipping
	default:
		return models.StatusActive
	}
}
