package domain

import (
	"fmt"
	"strings"
	"time"
)

// Tier enumerates subscription plans.
type Tier string

const (
	TierFree       Tier = "free"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// Tiers is the closed set of plans, lowest first.
var Tiers = []Tier{TierFree, TierPremium, TierEnterprise}

// DefaultTier is assigned to every account on first sight.
const DefaultTier = TierFree

// Valid reports whether t belongs to the closed tier set.
func (t Tier) Valid() bool {
	for _, known := range Tiers {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTier normalizes user or database input into a Tier.
func ParseTier(raw string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, raw)
	}
	return t, nil
}

// UserAccount is the per-user record keyed by the Telegram user id.
type UserAccount struct {
	TelegramID int64
	Username   string
	FirstName  string
	Plan       Tier
	JoinedAt   time.Time
}
