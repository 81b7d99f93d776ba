package companies

// Tier is a market-capitalization bucket derived from reported revenue.
type Tier string

const (
	TierMega  Tier = "Mega Cap"
	TierLarge Tier = "Large Cap"
	TierMid   Tier = "Mid Cap"
	TierSmall Tier = "Small Cap"
	TierMicro Tier = "Micro Cap"
)

// Tiers lists every tier from largest to smallest.
var Tiers = []Tier{TierMega, TierLarge, TierMid, TierSmall, TierMicro}

// MarketCapTier buckets revenue in USD. Zero and negative revenue have no tier.
func MarketCapTier(revenue float64) (Tier, bool) {
	switch {
	case revenue >= 200_000_000_000:
		return TierMega, true
	case revenue >= 10_000_000_000:
		return TierLarge, true
	case revenue >= 2_000_000_000:
		return TierMid, true
	case revenue >= 300_000_000:
		return TierSmall, true
	case revenue > 0:
		return TierMicro, true
	default:
		return "", false
	}
}

func tierOf(revenue *float64) (Tier, bool) {
	if revenue == nil {
		return "", false
	}
	return MarketCapTier(*revenue)
}

func validTier(t Tier) bool {
	for _, known := range Tiers {
		if t == known {
			return true
		}
	}
	return false
}
