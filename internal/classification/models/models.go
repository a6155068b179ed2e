package models

import (
	"dealer/internal/pricing"
	id "dealer/pkg/domain"
)

// Tier is a client's loyalty classification, derived from ACTIVE sales.
type Tier string

const (
	TierNew      Tier = "NEW"
	TierRegular  Tier = "REGULAR"
	TierFrequent Tier = "FREQUENT"
	TierVIP      Tier = "VIP"
)

const (
	vipThreshold      = 5
	frequentThreshold = 3
	regularThreshold  = 1
)

// TierFor maps a count of ACTIVE sales to a tier.
func TierFor(activeSales int) Tier {
	switch {
	case activeSales >= vipThreshold:
		return TierVIP
	case activeSales >= frequentThreshold:
		return TierFrequent
	case activeSales >= regularThreshold:
		return TierRegular
	default:
		return TierNew
	}
}

// Classification is a point-in-time read model. It may lag in-flight sales.
type Classification struct {
	ClientID         id.ClientID   `json:"client_id"`
	Tier             Tier          `json:"tier"`
	TotalActiveSales int           `json:"total_active_sales"`
	TotalSpend       pricing.Money `json:"total_spend"`
}

func New(clientID id.ClientID, activeSales int, spend pricing.Money) *Classification {
	return &Classification{
		ClientID:         clientID,
		Tier:             TierFor(activeSales),
		TotalActiveSales: activeSales,
		TotalSpend:       spend,
	}
}
