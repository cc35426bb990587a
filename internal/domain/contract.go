package domain

import (
	"strconv"
	"time"
)

// DeliveryType is how an investor takes the contract payout.
type DeliveryType string

const (
	DeliverMoney   DeliveryType = "money"
	DeliverProduct DeliveryType = "product"
)

// Valid reports whether d is a known delivery type.
func (d DeliveryType) Valid() bool {
	return d == DeliverMoney || d == DeliverProduct
}

// PayoutStatus tracks settlement of a contract.
type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutDelivered PayoutStatus = "delivered"
	PayoutDefaulted PayoutStatus = "defaulted"
)

// Contract is the binding record of a token purchase. PricePerToken,
// ExpectedROI and ExpectedHarvestMonth are snapshots taken at creation time;
// they are never recomputed from the live token, whose fields may move on.
type Contract struct {
	ID                   uint         `json:"id"`
	TokenID              uint         `json:"token_id"`
	FarmerID             uint         `json:"farmer_id"`
	InvestorID           uint         `json:"investor_id"`
	Quantity             int          `json:"quantity"`
	PricePerToken        int          `json:"price_per_token"`
	TotalValue           int          `json:"total_value"`
	DeliveryType         DeliveryType `json:"delivery_type"`
	ExpectedROI          float64      `json:"expected_roi"`
	ExpectedHarvestMonth Month        `json:"expected_harvest_month"`
	PayoutStatus         PayoutStatus `json:"payout_status"`
	CreatedAt            time.Time    `json:"created_at"`

	// Crop context joined in for investor listings; empty when the join is
	// missing.
	CropName    string `json:"crop_name,omitempty"`
	CropVariety string `json:"crop_variety,omitempty"`
}

// Investment is the legacy append-only sale record. Its InvestorID is an
// opaque string and is not required to resolve to an investor account.
type Investment struct {
	ID         uint      `json:"id"`
	TokenID    uint      `json:"token_id"`
	InvestorID string    `json:"investor_id"`
	Quantity   int       `json:"quantity"`
	InvestedAt time.Time `json:"invested_at"`
}

// InvestmentFromContract derives the legacy investment row for a contract.
// Contract-backed investments are only ever written through this projection,
// in the same transaction as the contract itself, so the two ledgers cannot
// diverge.
func InvestmentFromContract(c Contract) Investment {
	return Investment{
		TokenID:    c.TokenID,
		InvestorID: strconv.FormatUint(uint64(c.InvestorID), 10),
		Quantity:   c.Quantity,
		InvestedAt: c.CreatedAt,
	}
}
