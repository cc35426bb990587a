package domain

import (
	"math"
	"time"
)

// Funding status values carried in Token.Status.
const (
	FundingOpen   = "open"
	FundingFunded = "funded"
)

// Token is the fractional funding unit issued against a crop. TokensSold is
// monotonically non-decreasing and never exceeds TokenCount; IsFunded holds
// exactly when the supply is sold out. TokenStatus is the listing-verification
// workflow and is independent of funding.
type Token struct {
	ID                 uint         `json:"id"`
	CropID             uint         `json:"crop_id"`
	FarmerID           uint         `json:"farmer_id"`
	TokenCount         int          `json:"token_count"`
	PricePerToken      int          `json:"price_per_token"`
	ExpectedYieldUnit  string       `json:"expected_yield_unit"`
	ExpectedTotalYield int          `json:"expected_total_yield"`
	ExpectedROI        float64      `json:"expected_roi"`
	TokensSold         int          `json:"tokens_sold"`
	IsFunded           bool         `json:"is_funded"`
	FundingDeadline    time.Time    `json:"funding_deadline"`
	Currency           string       `json:"currency"`
	Status             string       `json:"status"`
	TokenStatus        ReviewStatus `json:"token_status"`
	CreatedAt          time.Time    `json:"created_at"`
}

// TokensLeft is the remaining unsold supply.
func (t *Token) TokensLeft() int {
	return t.TokenCount - t.TokensSold
}

// FundingPercentage is the sold fraction in percent, rounded to two decimals.
// A zero-supply token reports 0.0.
func (t *Token) FundingPercentage() float64 {
	if t.TokenCount == 0 {
		return 0.0
	}
	pct := float64(t.TokensSold) / float64(t.TokenCount) * 100
	return math.Round(pct*100) / 100
}

// Reserve consumes quantity units of remaining supply. On success TokensSold
// is incremented and, when the token sells out, IsFunded and Status flip in
// the same step. On failure the token is left untouched.
//
// Callers are responsible for serializing concurrent Reserve calls against
// the same token (the gorm repository does so with a row lock).
func (t *Token) Reserve(quantity int) error {
	if quantity <= 0 {
		return InvalidArgumentError{Reason: "quantity must be positive"}
	}
	if t.IsFunded {
		return ErrAlreadyFunded
	}
	available := t.TokenCount - t.TokensSold
	if quantity > available {
		return InsufficientSupplyError{Available: available}
	}
	t.TokensSold += quantity
	if t.TokensSold == t.TokenCount {
		t.IsFunded = true
		t.Status = FundingFunded
	}
	return nil
}

// TokenView is a token enriched with its crop and farmer context plus derived
// funding figures, for listings and dashboards.
type TokenView struct {
	Token
	CropName             string    `json:"crop_name"`
	CropVariety          string    `json:"crop_variety,omitempty"`
	Country              string    `json:"country"`
	Region               string    `json:"region"`
	OrganicCertified     bool      `json:"organic_certified"`
	PlantingDate         time.Time `json:"planting_date"`
	ExpectedHarvestMonth Month     `json:"expected_harvest_month"`
	FundingPercentage    float64   `json:"funding_percentage"`
	TokensLeft           int       `json:"tokens_left"`
}

// NewTokenView composes the enriched listing row for a token and its joined
// crop and farmer.
func NewTokenView(t Token, c Crop, f Farmer) TokenView {
	return TokenView{
		Token:                t,
		CropName:             c.CropName,
		CropVariety:          c.Variety,
		Country:              f.Country,
		Region:               f.Region,
		OrganicCertified:     c.OrganicCertified,
		PlantingDate:         c.PlantingDate,
		ExpectedHarvestMonth: c.ExpectedHarvestMonth,
		FundingPercentage:    t.FundingPercentage(),
		TokensLeft:           t.TokensLeft(),
	}
}

// SearchCriteria filters the token listing. String filters are
// case-insensitive substring matches; numeric and date filters are inclusive
// thresholds. The zero value applies no filters at all; NewSearchCriteria
// returns the investor-facing default instead.
type SearchCriteria struct {
	Country      string     `json:"country,omitempty"`
	Region       string     `json:"region,omitempty"`
	CropName     string     `json:"crop_name,omitempty"`
	CropVariety  string     `json:"crop_variety,omitempty"`
	Status       string     `json:"status,omitempty"`
	FarmerID     *uint      `json:"farmer_id,omitempty"`
	MinROI       *float64   `json:"min_roi,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	CreatedAfter *time.Time `json:"created_after,omitempty"`
	FundedOnly   *bool      `json:"funded_only,omitempty"`
	OrganicOnly  bool       `json:"organic_only,omitempty"`

	// OpenOnly restricts results to status "open" while FundedOnly is unset.
	// It is an explicit field rather than a hidden query-layer branch so the
	// default is visible at construction sites.
	OpenOnly bool `json:"open_only,omitempty"`
}

// NewSearchCriteria returns the default criteria for investor-facing listings:
// only open tokens, until FundedOnly is set explicitly.
func NewSearchCriteria() SearchCriteria {
	return SearchCriteria{OpenOnly: true}
}

// DefaultsToOpen reports whether the open-status default restriction applies.
func (c SearchCriteria) DefaultsToOpen() bool {
	return c.OpenOnly && c.FundedOnly == nil
}
