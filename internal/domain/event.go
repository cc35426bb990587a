package domain

// FundingEvent is published after every committed reservation so dashboards
// can follow funding progress live.
type FundingEvent struct {
	TokenID    uint `json:"token_id"`
	TokensSold int  `json:"tokens_sold"`
	TokenCount int  `json:"token_count"`
	IsFunded   bool `json:"is_funded"`
}

// FundingChannel is the redis pub/sub channel carrying FundingEvents.
const FundingChannel = "agrovest:funding"
