package domain

import "time"

// ReviewStatus is the shared verification workflow state used by farmer
// registrations and token listings.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewVerified ReviewStatus = "verified"
	ReviewRejected ReviewStatus = "rejected"
)

// Valid reports whether s is one of the known review states.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewVerified, ReviewRejected:
		return true
	}
	return false
}

// CanTransition is the review state-machine extension point. The workflow is
// currently permissive: any state may overwrite any other, including resetting
// a verified record to pending. Tighten here once the intended transition
// graph is decided.
func CanTransition(from, to ReviewStatus) bool {
	return to.Valid()
}

// Farmer is a registered grower profile, owned 1:1 by a farmer account.
type Farmer struct {
	ID                 uint         `json:"id"`
	AccountID          uint         `json:"account_id"`
	Name               string       `json:"name"`
	Country            string       `json:"country"`
	Region             string       `json:"region"`
	Address            string       `json:"address"`
	FarmSizeHa         float64      `json:"farm_size_ha"`
	Contact            string       `json:"contact,omitempty"`
	IdentityDocument   string       `json:"identity_document,omitempty"`
	RegistrationStatus ReviewStatus `json:"registration_status"`
	RegisteredAt       time.Time    `json:"registered_at"`
}
