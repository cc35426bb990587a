package models

import (
	"time"

	"github.com/agrovest/agrovest/internal/domain"
)

type FarmerAccount struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email          string    `json:"email" gorm:"type:text;uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type InvestorAccount struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email          string    `json:"email" gorm:"type:text;uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Farmer struct {
	ID                 uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID          uint          `json:"account_id" gorm:"index"`
	Account            FarmerAccount `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Name               string        `json:"name" gorm:"type:text;index"`
	Country            string        `json:"country" gorm:"type:text"`
	Region             string        `json:"region" gorm:"type:text"`
	Address            string        `json:"address" gorm:"type:text;not null"`
	FarmSizeHa         float64       `json:"farm_size_ha"`
	Contact            string        `json:"contact" gorm:"type:text"`
	IdentityDocument   string        `json:"identity_document" gorm:"type:text"`
	RegistrationStatus string        `json:"registration_status" gorm:"type:text;not null;default:'pending'"`
	RegisteredAt       time.Time     `json:"registered_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Crop struct {
	ID                   uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	FarmerID             uint      `json:"farmer_id" gorm:"index"`
	Farmer               Farmer    `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CropName             string    `json:"crop_name" gorm:"type:text;index"`
	Variety              string    `json:"variety" gorm:"type:text"`
	PlantingDate         time.Time `json:"planting_date" gorm:"type:date"`
	ExpectedHarvestMonth string    `json:"expected_harvest_month" gorm:"type:text"`
	FarmLocation         string    `json:"farm_location" gorm:"type:text"`
	OrganicCertified     bool      `json:"organic_certified" gorm:"not null;default:false"`
}

type Token struct {
	ID                 uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CropID             uint      `json:"crop_id" gorm:"index"`
	Crop               Crop      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	FarmerID           uint      `json:"farmer_id" gorm:"index"`
	TokenCount         int       `json:"token_count" gorm:"not null"`
	PricePerToken      int       `json:"price_per_token" gorm:"not null"`
	ExpectedYieldUnit  string    `json:"expected_yield_unit" gorm:"type:text"`
	ExpectedTotalYield int       `json:"expected_total_yield"`
	ExpectedROI        float64   `json:"expected_roi"`
	TokensSold         int       `json:"tokens_sold" gorm:"not null;default:0"`
	IsFunded           bool      `json:"is_funded" gorm:"not null;default:false;index"`
	FundingDeadline    time.Time `json:"funding_deadline" gorm:"type:date"`
	Currency           string    `json:"currency" gorm:"type:text;not null;default:'USDT'"`
	Status             string    `json:"status" gorm:"type:text;not null;default:'open'"`
	TokenStatus        string    `json:"token_status" gorm:"type:text;not null;default:'pending'"`
	CreatedAt          time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Investment struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TokenID    uint      `json:"token_id" gorm:"index"`
	Token      Token     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	InvestorID string    `json:"investor_id" gorm:"type:text;index"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	InvestedAt time.Time `json:"invested_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Contract struct {
	ID                   uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TokenID              uint      `json:"token_id" gorm:"index"`
	Token                Token     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	FarmerID             uint      `json:"farmer_id" gorm:"index"`
	InvestorID           uint      `json:"investor_id" gorm:"index"`
	Quantity             int       `json:"quantity" gorm:"not null"`
	PricePerToken        int       `json:"price_per_token" gorm:"not null"`
	TotalValue           int       `json:"total_value" gorm:"not null"`
	DeliveryType         string    `json:"delivery_type" gorm:"type:text;not null"`
	ExpectedROI          float64   `json:"expected_roi"`
	ExpectedHarvestMonth string    `json:"expected_harvest_month" gorm:"type:text"`
	PayoutStatus         string    `json:"payout_status" gorm:"type:text;not null;default:'pending'"`
	CreatedAt            time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// --- domain conversions ---

func (m Farmer) ToDomain() domain.Farmer {
	return domain.Farmer{
		ID:                 m.ID,
		AccountID:          m.AccountID,
		Name:               m.Name,
		Country:            m.Country,
		Region:             m.Region,
		Address:            m.Address,
		FarmSizeHa:         m.FarmSizeHa,
		Contact:            m.Contact,
		IdentityDocument:   m.IdentityDocument,
		RegistrationStatus: domain.ReviewStatus(m.RegistrationStatus),
		RegisteredAt:       m.RegisteredAt,
	}
}

func (m Crop) ToDomain() domain.Crop {
	return domain.Crop{
		ID:                   m.ID,
		FarmerID:             m.FarmerID,
		CropName:             m.CropName,
		Variety:              m.Variety,
		PlantingDate:         m.PlantingDate,
		ExpectedHarvestMonth: domain.Month(m.ExpectedHarvestMonth),
		FarmLocation:         m.FarmLocation,
		OrganicCertified:     m.OrganicCertified,
	}
}

func (m Token) ToDomain() domain.Token {
	return domain.Token{
		ID:                 m.ID,
		CropID:             m.CropID,
		FarmerID:           m.FarmerID,
		TokenCount:         m.TokenCount,
		PricePerToken:      m.PricePerToken,
		ExpectedYieldUnit:  m.ExpectedYieldUnit,
		ExpectedTotalYield: m.ExpectedTotalYield,
		ExpectedROI:        m.ExpectedROI,
		TokensSold:         m.TokensSold,
		IsFunded:           m.IsFunded,
		FundingDeadline:    m.FundingDeadline,
		Currency:           m.Currency,
		Status:             m.Status,
		TokenStatus:        domain.ReviewStatus(m.TokenStatus),
		CreatedAt:          m.CreatedAt,
	}
}

func (m Investment) ToDomain() domain.Investment {
	return domain.Investment{
		ID:         m.ID,
		TokenID:    m.TokenID,
		InvestorID: m.InvestorID,
		Quantity:   m.Quantity,
		InvestedAt: m.InvestedAt,
	}
}

func (m Contract) ToDomain() domain.Contract {
	return domain.Contract{
		ID:                   m.ID,
		TokenID:              m.TokenID,
		FarmerID:             m.FarmerID,
		InvestorID:           m.InvestorID,
		Quantity:             m.Quantity,
		PricePerToken:        m.PricePerToken,
		TotalValue:           m.TotalValue,
		DeliveryType:         domain.DeliveryType(m.DeliveryType),
		ExpectedROI:          m.ExpectedROI,
		ExpectedHarvestMonth: domain.Month(m.ExpectedHarvestMonth),
		PayoutStatus:         domain.PayoutStatus(m.PayoutStatus),
		CreatedAt:            m.CreatedAt,
	}
}
