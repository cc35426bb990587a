package domain

import "time"

// Month is a named harvest month.
type Month string

const (
	January   Month = "January"
	February  Month = "February"
	March     Month = "March"
	April     Month = "April"
	May       Month = "May"
	June      Month = "June"
	July      Month = "July"
	August    Month = "August"
	September Month = "September"
	October   Month = "October"
	November  Month = "November"
	December  Month = "December"
)

// Valid reports whether m is one of the twelve named months.
func (m Month) Valid() bool {
	switch m {
	case January, February, March, April, May, June,
		July, August, September, October, November, December:
		return true
	}
	return false
}

// Crop is a planted crop registered by a farmer. Crops are immutable after
// creation; tokens reference them for harvest terms.
type Crop struct {
	ID                   uint      `json:"id"`
	FarmerID             uint      `json:"farmer_id"`
	CropName             string    `json:"crop_name"`
	Variety              string    `json:"variety,omitempty"`
	PlantingDate         time.Time `json:"planting_date"`
	ExpectedHarvestMonth Month     `json:"expected_harvest_month"`
	FarmLocation         string    `json:"farm_location,omitempty"`
	OrganicCertified     bool      `json:"organic_certified"`
}
