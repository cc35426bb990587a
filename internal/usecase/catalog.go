package usecase

import (
	"context"

	"github.com/agrovest/agrovest/internal/domain"
)

// CatalogUsecase manages farmer profiles and crop records.
type CatalogUsecase struct {
	catalog CatalogRepository
	tokens  TokenRepository
}

func NewCatalogUsecase(catalog CatalogRepository, tokens TokenRepository) *CatalogUsecase {
	return &CatalogUsecase{catalog: catalog, tokens: tokens}
}

// RegisterFarmerInput is the profile submitted after signup. IdentityDocument
// is the stored path of the uploaded document.
type RegisterFarmerInput struct {
	Name             string
	Country          string
	Region           string
	Address          string
	FarmSizeHa       float64
	Contact          string
	IdentityDocument string
}

func (uc *CatalogUsecase) RegisterFarmer(ctx context.Context, principal domain.Principal, input RegisterFarmerInput) (domain.Farmer, error) {
	if input.Name == "" || input.Country == "" || input.Address == "" {
		return domain.Farmer{}, domain.InvalidArgumentError{Reason: "name, country and address are required"}
	}
	return uc.catalog.CreateFarmer(ctx, domain.Farmer{
		AccountID:        principal.AccountID,
		Name:             input.Name,
		Country:          input.Country,
		Region:           input.Region,
		Address:          input.Address,
		FarmSizeHa:       input.FarmSizeHa,
		Contact:          input.Contact,
		IdentityDocument: input.IdentityDocument,
	})
}

func (uc *CatalogUsecase) UpdateFarmerStatus(ctx context.Context, farmerID uint, status domain.ReviewStatus) (domain.Farmer, error) {
	if !status.Valid() {
		return domain.Farmer{}, domain.InvalidArgumentError{Reason: "unknown registration status"}
	}
	farmer, err := uc.catalog.GetFarmer(ctx, farmerID)
	if err != nil {
		return domain.Farmer{}, err
	}
	if !domain.CanTransition(farmer.RegistrationStatus, status) {
		return domain.Farmer{}, domain.InvalidArgumentError{Reason: "registration status transition not allowed"}
	}
	return uc.catalog.UpdateFarmerStatus(ctx, farmerID, status)
}

// AddCropInput describes a new planted crop.
type AddCropInput struct {
	FarmerID             uint
	CropName             string
	Variety              string
	PlantingDate         string // RFC 3339 date (2006-01-02)
	ExpectedHarvestMonth domain.Month
	FarmLocation         string
	OrganicCertified     bool
}

func (uc *CatalogUsecase) AddCrop(ctx context.Context, input AddCropInput) (domain.Crop, error) {
	if input.CropName == "" {
		return domain.Crop{}, domain.InvalidArgumentError{Reason: "crop_name is required"}
	}
	if !input.ExpectedHarvestMonth.Valid() {
		return domain.Crop{}, domain.InvalidArgumentError{Reason: "expected_harvest_month must be a named month"}
	}
	planting, err := parseDate(input.PlantingDate)
	if err != nil {
		return domain.Crop{}, domain.InvalidArgumentError{Reason: "planting_date must be YYYY-MM-DD"}
	}
	if _, err := uc.catalog.GetFarmer(ctx, input.FarmerID); err != nil {
		return domain.Crop{}, err
	}
	return uc.catalog.CreateCrop(ctx, domain.Crop{
		FarmerID:             input.FarmerID,
		CropName:             input.CropName,
		Variety:              input.Variety,
		PlantingDate:         planting,
		ExpectedHarvestMonth: input.ExpectedHarvestMonth,
		FarmLocation:         input.FarmLocation,
		OrganicCertified:     input.OrganicCertified,
	})
}

func (uc *CatalogUsecase) CropsByFarmer(ctx context.Context, farmerID uint) ([]domain.Crop, error) {
	return uc.catalog.ListCropsByFarmer(ctx, farmerID)
}

// Dashboard is a farmer's own profile plus their verified token listings.
type Dashboard struct {
	Farmer domain.Farmer      `json:"farmer"`
	Tokens []domain.TokenView `json:"tokens"`
}

func (uc *CatalogUsecase) FarmerDashboard(ctx context.Context, principal domain.Principal) (Dashboard, error) {
	farmer, err := uc.catalog.GetFarmerByAccount(ctx, principal.AccountID)
	if err != nil {
		return Dashboard{}, err
	}
	tokens, err := uc.tokens.ListVerifiedByFarmer(ctx, farmer.ID)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Farmer: farmer, Tokens: tokens}, nil
}
