package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/agrovest/agrovest/internal/domain"
	"github.com/agrovest/agrovest/internal/infra/database/models"
)

// CatalogRepository persists farmer profiles and crop records.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateFarmer(ctx context.Context, f domain.Farmer) (domain.Farmer, error) {
	row := models.Farmer{
		AccountID:          f.AccountID,
		Name:               f.Name,
		Country:            f.Country,
		Region:             f.Region,
		Address:            f.Address,
		FarmSizeHa:         f.FarmSizeHa,
		Contact:            f.Contact,
		IdentityDocument:   f.IdentityDocument,
		RegistrationStatus: string(domain.ReviewPending),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Farmer{}, err
	}
	return row.ToDomain(), nil
}

func (r *CatalogRepository) GetFarmer(ctx context.Context, id uint) (domain.Farmer, error) {
	var row models.Farmer
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Farmer{}, domain.NotFoundError{Resource: "farmer"}
	}
	if err != nil {
		return domain.Farmer{}, err
	}
	return row.ToDomain(), nil
}

func (r *CatalogRepository) GetFarmerByAccount(ctx context.Context, accountID uint) (domain.Farmer, error) {
	var row models.Farmer
	err := r.db.WithContext(ctx).Take(&row, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Farmer{}, domain.NotFoundError{Resource: "farmer profile"}
	}
	if err != nil {
		return domain.Farmer{}, err
	}
	return row.ToDomain(), nil
}

func (r *CatalogRepository) UpdateFarmerStatus(ctx context.Context, farmerID uint, status domain.ReviewStatus) (domain.Farmer, error) {
	var updated models.Farmer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Take(&updated, "id = ?", farmerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "farmer"}
		}
		if err != nil {
			return err
		}
		updated.RegistrationStatus = string(status)
		return tx.Model(&models.Farmer{}).
			Where("id = ?", farmerID).
			Update("registration_status", string(status)).Error
	})
	if err != nil {
		return domain.Farmer{}, err
	}
	return updated.ToDomain(), nil
}

func (r *CatalogRepository) CreateCrop(ctx context.Context, c domain.Crop) (domain.Crop, error) {
	row := models.Crop{
		FarmerID:             c.FarmerID,
		CropName:             c.CropName,
		Variety:              c.Variety,
		PlantingDate:         c.PlantingDate,
		ExpectedHarvestMonth: string(c.ExpectedHarvestMonth),
		FarmLocation:         c.FarmLocation,
		OrganicCertified:     c.OrganicCertified,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Crop{}, err
	}
	return row.ToDomain(), nil
}

func (r *CatalogRepository) GetCrop(ctx context.Context, id uint) (domain.Crop, error) {
	var row models.Crop
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Crop{}, domain.NotFoundError{Resource: "crop"}
	}
	if err != nil {
		return domain.Crop{}, err
	}
	return row.ToDomain(), nil
}

func (r *CatalogRepository) ListCropsByFarmer(ctx context.Context, farmerID uint) ([]domain.Crop, error) {
	var rows []models.Crop
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	crops := make([]domain.Crop, 0, len(rows))
	for _, row := range rows {
		crops = append(crops, row.ToDomain())
	}
	return crops, nil
}
