package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/agrovest/agrovest/internal/domain"
	"github.com/agrovest/agrovest/internal/infra/database/models"
)

// ContractRepository appends contract and investment ledger entries. Every
// write shares a transaction with the token-capacity reservation, so a sale
// is never observable half-applied.
type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// CreateContract reserves capacity, snapshots the token's current terms into
// a contract row and appends the derived legacy investment row, all in one
// transaction.
func (r *ContractRepository) CreateContract(ctx context.Context, tokenID uint, investorID uint, quantity int, deliveryType domain.DeliveryType) (domain.Contract, domain.Token, error) {
	var contract domain.Contract
	var reserved domain.Token

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tok, err := reserveCapacity(tx, tokenID, quantity)
		if err != nil {
			return err
		}

		var crop models.Crop
		err = tx.Take(&crop, "id = ?", tok.CropID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "crop"}
		}
		if err != nil {
			return err
		}

		row := models.Contract{
			TokenID:              tokenID,
			FarmerID:             tok.FarmerID,
			InvestorID:           investorID,
			Quantity:             quantity,
			PricePerToken:        tok.PricePerToken,
			TotalValue:           quantity * tok.PricePerToken,
			DeliveryType:         string(deliveryType),
			ExpectedROI:          tok.ExpectedROI,
			ExpectedHarvestMonth: crop.ExpectedHarvestMonth,
			PayoutStatus:         string(domain.PayoutPending),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		legacy := domain.InvestmentFromContract(row.ToDomain())
		investmentRow := models.Investment{
			TokenID:    legacy.TokenID,
			InvestorID: legacy.InvestorID,
			Quantity:   legacy.Quantity,
		}
		if err := tx.Create(&investmentRow).Error; err != nil {
			return err
		}

		contract = row.ToDomain()
		reserved = tok
		return nil
	})
	if err != nil {
		return domain.Contract{}, domain.Token{}, err
	}
	return contract, reserved, nil
}

// CreateInvestment is the legacy sale path: reservation plus a bare
// investment row.
func (r *ContractRepository) CreateInvestment(ctx context.Context, tokenID uint, investorID string, quantity int) (domain.Investment, domain.Token, error) {
	var investment domain.Investment
	var reserved domain.Token

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tok, err := reserveCapacity(tx, tokenID, quantity)
		if err != nil {
			return err
		}

		row := models.Investment{
			TokenID:    tokenID,
			InvestorID: investorID,
			Quantity:   quantity,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		investment = row.ToDomain()
		reserved = tok
		return nil
	})
	if err != nil {
		return domain.Investment{}, domain.Token{}, err
	}
	return investment, reserved, nil
}

func (r *ContractRepository) ListInvestmentsByInvestor(ctx context.Context, investorID string) ([]domain.Investment, error) {
	var rows []models.Investment
	err := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("invested_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	investments := make([]domain.Investment, 0, len(rows))
	for _, row := range rows {
		investments = append(investments, row.ToDomain())
	}
	return investments, nil
}

// ListContractsByInvestor returns the investor's contracts enriched with crop
// name and variety. Missing token or crop joins leave those fields empty
// instead of failing the listing.
func (r *ContractRepository) ListContractsByInvestor(ctx context.Context, investorID uint) ([]domain.Contract, error) {
	var rows []models.Contract
	err := r.db.WithContext(ctx).
		Preload("Token.Crop").
		Where("investor_id = ?", investorID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	contracts := make([]domain.Contract, 0, len(rows))
	for _, row := range rows {
		c := row.ToDomain()
		if row.Token.ID != 0 && row.Token.Crop.ID != 0 {
			c.CropName = row.Token.Crop.CropName
			c.CropVariety = row.Token.Crop.Variety
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}
