package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrovest/agrovest/internal/domain"
	"github.com/agrovest/agrovest/internal/infra/database/models"
)

// TokenRepository owns the token ledger: supply counters, funding flags and
// the verification workflow.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, t domain.Token) (domain.Token, error) {
	row := models.Token{
		CropID:             t.CropID,
		FarmerID:           t.FarmerID,
		TokenCount:         t.TokenCount,
		PricePerToken:      t.PricePerToken,
		ExpectedYieldUnit:  t.ExpectedYieldUnit,
		ExpectedTotalYield: t.ExpectedTotalYield,
		ExpectedROI:        t.ExpectedROI,
		TokensSold:         0,
		IsFunded:           false,
		FundingDeadline:    t.FundingDeadline,
		Currency:           t.Currency,
		Status:             domain.FundingOpen,
		TokenStatus:        string(domain.ReviewPending),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Token{}, err
	}
	return row.ToDomain(), nil
}

func (r *TokenRepository) Get(ctx context.Context, id uint) (domain.Token, error) {
	var row models.Token
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Token{}, domain.NotFoundError{Resource: "token"}
	}
	if err != nil {
		return domain.Token{}, err
	}
	return row.ToDomain(), nil
}

func (r *TokenRepository) ListOpen(ctx context.Context) ([]domain.Token, error) {
	var rows []models.Token
	err := r.db.WithContext(ctx).
		Where("is_funded = ?", false).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainTokens(rows), nil
}

func (r *TokenRepository) ListByCrop(ctx context.Context, cropID uint) ([]domain.Token, error) {
	var rows []models.Token
	err := r.db.WithContext(ctx).
		Where("crop_id = ?", cropID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainTokens(rows), nil
}

func (r *TokenRepository) SetVerificationStatus(ctx context.Context, tokenID uint, status domain.ReviewStatus) (domain.Token, error) {
	var updated models.Token
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Take(&updated, "id = ?", tokenID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "token"}
		}
		if err != nil {
			return err
		}
		updated.TokenStatus = string(status)
		return tx.Model(&models.Token{}).
			Where("id = ?", tokenID).
			Update("token_status", string(status)).Error
	})
	if err != nil {
		return domain.Token{}, err
	}
	return updated.ToDomain(), nil
}

// Reserve atomically consumes quantity units of the token's remaining supply.
// The row is locked for the duration of the transaction so concurrent
// reservations against the same token serialize instead of overselling.
func (r *TokenRepository) Reserve(ctx context.Context, tokenID uint, quantity int) (domain.Token, error) {
	var reserved domain.Token
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reserved, err = reserveCapacity(tx, tokenID, quantity)
		return err
	})
	if err != nil {
		return domain.Token{}, err
	}
	return reserved, nil
}

// reserveCapacity is the shared ledger primitive behind investments and
// contracts. It must run inside a transaction; the FOR UPDATE lock holds
// until that transaction commits, so the sale it is part of commits as one
// unit with the counter increment.
func reserveCapacity(tx *gorm.DB, tokenID uint, quantity int) (domain.Token, error) {
	var row models.Token
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&row, "id = ?", tokenID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Token{}, domain.NotFoundError{Resource: "token"}
	}
	if err != nil {
		return domain.Token{}, err
	}

	tok := row.ToDomain()
	if err := tok.Reserve(quantity); err != nil {
		return domain.Token{}, err
	}

	err = tx.Model(&models.Token{}).
		Where("id = ?", tokenID).
		Updates(map[string]any{
			"tokens_sold": tok.TokensSold,
			"is_funded":   tok.IsFunded,
			"status":      tok.Status,
		}).Error
	if err != nil {
		return domain.Token{}, err
	}
	return tok, nil
}

// Search runs the filtered token listing. Criteria referencing crop or farmer
// columns join through; enrichment preloads the same relations and rows whose
// crop or farmer is missing are skipped rather than failing the query.
func (r *TokenRepository) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.TokenView, error) {
	q := r.db.WithContext(ctx).Model(&models.Token{}).
		Joins("LEFT JOIN crops ON crops.id = tokens.crop_id").
		Joins("LEFT JOIN farmers ON farmers.id = tokens.farmer_id").
		Preload("Crop").
		Preload("Crop.Farmer")

	if c.FundedOnly != nil {
		q = q.Where("tokens.is_funded = ?", *c.FundedOnly)
	} else if c.DefaultsToOpen() {
		q = q.Where("tokens.status = ?", domain.FundingOpen)
	}
	if c.Status != "" {
		q = q.Where("tokens.status ILIKE ?", c.Status)
	}
	if c.Country != "" {
		q = q.Where("farmers.country ILIKE ?", "%"+c.Country+"%")
	}
	if c.Region != "" {
		q = q.Where("farmers.region ILIKE ?", "%"+c.Region+"%")
	}
	if c.CropName != "" {
		q = q.Where("crops.crop_name ILIKE ?", "%"+c.CropName+"%")
	}
	if c.CropVariety != "" {
		q = q.Where("crops.variety ILIKE ?", "%"+c.CropVariety+"%")
	}
	if c.FarmerID != nil {
		q = q.Where("tokens.farmer_id = ?", *c.FarmerID)
	}
	if c.MinROI != nil {
		q = q.Where("tokens.expected_roi >= ?", *c.MinROI)
	}
	if c.Deadline != nil {
		q = q.Where("tokens.funding_deadline <= ?", *c.Deadline)
	}
	if c.CreatedAfter != nil {
		q = q.Where("tokens.created_at >= ?", *c.CreatedAfter)
	}
	if c.OrganicOnly {
		q = q.Where("crops.organic_certified = ?", true)
	}

	var rows []models.Token
	if err := q.Order("tokens.created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return composeViews(rows), nil
}

// ListVerifiedByFarmer returns the enriched listing of a farmer's verified
// tokens, for the farmer dashboard.
func (r *TokenRepository) ListVerifiedByFarmer(ctx context.Context, farmerID uint) ([]domain.TokenView, error) {
	var rows []models.Token
	err := r.db.WithContext(ctx).Model(&models.Token{}).
		Preload("Crop").
		Preload("Crop.Farmer").
		Where("farmer_id = ? AND token_status = ?", farmerID, string(domain.ReviewVerified)).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return composeViews(rows), nil
}

func composeViews(rows []models.Token) []domain.TokenView {
	views := make([]domain.TokenView, 0, len(rows))
	for _, row := range rows {
		if row.Crop.ID == 0 || row.Crop.Farmer.ID == 0 {
			// broken join, skip the row instead of failing the listing
			continue
		}
		views = append(views, domain.NewTokenView(
			row.ToDomain(),
			row.Crop.ToDomain(),
			row.Crop.Farmer.ToDomain(),
		))
	}
	return views
}

func toDomainTokens(rows []models.Token) []domain.Token {
	tokens := make([]domain.Token, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, row.ToDomain())
	}
	return tokens
}
