package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/agrovest/agrovest/internal/domain"
	"github.com/agrovest/agrovest/internal/infra/database/models"
)

// AccountRepository persists the two structurally identical account tables,
// switched by role.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, role domain.Role, email string, hashedPassword string) (domain.Account, error) {
	switch role {
	case domain.RoleFarmer:
		row := models.FarmerAccount{Email: email, HashedPassword: hashedPassword}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return domain.Account{}, translateCreateErr(err)
		}
		return domain.Account{ID: row.ID, Email: row.Email, CreatedAt: row.CreatedAt}, nil
	case domain.RoleInvestor:
		row := models.InvestorAccount{Email: email, HashedPassword: hashedPassword}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return domain.Account{}, translateCreateErr(err)
		}
		return domain.Account{ID: row.ID, Email: row.Email, CreatedAt: row.CreatedAt}, nil
	}
	return domain.Account{}, domain.InvalidArgumentError{Reason: "unknown role"}
}

func (r *AccountRepository) GetByEmail(ctx context.Context, role domain.Role, email string) (domain.Account, string, error) {
	switch role {
	case domain.RoleFarmer:
		var row models.FarmerAccount
		err := r.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, "", domain.NotFoundError{Resource: "farmer account"}
		}
		if err != nil {
			return domain.Account{}, "", err
		}
		return domain.Account{ID: row.ID, Email: row.Email, CreatedAt: row.CreatedAt}, row.HashedPassword, nil
	case domain.RoleInvestor:
		var row models.InvestorAccount
		err := r.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, "", domain.NotFoundError{Resource: "investor account"}
		}
		if err != nil {
			return domain.Account{}, "", err
		}
		return domain.Account{ID: row.ID, Email: row.Email, CreatedAt: row.CreatedAt}, row.HashedPassword, nil
	}
	return domain.Account{}, "", domain.InvalidArgumentError{Reason: "unknown role"}
}

func translateCreateErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrEmailTaken
	}
	return err
}
