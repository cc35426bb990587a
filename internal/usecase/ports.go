package usecase

import (
	"context"

	"github.com/agrovest/agrovest/internal/domain"
)

// AccountRepository defines persistence for login accounts.
type AccountRepository interface {
	Create(ctx context.Context, role domain.Role, email string, hashedPassword string) (domain.Account, error)
	GetByEmail(ctx context.Context, role domain.Role, email string) (domain.Account, string, error)
}

// CatalogRepository defines persistence for farmer profiles and crops.
type CatalogRepository interface {
	CreateFarmer(ctx context.Context, f domain.Farmer) (domain.Farmer, error)
	GetFarmer(ctx context.Context, id uint) (domain.Farmer, error)
	GetFarmerByAccount(ctx context.Context, accountID uint) (domain.Farmer, error)
	UpdateFarmerStatus(ctx context.Context, farmerID uint, status domain.ReviewStatus) (domain.Farmer, error)
	CreateCrop(ctx context.Context, c domain.Crop) (domain.Crop, error)
	GetCrop(ctx context.Context, id uint) (domain.Crop, error)
	ListCropsByFarmer(ctx context.Context, farmerID uint) ([]domain.Crop, error)
}

// TokenRepository defines the token-ledger storage operations.
type TokenRepository interface {
	Create(ctx context.Context, t domain.Token) (domain.Token, error)
	Get(ctx context.Context, id uint) (domain.Token, error)
	ListOpen(ctx context.Context) ([]domain.Token, error)
	ListByCrop(ctx context.Context, cropID uint) ([]domain.Token, error)
	ListVerifiedByFarmer(ctx context.Context, farmerID uint) ([]domain.TokenView, error)
	SetVerificationStatus(ctx context.Context, tokenID uint, status domain.ReviewStatus) (domain.Token, error)
	Reserve(ctx context.Context, tokenID uint, quantity int) (domain.Token, error)
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.TokenView, error)
}

// ContractRepository defines the contract/investment ledger storage
// operations. Creation methods reserve token capacity and persist their rows
// as one atomic unit.
type ContractRepository interface {
	CreateContract(ctx context.Context, tokenID uint, investorID uint, quantity int, deliveryType domain.DeliveryType) (domain.Contract, domain.Token, error)
	CreateInvestment(ctx context.Context, tokenID uint, investorID string, quantity int) (domain.Investment, domain.Token, error)
	ListInvestmentsByInvestor(ctx context.Context, investorID string) ([]domain.Investment, error)
	ListContractsByInvestor(ctx context.Context, investorID uint) ([]domain.Contract, error)
}

// FundingPublisher broadcasts committed reservation events.
type FundingPublisher interface {
	Publish(ctx context.Context, event domain.FundingEvent) error
}

// ViewCache caches token-listing projections per criteria.
type ViewCache interface {
	Get(criteria domain.SearchCriteria) ([]domain.TokenView, bool)
	Set(criteria domain.SearchCriteria, views []domain.TokenView)
}

// PasswordHasher hashes and verifies login passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword string, password string) bool
}

// CredentialIssuer mints opaque bearer credentials for principals.
type CredentialIssuer interface {
	Issue(principal domain.Principal) (string, error)
}
