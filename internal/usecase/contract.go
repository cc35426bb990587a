package usecase

import (
	"context"
	"log/slog"

	"github.com/agrovest/agrovest/internal/domain"
)

// ContractUsecase records token sales: delivery contracts and the legacy
// plain-investment path.
type ContractUsecase struct {
	contracts ContractRepository
	signal    FundingPublisher
}

func NewContractUsecase(contracts ContractRepository, signal FundingPublisher) *ContractUsecase {
	return &ContractUsecase{contracts: contracts, signal: signal}
}

// CreateContractInput is an investor's purchase with delivery terms.
type CreateContractInput struct {
	TokenID      uint
	Quantity     int
	DeliveryType domain.DeliveryType
}

func (uc *ContractUsecase) CreateContract(ctx context.Context, investor domain.Principal, input CreateContractInput) (domain.Contract, error) {
	if !input.DeliveryType.Valid() {
		return domain.Contract{}, domain.InvalidArgumentError{Reason: "delivery_type must be 'money' or 'product'"}
	}
	contract, token, err := uc.contracts.CreateContract(ctx, input.TokenID, investor.AccountID, input.Quantity, input.DeliveryType)
	if err != nil {
		return domain.Contract{}, err
	}
	uc.publish(ctx, token)
	return contract, nil
}

// InvestInput is the legacy sale: the investor is an opaque string.
type InvestInput struct {
	TokenID    uint
	InvestorID string
	Quantity   int
}

func (uc *ContractUsecase) Invest(ctx context.Context, input InvestInput) (domain.Investment, error) {
	if input.InvestorID == "" {
		return domain.Investment{}, domain.InvalidArgumentError{Reason: "investor_id is required"}
	}
	investment, token, err := uc.contracts.CreateInvestment(ctx, input.TokenID, input.InvestorID, input.Quantity)
	if err != nil {
		return domain.Investment{}, err
	}
	uc.publish(ctx, token)
	return investment, nil
}

func (uc *ContractUsecase) InvestmentsByInvestor(ctx context.Context, investorID string) ([]domain.Investment, error) {
	return uc.contracts.ListInvestmentsByInvestor(ctx, investorID)
}

func (uc *ContractUsecase) ContractsByInvestor(ctx context.Context, investorID uint) ([]domain.Contract, error) {
	return uc.contracts.ListContractsByInvestor(ctx, investorID)
}

func (uc *ContractUsecase) publish(ctx context.Context, token domain.Token) {
	if uc.signal == nil {
		return
	}
	event := domain.FundingEvent{
		TokenID:    token.ID,
		TokensSold: token.TokensSold,
		TokenCount: token.TokenCount,
		IsFunded:   token.IsFunded,
	}
	if err := uc.signal.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish funding event",
			slog.Uint64("token_id", uint64(token.ID)),
			slog.String("error", err.Error()),
		)
	}
}
