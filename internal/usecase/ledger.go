package usecase

import (
	"context"
	"log/slog"

	"github.com/agrovest/agrovest/internal/domain"
)

// LedgerUsecase owns token issuance, the verification workflow and the
// capacity-reservation primitive.
type LedgerUsecase struct {
	tokens  TokenRepository
	catalog CatalogRepository
	signal  FundingPublisher
}

func NewLedgerUsecase(tokens TokenRepository, catalog CatalogRepository, signal FundingPublisher) *LedgerUsecase {
	return &LedgerUsecase{
		tokens:  tokens,
		catalog: catalog,
		signal:  signal,
	}
}

// TokenizeInput is the supply and terms for a new token issue.
type TokenizeInput struct {
	CropID             uint
	TokenCount         int
	PricePerToken      int
	ExpectedYieldUnit  string
	ExpectedTotalYield int
	ExpectedROI        float64
	FundingDeadline    string // RFC 3339 date (2006-01-02)
	Currency           string
}

func (uc *LedgerUsecase) Tokenize(ctx context.Context, input TokenizeInput) (domain.Token, error) {
	if input.TokenCount <= 0 {
		return domain.Token{}, domain.InvalidArgumentError{Reason: "token_count must be positive"}
	}
	if input.PricePerToken <= 0 {
		return domain.Token{}, domain.InvalidArgumentError{Reason: "price_per_token must be positive"}
	}
	deadline, err := parseDate(input.FundingDeadline)
	if err != nil {
		return domain.Token{}, domain.InvalidArgumentError{Reason: "funding_deadline must be YYYY-MM-DD"}
	}

	crop, err := uc.catalog.GetCrop(ctx, input.CropID)
	if err != nil {
		return domain.Token{}, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "USDT"
	}

	return uc.tokens.Create(ctx, domain.Token{
		CropID:             crop.ID,
		FarmerID:           crop.FarmerID,
		TokenCount:         input.TokenCount,
		PricePerToken:      input.PricePerToken,
		ExpectedYieldUnit:  input.ExpectedYieldUnit,
		ExpectedTotalYield: input.ExpectedTotalYield,
		ExpectedROI:        input.ExpectedROI,
		FundingDeadline:    deadline,
		Currency:           currency,
	})
}

func (uc *LedgerUsecase) ListOpenTokens(ctx context.Context) ([]domain.Token, error) {
	return uc.tokens.ListOpen(ctx)
}

func (uc *LedgerUsecase) TokensByCrop(ctx context.Context, cropID uint) ([]domain.Token, error) {
	return uc.tokens.ListByCrop(ctx, cropID)
}

func (uc *LedgerUsecase) TokensByFarmer(ctx context.Context, farmerID uint) ([]domain.TokenView, error) {
	return uc.tokens.ListVerifiedByFarmer(ctx, farmerID)
}

func (uc *LedgerUsecase) SetVerificationStatus(ctx context.Context, tokenID uint, status domain.ReviewStatus) (domain.Token, error) {
	if !status.Valid() {
		return domain.Token{}, domain.InvalidArgumentError{Reason: "unknown token status"}
	}
	token, err := uc.tokens.Get(ctx, tokenID)
	if err != nil {
		return domain.Token{}, err
	}
	if !domain.CanTransition(token.TokenStatus, status) {
		return domain.Token{}, domain.InvalidArgumentError{Reason: "token status transition not allowed"}
	}
	return uc.tokens.SetVerificationStatus(ctx, tokenID, status)
}

// ReserveCapacity sells quantity units of a token and broadcasts the new
// funding state. The broadcast is best effort; the committed reservation is
// the source of truth.
func (uc *LedgerUsecase) ReserveCapacity(ctx context.Context, tokenID uint, quantity int) (domain.Token, error) {
	token, err := uc.tokens.Reserve(ctx, tokenID, quantity)
	if err != nil {
		return domain.Token{}, err
	}
	uc.publish(ctx, token)
	return token, nil
}

func (uc *LedgerUsecase) publish(ctx context.Context, token domain.Token) {
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
