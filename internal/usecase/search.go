package usecase

import (
	"context"

	"github.com/agrovest/agrovest/internal/domain"
)

// SearchUsecase serves the filtered token listing, read-through cached.
type SearchUsecase struct {
	tokens TokenRepository
	cache  ViewCache
}

func NewSearchUsecase(tokens TokenRepository, cache ViewCache) *SearchUsecase {
	return &SearchUsecase{tokens: tokens, cache: cache}
}

func (uc *SearchUsecase) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.TokenView, error) {
	if uc.cache != nil {
		if views, ok := uc.cache.Get(criteria); ok {
			return views, nil
		}
	}

	views, err := uc.tokens.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Set(criteria, views)
	}
	return views, nil
}
