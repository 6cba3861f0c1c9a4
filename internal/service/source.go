package service

import (
	"context"
	"errors"

	"game-deals/internal/api"
	"game-deals/internal/domain"
	"game-deals/internal/pricing"
	"game-deals/internal/repository"

	"github.com/rs/zerolog"
)

// DealsSource is the upstream game and deal catalog. Offers are priced in USD.
type DealsSource interface {
	SearchByTitle(ctx context.Context, title string, limit int) ([]domain.Game, error)
	ListDeals(ctx context.Context, q api.DealQuery) ([]domain.Game, error)
	FreeDeals(ctx context.Context, limit int) ([]domain.Game, error)
	GameDetails(ctx context.Context, id string) (domain.Game, error)
	Stores(ctx context.Context) ([]domain.StoreInfo, error)
}

// Advisory tells the caller that results are degraded and whether retrying may help.
type Advisory struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

var unavailableAdvisory = Advisory{
	Message:   "Deals are temporarily unavailable. Please try again in a moment.",
	Retryable: true,
}

// advisoryFor turns upstream unavailability into an advisory. Any other error is
// returned unchanged.
func advisoryFor(err error) (*Advisory, error) {
	if errors.Is(err, domain.ErrServiceUnavailable) {
		a := unavailableAdvisory
		return &a, nil
	}
	return nil, err
}

// regionFor resolves the pricing region for a request. An empty code falls back to
// the persisted selection; codes missing from the table format as USD.
func regionFor(ctx context.Context, code string, settings *repository.SettingsRepository, resolver *pricing.Resolver, logger zerolog.Logger) domain.Region {
	if code == "" {
		s, err := settings.Get(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load selected region, using default")
		}
		code = s.SelectedRegion
	}
	return resolver.RegionOrDefault(code)
}

func localize(resolver *pricing.Resolver, g domain.Game, region string) domain.Game {
	g.Stores = resolver.LocalizeOffers(g.Title, g.Stores, region)
	return g
}
