package service

import (
	"context"
	"fmt"
	"strings"

	"game-deals/internal/api"
	"game-deals/internal/catalog"
	"game-deals/internal/constants"
	"game-deals/internal/domain"
	"game-deals/internal/pricing"
	"game-deals/internal/repository"

	"github.com/rs/zerolog"
)

type GameCard struct {
	Game       domain.Game          `json:"game"`
	Deal       *pricing.DealSummary `json:"deal,omitempty"`
	InWishlist bool                 `json:"inWishlist"`
}

type CatalogPage struct {
	Region   domain.Region `json:"region"`
	Games    []GameCard    `json:"games"`
	Advisory *Advisory     `json:"advisory,omitempty"`
}

type OfferView struct {
	domain.StoreOffer
	StoreName       string `json:"storeName"`
	Display         string `json:"display"`
	OriginalDisplay string `json:"originalDisplay,omitempty"`
	Best            bool   `json:"best"`
}

type GameDetail struct {
	Game            domain.Game          `json:"game"`
	Region          domain.Region        `json:"region"`
	Offers          []OfferView          `json:"offers"`
	Deal            *pricing.DealSummary `json:"deal,omitempty"`
	HeaderImage     string               `json:"headerImage"`
	BackgroundImage string               `json:"backgroundImage"`
	// Estimated is set when no store listed the game and prices come from the regional tables.
	Estimated  bool      `json:"estimated"`
	InWishlist bool      `json:"inWishlist"`
	PriceAlert *float64  `json:"priceAlert,omitempty"`
	// CheapestEver is the historical low converted to the region's currency.
	CheapestEver *HistoricalLow `json:"cheapestEver,omitempty"`
	Advisory     *Advisory      `json:"advisory,omitempty"`
}

type HistoricalLow struct {
	Price   float64 `json:"price"`
	Display string  `json:"display"`
	Date    string  `json:"date,omitempty"`
}

type PriceQuote struct {
	Title    string        `json:"title"`
	Store    domain.Store  `json:"store"`
	Region   domain.Region `json:"region"`
	Price    float64       `json:"price"`
	Display  string        `json:"display"`
	Currency string        `json:"currency"`
}

type CatalogService struct {
	source   DealsSource
	resolver *pricing.Resolver
	wishlist *repository.WishlistRepository
	settings *repository.SettingsRepository
	logger   zerolog.Logger
}

func NewCatalogService(source DealsSource, resolver *pricing.Resolver, wishlist *repository.WishlistRepository, settings *repository.SettingsRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{source: source, resolver: resolver, wishlist: wishlist, settings: settings, logger: logger}
}

// Search runs the catalog view: fetch candidates upstream, price them for the region
// and apply the filter locally.
func (s *CatalogService) Search(ctx context.Context, filter catalog.Filter, regionCode string) (*CatalogPage, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	region := regionFor(ctx, regionCode, s.settings, s.resolver, s.logger)
	s.logger.Info().Str("query", filter.Query).Str("sort", filter.Sort).Str("region", region.Code).Msg("searching catalog")

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	var games []domain.Game
	if filter.Query != "" {
		games, err = s.source.SearchByTitle(apiCtx, filter.Query, constants.MaxFilterLimit)
	} else {
		games, err = s.source.ListDeals(apiCtx, api.DealQuery{PageSize: constants.MaxFilterLimit, SortBy: api.SortDeals, Desc: true})
	}
	if err != nil {
		return s.degraded(region, err)
	}

	matched, err := catalog.Apply(s.localizeAll(games, region), filter)
	if err != nil {
		return nil, err
	}

	page := &CatalogPage{Region: region, Games: s.cards(ctx, matched, region)}
	s.logger.Info().Int("count", len(page.Games)).Str("region", region.Code).Msg("search completed")
	return page, nil
}

// ListDeals lists upstream deals as they are ordered by the source.
func (s *CatalogService) ListDeals(ctx context.Context, q api.DealQuery, regionCode string) (*CatalogPage, error) {
	if q.Store != "" {
		store, err := domain.ParseStore(string(q.Store))
		if err != nil {
			return nil, err
		}
		q.Store = store
	}
	if q.PageSize <= 0 || q.PageSize > constants.MaxFilterLimit {
		q.PageSize = constants.DealsPageSize
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()
	region := regionFor(ctx, regionCode, s.settings, s.resolver, s.logger)

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	games, err := s.source.ListDeals(apiCtx, q)
	if err != nil {
		return s.degraded(region, err)
	}
	return &CatalogPage{Region: region, Games: s.cards(ctx, s.localizeAll(games, region), region)}, nil
}

func (s *CatalogService) FreeGames(ctx context.Context, regionCode string) (*CatalogPage, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()
	region := regionFor(ctx, regionCode, s.settings, s.resolver, s.logger)

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	games, err := s.source.FreeDeals(apiCtx, constants.FreeGamesLimit)
	if err != nil {
		return s.degraded(region, err)
	}
	return &CatalogPage{Region: region, Games: s.cards(ctx, s.localizeAll(games, region), region)}, nil
}

// HotDeals keeps sale listings whose discount in the region reaches HotDealMinPercent.
func (s *CatalogService) HotDeals(ctx context.Context, regionCode string) (*CatalogPage, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()
	region := regionFor(ctx, regionCode, s.settings, s.resolver, s.logger)

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	games, err := s.source.ListDeals(apiCtx, api.DealQuery{
		PageSize:   constants.MaxFilterLimit,
		SortBy:     api.SortSavings,
		Desc:       true,
		OnSaleOnly: true,
	})
	if err != nil {
		return s.degraded(region, err)
	}

	var hot []domain.Game
	for _, g := range s.localizeAll(games, region) {
		if pricing.MaxDiscount(g.Stores) >= constants.HotDealMinPercent {
			hot = append(hot, g)
		}
		if len(hot) == constants.DealsPageSize {
			break
		}
	}
	return &CatalogPage{Region: region, Games: s.cards(ctx, hot, region)}, nil
}

// GetGame builds the detail view. When the source is down, a wishlisted game is
// served from its stored snapshot together with an advisory.
func (s *CatalogService) GetGame(ctx context.Context, id, regionCode string) (*GameDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalidGame)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()
	region := regionFor(ctx, regionCode, s.settings, s.resolver, s.logger)

	s.logger.Debug().Str("game_id", id).Str("region", region.Code).Msg("getting game")

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	var advisory *Advisory
	game, err := s.source.GameDetails(apiCtx, id)
	if err != nil {
		advisory, err = advisoryFor(err)
		if err != nil {
			return nil, err
		}
		entry, werr := s.wishlist.Get(ctx, id)
		if werr != nil {
			s.logger.Warn().Str("game_id", id).Msg("deals source unavailable and game not in wishlist")
			return nil, fmt.Errorf("failed to fetch game %s: %w", id, domain.ErrServiceUnavailable)
		}
		game = entry.Game
	}

	detail := s.detail(game, region)
	detail.Advisory = advisory
	if entry, err := s.wishlist.Get(ctx, id); err == nil {
		detail.InWishlist = true
		detail.PriceAlert = entry.PriceAlert
	}
	return detail, nil
}

func (s *CatalogService) detail(game domain.Game, region domain.Region) *GameDetail {
	d := &GameDetail{
		Region:          region,
		HeaderImage:     api.ImageURL(game, api.ImageHeader),
		BackgroundImage: api.ImageURL(game, api.ImageBackground),
	}

	// the low is not tied to a store; steam's regional profile stands in
	if low := game.CheapestEver; low != nil {
		price := s.resolver.Convert(domain.StoreSteam, region.Code, low.Price)
		d.CheapestEver = &HistoricalLow{
			Price:   price,
			Display: pricing.FormatForRegion(price, region),
			Date:    low.Date,
		}
	}

	if len(game.Stores) == 0 {
		game.Stores = s.resolver.MultiStorePricing(game.Title, region.Code, s.resolver.DefaultBase())
		d.Estimated = true
	} else {
		game = localize(s.resolver, game, region.Code)
	}
	d.Game = game

	if summary, err := pricing.Summarize(game.Stores, region); err == nil {
		d.Deal = &summary
	}

	d.Offers = make([]OfferView, 0, len(game.Stores))
	bestMarked := false
	for _, o := range game.Stores {
		v := OfferView{
			StoreOffer: o,
			StoreName:  o.Store.Name(),
			Display:    pricing.FormatForRegion(o.Price, region),
		}
		v.URL = api.OfferURL(o, game.Title)
		if o.OriginalPrice != nil && o.Discount != nil {
			v.OriginalDisplay = pricing.FormatForRegion(*o.OriginalPrice, region)
		}
		// first cheapest offer, matching SelectBestDeal
		if !bestMarked && d.Deal != nil && o.Store == d.Deal.Best.Store && o.Price == d.Deal.Best.Price {
			v.Best = true
			bestMarked = true
		}
		d.Offers = append(d.Offers, v)
	}
	return d
}

// ResolvePrice prices a title at one store. A nil base uses the default base price.
func (s *CatalogService) ResolvePrice(ctx context.Context, title, store, regionCode string, base *float64) (*PriceQuote, error) {
	st, err := domain.ParseStore(store)
	if err != nil {
		return nil, err
	}
	region := regionFor(ctx, regionCode, s.settings, s.resolver, s.logger)

	var price float64
	if base == nil {
		price = s.resolver.Resolve(title, st, region.Code)
	} else {
		price = s.resolver.ResolveFrom(title, st, region.Code, *base)
	}
	return &PriceQuote{
		Title:    title,
		Store:    st,
		Region:   region,
		Price:    price,
		Display:  pricing.FormatForRegion(price, region),
		Currency: region.CurrencyCode,
	}, nil
}

func (s *CatalogService) Regions() []domain.Region {
	return s.resolver.Regions()
}

// Stores lists the supported storefronts, falling back to the built-in list when the
// source cannot be reached.
func (s *CatalogService) Stores(ctx context.Context) ([]domain.StoreInfo, *Advisory, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	stores, err := s.source.Stores(apiCtx)
	if err == nil {
		return stores, nil, nil
	}
	advisory, err := advisoryFor(err)
	if err != nil {
		return nil, nil, err
	}
	fallback := make([]domain.StoreInfo, 0, len(domain.Stores))
	for _, st := range domain.Stores {
		fallback = append(fallback, st.Info())
	}
	return fallback, advisory, nil
}

func (s *CatalogService) degraded(region domain.Region, err error) (*CatalogPage, error) {
	advisory, err := advisoryFor(err)
	if err != nil {
		s.logger.Error().Err(err).Msg("deals source failed")
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	s.logger.Warn().Str("region", region.Code).Msg("deals source unavailable, returning empty page")
	return &CatalogPage{Region: region, Games: []GameCard{}, Advisory: advisory}, nil
}

func (s *CatalogService) localizeAll(games []domain.Game, region domain.Region) []domain.Game {
	out := make([]domain.Game, len(games))
	for i, g := range games {
		out[i] = localize(s.resolver, g, region.Code)
	}
	return out
}

// cards expects games already priced for region.
func (s *CatalogService) cards(ctx context.Context, games []domain.Game, region domain.Region) []GameCard {
	tracked := make(map[string]struct{})
	if entries, err := s.wishlist.List(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to load wishlist for catalog cards")
	} else {
		for _, e := range entries {
			tracked[e.Game.ID] = struct{}{}
		}
	}

	cards := make([]GameCard, 0, len(games))
	for _, g := range games {
		if g.Image == "" {
			g.Image = api.ImageURL(g, api.ImageLibrary)
		}
		card := GameCard{Game: g}
		if summary, err := pricing.Summarize(g.Stores, region); err == nil {
			card.Deal = &summary
		}
		_, card.InWishlist = tracked[g.ID]
		cards = append(cards, card)
	}
	return cards
}
