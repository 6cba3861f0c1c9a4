package api

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"game-deals/internal/domain"
	"game-deals/internal/pricing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// StaticCatalog serves deals from a fixed game database held in memory.
type StaticCatalog struct {
	games  []domain.Game
	byID   map[string]int
	logger zerolog.Logger
}

type catalogFile struct {
	Games []domain.Game `yaml:"games"`
}

func NewStaticCatalog(logger zerolog.Logger) (*StaticCatalog, error) {
	return LoadStaticCatalog(defaultCatalog, logger)
}

func LoadStaticCatalog(data []byte, logger zerolog.Logger) (*StaticCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &StaticCatalog{
		games:  make([]domain.Game, 0, len(file.Games)),
		byID:   make(map[string]int, len(file.Games)),
		logger: logger,
	}
	for _, g := range file.Games {
		if g.ID == "" || g.Title == "" {
			return nil, fmt.Errorf("%w: catalog entry without id or title", domain.ErrInvalidGame)
		}
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate catalog id %q", domain.ErrInvalidGame, g.ID)
		}
		for i, o := range g.Stores {
			store, err := domain.ParseStore(string(o.Store))
			if err != nil {
				return nil, fmt.Errorf("catalog game %q: %w", g.ID, err)
			}
			if o.Price < 0 {
				return nil, fmt.Errorf("%w: negative price for %q at %s", domain.ErrInvalidGame, g.ID, store)
			}
			o.Store = store
			o.Discount = nil
			if o.OriginalPrice != nil {
				if pct, ok := pricing.ComputeDiscount(*o.OriginalPrice, o.Price); ok {
					o.Discount = domain.Int(pct)
				}
			}
			o.URL = OfferURL(o, g.Title)
			g.Stores[i] = o
		}
		if g.Image == "" {
			g.Image = ImageURL(g, ImageLibrary)
		}
		c.byID[g.ID] = len(c.games)
		c.games = append(c.games, g)
	}

	logger.Debug().Int("games", len(c.games)).Msg("static catalog loaded")
	return c, nil
}

func (c *StaticCatalog) SearchByTitle(_ context.Context, title string, limit int) ([]domain.Game, error) {
	needle := strings.ToLower(strings.TrimSpace(title))
	var out []domain.Game
	for _, g := range c.games {
		if needle == "" || strings.Contains(strings.ToLower(g.Title), needle) {
			out = append(out, clone(g))
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListDeals mirrors the upstream deals listing: a store filter narrows each game to
// that store's offer.
func (c *StaticCatalog) ListDeals(_ context.Context, q DealQuery) ([]domain.Game, error) {
	var out []domain.Game
	for _, g := range c.games {
		g = clone(g)
		if q.Store != "" {
			g.Stores = offersAt(g.Stores, q.Store)
			if len(g.Stores) == 0 {
				continue
			}
		}
		if q.OnSaleOnly {
			g.Stores = saleOffers(g.Stores)
			if len(g.Stores) == 0 {
				continue
			}
		}
		if g.CriticScore < q.MinCritic {
			continue
		}
		out = append(out, g)
	}

	sort.SliceStable(out, dealLess(out, q.SortBy, q.Desc))

	if size := q.pageSize(len(out)); len(out) > size {
		out = out[:size]
	}
	return out, nil
}

// FreeDeals returns games currently given away for free at one or more stores.
func (c *StaticCatalog) FreeDeals(_ context.Context, limit int) ([]domain.Game, error) {
	var out []domain.Game
	for _, g := range c.games {
		for _, o := range g.Stores {
			if o.Price == 0 && o.OnSale() {
				out = append(out, clone(g))
				break
			}
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (c *StaticCatalog) GameDetails(_ context.Context, id string) (domain.Game, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("%w: %s", domain.ErrGameNotFound, id)
	}
	return clone(c.games[i]), nil
}

func (c *StaticCatalog) Stores(_ context.Context) ([]domain.StoreInfo, error) {
	out := make([]domain.StoreInfo, 0, len(domain.Stores))
	for _, s := range domain.Stores {
		out = append(out, s.Info())
	}
	return out, nil
}

func dealLess(games []domain.Game, sortBy string, desc bool) func(i, j int) bool {
	key := func(g domain.Game) float64 {
		switch sortBy {
		case SortPrice:
			if best, err := pricing.SelectBestDeal(g.Stores); err == nil {
				return best.Price
			}
			return 0
		case SortMetacritic:
			return float64(g.CriticScore)
		case SortRecent:
			return float64(g.Released().Unix())
		default:
			return float64(pricing.MaxDiscount(g.Stores))
		}
	}
	if sortBy == SortTitle {
		return func(i, j int) bool {
			a, b := strings.ToLower(games[i].Title), strings.ToLower(games[j].Title)
			if desc {
				return a > b
			}
			return a < b
		}
	}
	return func(i, j int) bool {
		if desc {
			return key(games[i]) > key(games[j])
		}
		return key(games[i]) < key(games[j])
	}
}

func offersAt(offers []domain.StoreOffer, store domain.Store) []domain.StoreOffer {
	var out []domain.StoreOffer
	for _, o := range offers {
		if o.Store == store {
			out = append(out, o)
		}
	}
	return out
}

func saleOffers(offers []domain.StoreOffer) []domain.StoreOffer {
	var out []domain.StoreOffer
	for _, o := range offers {
		if o.OnSale() {
			out = append(out, o)
		}
	}
	return out
}

// clone copies the slices so callers can localize offers in place.
func clone(g domain.Game) domain.Game {
	g.Stores = append([]domain.StoreOffer(nil), g.Stores...)
	g.Tags = append([]string(nil), g.Tags...)
	g.Platforms = append([]string(nil), g.Platforms...)
	if g.CheapestEver != nil {
		low := *g.CheapestEver
		g.CheapestEver = &low
	}
	return g
}
