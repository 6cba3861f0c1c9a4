// Package catalog narrows and orders region-localized games for the catalog view.
package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"game-deals/internal/constants"
	"game-deals/internal/domain"
	"game-deals/internal/pricing"

	"github.com/asaskevich/govalidator"
)

const (
	SortSavings   = "savings"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortCritic    = "critic"
	SortTitle     = "title"
	SortNewest    = "newest"
	SortOldest    = "oldest"
)

type Filter struct {
	Query      string         `json:"query,omitempty"`
	Genres     []string       `json:"genres,omitempty"`
	Platforms  []string       `json:"platforms,omitempty"`
	Stores     []domain.Store `json:"stores,omitempty"`
	MinPrice   *float64       `json:"minPrice,omitempty"`
	MaxPrice   *float64       `json:"maxPrice,omitempty"`
	MinRating  float64        `json:"minRating,omitempty"`
	MinCritic  int            `json:"minCritic,omitempty"`
	OnSaleOnly bool           `json:"onSaleOnly,omitempty"`
	Sort       string         `json:"sort,omitempty"`
	Limit      int            `json:"limit,omitempty"`
}

// Normalize validates f and returns a copy with defaults applied.
func (f Filter) Normalize() (Filter, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Genres = normalizeSlice(f.Genres)
	f.Platforms = normalizeSlice(f.Platforms)

	f.Sort = strings.ToLower(strings.TrimSpace(f.Sort))
	if f.Sort == "" {
		f.Sort = SortSavings
	}
	if !govalidator.IsIn(f.Sort, SortSavings, SortPriceAsc, SortPriceDesc, SortRating, SortCritic, SortTitle, SortNewest, SortOldest) {
		return f, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidFilter, f.Sort)
	}

	stores := make([]domain.Store, 0, len(f.Stores))
	for _, s := range f.Stores {
		store, err := domain.ParseStore(string(s))
		if err != nil {
			return f, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
		}
		stores = append(stores, store)
	}
	f.Stores = stores

	if f.MinPrice != nil && (*f.MinPrice < 0 || math.IsNaN(*f.MinPrice)) {
		return f, fmt.Errorf("%w: negative minimum price", domain.ErrInvalidFilter)
	}
	if f.MaxPrice != nil && (*f.MaxPrice < 0 || math.IsNaN(*f.MaxPrice)) {
		return f, fmt.Errorf("%w: negative maximum price", domain.ErrInvalidFilter)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return f, fmt.Errorf("%w: minimum price above maximum", domain.ErrInvalidFilter)
	}
	if f.MinRating < 0 || f.MinRating > 10 {
		return f, fmt.Errorf("%w: rating must be within 0-10", domain.ErrInvalidFilter)
	}
	if f.MinCritic < 0 || f.MinCritic > 100 {
		return f, fmt.Errorf("%w: critic score must be within 0-100", domain.ErrInvalidFilter)
	}

	switch {
	case f.Limit < 0:
		return f, fmt.Errorf("%w: negative limit", domain.ErrInvalidFilter)
	case f.Limit == 0 || f.Limit > constants.MaxFilterLimit:
		f.Limit = constants.MaxFilterLimit
	}
	return f, nil
}

// Apply filters and sorts games whose offers are already priced for one region.
// Games without offers never match a price bound, store or on-sale constraint.
func Apply(games []domain.Game, f Filter) ([]domain.Game, error) {
	f, err := f.Normalize()
	if err != nil {
		return nil, err
	}

	matched := make([]ranked, 0, len(games))
	for _, g := range games {
		r := rank(g)
		if f.matches(r) {
			matched = append(matched, r)
		}
	}

	sort.Stable(sorter(f.Sort, matched))

	if len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	out := make([]domain.Game, len(matched))
	for i, r := range matched {
		out[i] = r.game
	}
	return out, nil
}

type ranked struct {
	game     domain.Game
	best     float64
	hasOffer bool
	discount int
}

func rank(g domain.Game) ranked {
	r := ranked{game: g}
	if best, err := pricing.SelectBestDeal(g.Stores); err == nil {
		r.best = best.Price
		r.hasOffer = true
	}
	r.discount = pricing.MaxDiscount(g.Stores)
	return r
}

func (f Filter) matches(r ranked) bool {
	g := r.game
	if f.Query != "" && !strings.Contains(strings.ToLower(g.Title), strings.ToLower(f.Query)) {
		return false
	}
	for _, genre := range f.Genres {
		if !g.HasTag(genre) {
			return false
		}
	}
	for _, platform := range f.Platforms {
		if !containsFold(g.Platforms, platform) {
			return false
		}
	}
	if len(f.Stores) > 0 && !offeredAt(g.Stores, f.Stores) {
		return false
	}
	if f.MinPrice != nil && (!r.hasOffer || r.best < *f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && (!r.hasOffer || r.best > *f.MaxPrice) {
		return false
	}
	if g.Rating < f.MinRating || g.CriticScore < f.MinCritic {
		return false
	}
	if f.OnSaleOnly && !onSale(g.Stores) {
		return false
	}
	return true
}

func offeredAt(offers []domain.StoreOffer, stores []domain.Store) bool {
	for _, o := range offers {
		for _, s := range stores {
			if o.Store == s {
				return true
			}
		}
	}
	return false
}

func onSale(offers []domain.StoreOffer) bool {
	for _, o := range offers {
		if o.OnSale() {
			return true
		}
	}
	return false
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func normalizeSlice(s []string) []string {
	var result []string
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
