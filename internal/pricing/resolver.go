package pricing

import (
	"math"
	"strings"

	"game-deals/internal/domain"
)

const (
	DefaultBasePrice = 29.99
	titleKeyLength   = 20
	// multiplier applied to the base price to derive a list price for multi-store pricing
	listPriceMarkup = 1.2
)

type Resolver struct {
	tables  *Tables
	regions map[string]domain.Region
}

func NewResolver(tables *Tables) *Resolver {
	regions := make(map[string]domain.Region, len(tables.Regions))
	for _, r := range tables.Regions {
		regions[r.Code] = r
	}
	return &Resolver{tables: tables, regions: regions}
}

// NormalizeTitle lowercases the title, drops everything outside [a-z0-9] and keeps
// the first 20 characters.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == titleKeyLength {
				break
			}
		}
	}
	return b.String()
}

// Resolve prices a game at the default base price.
func (r *Resolver) Resolve(title string, store domain.Store, region string) float64 {
	return r.ResolveFrom(title, store, region, r.DefaultBase())
}

// ResolveFrom walks the fallback chain: authentic per-game price, per-store region
// multiplier, flat conversion rate. A region found nowhere gets the base price back
// unchanged.
func (r *Resolver) ResolveFrom(title string, store domain.Store, region string, basePrice float64) float64 {
	if byStore, ok := r.tables.Authentic[NormalizeTitle(title)]; ok {
		if price, ok := byStore[store][normalizeRegion(region)]; ok {
			return price
		}
	}
	return r.Convert(store, region, basePrice)
}

// Convert runs the chain without the authentic table, for USD prices that are not
// current list prices, such as a historical low.
func (r *Resolver) Convert(store domain.Store, region string, basePrice float64) float64 {
	region = normalizeRegion(region)
	if basePrice < 0 || math.IsNaN(basePrice) || math.IsInf(basePrice, 0) {
		basePrice = 0
	}

	if profile, ok := r.tables.StoreProfiles[store][region]; ok {
		return RoundFor(profile.Currency, basePrice*profile.Multiplier)
	}

	if rate, ok := r.tables.ConversionRates[region]; ok {
		currency := ""
		if reg, ok := r.regions[region]; ok {
			currency = reg.CurrencyCode
		}
		return RoundFor(currency, basePrice*rate)
	}

	return basePrice
}

// DefaultBase is the USD base price used when a game has no store offers.
func (r *Resolver) DefaultBase() float64 {
	return r.tables.DefaultBasePrice
}

// MultiStorePricing prices a title at every supported store. List prices are derived
// from a 20% markup over the base, so discounts only show where the multiplier path
// was taken.
func (r *Resolver) MultiStorePricing(title, region string, basePrice float64) []domain.StoreOffer {
	offers := make([]domain.StoreOffer, 0, len(domain.Stores))
	for _, store := range domain.Stores {
		offer := domain.StoreOffer{
			Store: store,
			Price: r.ResolveFrom(title, store, region, basePrice),
			URL:   store.SearchURL(title),
		}
		if basePrice > 0 {
			original := r.ResolveFrom(title, store, region, basePrice*listPriceMarkup)
			offer.OriginalPrice = domain.Float(original)
			if pct, ok := ComputeDiscount(original, offer.Price); ok {
				offer.Discount = domain.Int(pct)
			}
		}
		offers = append(offers, offer)
	}
	return offers
}

// LocalizeOffers converts USD offers into the region's prices. Free offers stay free.
func (r *Resolver) LocalizeOffers(title string, offers []domain.StoreOffer, region string) []domain.StoreOffer {
	out := make([]domain.StoreOffer, len(offers))
	for i, o := range offers {
		local := o
		local.Discount = nil
		local.OriginalPrice = nil
		if o.Price > 0 {
			local.Price = r.ResolveFrom(title, o.Store, region, o.Price)
		}
		if o.OriginalPrice != nil {
			original := r.ResolveFrom(title, o.Store, region, *o.OriginalPrice)
			local.OriginalPrice = domain.Float(original)
			if pct, ok := ComputeDiscount(original, local.Price); ok {
				local.Discount = domain.Int(pct)
			}
		}
		if local.URL == "" {
			local.URL = o.Store.SearchURL(title)
		}
		out[i] = local
	}
	return out
}

func (r *Resolver) Region(code string) (domain.Region, bool) {
	reg, ok := r.regions[normalizeRegion(code)]
	return reg, ok
}

// RegionOrDefault falls back to USD formatting for regions missing from the table.
func (r *Resolver) RegionOrDefault(code string) domain.Region {
	if reg, ok := r.Region(code); ok {
		return reg
	}
	return domain.Region{Code: normalizeRegion(code), Name: normalizeRegion(code), CurrencyCode: "USD", CurrencySymbol: "$"}
}

func (r *Resolver) Regions() []domain.Region {
	out := make([]domain.Region, len(r.tables.Regions))
	copy(out, r.tables.Regions)
	return out
}

// RoundFor applies the currency rounding policy: whole units for INR, cents otherwise.
func RoundFor(currency string, v float64) float64 {
	if strings.EqualFold(currency, "INR") {
		return math.Round(v)
	}
	return math.Round(v*100) / 100
}
