package pricing

import (
	"game-deals/internal/domain"
)

// SelectBestDeal returns the cheapest offer. Ties keep the first one seen.
func SelectBestDeal(offers []domain.StoreOffer) (domain.StoreOffer, error) {
	if len(offers) == 0 {
		return domain.StoreOffer{}, domain.ErrNoOffers
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if o.Price < best.Price {
			best = o
		}
	}
	return best, nil
}

type DealSummary struct {
	Best        domain.StoreOffer `json:"best"`
	Discount    int               `json:"discount,omitempty"`
	HasDiscount bool              `json:"hasDiscount"`
	Display     string            `json:"display"`
	Currency    string            `json:"currency"`
}

func Summarize(offers []domain.StoreOffer, region domain.Region) (DealSummary, error) {
	best, err := SelectBestDeal(offers)
	if err != nil {
		return DealSummary{}, err
	}
	s := DealSummary{
		Best:     best,
		Display:  FormatForRegion(best.Price, region),
		Currency: region.CurrencyCode,
	}
	if best.OriginalPrice != nil {
		s.Discount, s.HasDiscount = ComputeDiscount(*best.OriginalPrice, best.Price)
	}
	return s, nil
}

// MaxDiscount is the largest discount across offers, used for savings ordering.
func MaxDiscount(offers []domain.StoreOffer) int {
	top := 0
	for _, o := range offers {
		if o.OriginalPrice == nil {
			continue
		}
		if pct, ok := ComputeDiscount(*o.OriginalPrice, o.Price); ok && pct > top {
			top = pct
		}
	}
	return top
}
