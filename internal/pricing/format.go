package pricing

import (
	"math"
	"strconv"
	"strings"

	"game-deals/internal/domain"
)

const FreeLabel = "FREE"

type currencyFormat struct {
	decimals int
}

var currencyFormats = map[string]currencyFormat{
	"USD": {decimals: 2},
	"EUR": {decimals: 2},
	"GBP": {decimals: 2},
	"INR": {decimals: 0},
	"CAD": {decimals: 2},
	"AUD": {decimals: 2},
}

// FormatPrice renders a price for display. Unrecognized currencies use the USD pattern.
func FormatPrice(price float64, currencyCode, symbol string) string {
	if price == 0 {
		return FreeLabel
	}
	f, ok := currencyFormats[strings.ToUpper(currencyCode)]
	if !ok {
		f = currencyFormats["USD"]
	}
	if f.decimals == 0 {
		price = math.Round(price)
	}
	return symbol + strconv.FormatFloat(price, 'f', f.decimals, 64)
}

func FormatForRegion(price float64, region domain.Region) string {
	return FormatPrice(price, region.CurrencyCode, region.CurrencySymbol)
}

// ComputeDiscount returns the whole percentage saved. ok is false when there is
// nothing to show: the current price is not below the original.
func ComputeDiscount(original, current float64) (int, bool) {
	if original <= 0 || current >= original {
		return 0, false
	}
	pct := math.Round((original - current) / original * 100)
	if pct <= 0 {
		return 0, false
	}
	if pct > 100 {
		pct = 100
	}
	return int(pct), true
}
