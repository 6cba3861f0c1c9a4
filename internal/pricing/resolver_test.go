package pricing

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"game-deals/internal/domain"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	tables, err := DefaultTables()
	if err != nil {
		t.Fatalf("load default tables: %v", err)
	}
	return NewResolver(tables)
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cyberpunk 2077", "cyberpunk2077"},
		{"The Witcher 3: Wild Hunt", "thewitcher3wildhunt"},
		{"  HADES!! ", "hades"},
		{"Baldur's Gate 3 - Digital Deluxe Edition", "baldursgate3digitald"},
		{"", ""},
		{"日本語", ""},
	}
	for _, c := range cases {
		if got := NormalizeTitle(c.in); got != c.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveAuthenticPriceIsVerbatim(t *testing.T) {
	r := newTestResolver(t)

	if got := r.ResolveFrom("Cyberpunk 2077", domain.StoreEpic, "IN", 10); got != 2799 {
		t.Fatalf("epic IN = %v, want 2799", got)
	}
	if got := r.ResolveFrom("cyberpunk 2077", domain.StoreSteam, "gb", 10); got != 49.99 {
		t.Fatalf("steam GB = %v, want 49.99", got)
	}
	if got := r.Resolve("The Witcher 3: Wild Hunt", domain.StoreGOG, "AU"); got != 59.95 {
		t.Fatalf("gog AU = %v, want 59.95", got)
	}
}

func TestResolveFallsBackToStoreProfile(t *testing.T) {
	r := newTestResolver(t)

	// authentic table has no humble column, so the multiplier applies
	if got := r.ResolveFrom("Cyberpunk 2077", domain.StoreHumble, "GB", 59.99); got != 51.59 {
		t.Fatalf("humble GB = %v, want 51.59", got)
	}
	if got := r.ResolveFrom("Unknown Indie Game", domain.StoreSteam, "IN", 59.99); got != 24 {
		t.Fatalf("steam IN = %v, want 24", got)
	}
	if got := r.ResolveFrom("Unknown Indie Game", domain.StoreEpic, "CA", 20); got != 26.4 {
		t.Fatalf("epic CA = %v, want 26.4", got)
	}
}

func TestResolveFallsBackToConversionRate(t *testing.T) {
	r := newTestResolver(t)

	// FR only exists in the conversion table
	if got := r.ResolveFrom("Unknown Indie Game", domain.StoreSteam, "FR", 10); got != 9.2 {
		t.Fatalf("steam FR = %v, want 9.2", got)
	}
}

func TestResolveUnknownRegionReturnsBasePrice(t *testing.T) {
	r := newTestResolver(t)

	for _, store := range domain.Stores {
		if got := r.ResolveFrom("Cyberpunk 2077", store, "ZZ", 12.345); got != 12.345 {
			t.Fatalf("%s ZZ = %v, want base price unchanged", store, got)
		}
	}
	if got := r.Resolve("Anything", domain.StoreSteam, ""); got != DefaultBasePrice {
		t.Fatalf("empty region = %v, want %v", got, DefaultBasePrice)
	}
}

func TestResolveIsNonNegativeAndRoundedPerCurrency(t *testing.T) {
	r := newTestResolver(t)
	titles := []string{"Cyberpunk 2077", "The Witcher 3: Wild Hunt", "Hades", ""}
	bases := []float64{0, 0.99, 9.99, 19.99, 59.99, 69.999, -5}

	for _, region := range append(r.Regions(), domain.Region{Code: "ZZ"}) {
		for _, store := range domain.Stores {
			for _, title := range titles {
				for _, base := range bases {
					got := r.ResolveFrom(title, store, region.Code, base)
					if got < 0 {
						t.Fatalf("%s/%s/%s/%v: negative price %v", title, store, region.Code, base, got)
					}
					if region.CurrencyCode == "INR" && got != math.Trunc(got) {
						t.Fatalf("%s/%s/%s/%v: INR price %v is not whole", title, store, region.Code, base, got)
					}
				}
			}
		}
	}
}

func TestMultiStorePricing(t *testing.T) {
	r := newTestResolver(t)

	offers := r.MultiStorePricing("Hades", "US", 24.99)
	if len(offers) != len(domain.Stores) {
		t.Fatalf("want %d offers, got %d", len(domain.Stores), len(offers))
	}
	for _, o := range offers {
		if o.Price != 24.99 {
			t.Errorf("%s: price %v, want 24.99", o.Store, o.Price)
		}
		if o.OriginalPrice == nil || *o.OriginalPrice != 29.99 {
			t.Errorf("%s: original %v, want 29.99", o.Store, o.OriginalPrice)
		}
		if o.Discount == nil || *o.Discount != 17 {
			t.Errorf("%s: discount %v, want 17", o.Store, o.Discount)
		}
		if o.URL == "" {
			t.Errorf("%s: missing store url", o.Store)
		}
	}

	// authentic prices ignore the base, so there is no discount to show
	offers = r.MultiStorePricing("Cyberpunk 2077", "US", 59.99)
	if offers[0].Discount != nil {
		t.Fatalf("steam cyberpunk should carry no discount, got %d", *offers[0].Discount)
	}

	offers = r.MultiStorePricing("Free Thing", "US", 0)
	for _, o := range offers {
		if o.Price != 0 || o.OriginalPrice != nil {
			t.Fatalf("%s: free game priced %v original %v", o.Store, o.Price, o.OriginalPrice)
		}
	}
}

func TestLocalizeOffers(t *testing.T) {
	r := newTestResolver(t)
	offers := []domain.StoreOffer{
		{Store: domain.StoreSteam, Price: 30, OriginalPrice: domain.Float(60), Discount: domain.Int(50)},
		{Store: domain.StoreGOG, Price: 0, OriginalPrice: domain.Float(19.99), Discount: domain.Int(100)},
	}

	got := r.LocalizeOffers("Unknown Indie Game", offers, "IN")
	if got[0].Price != 12 || *got[0].OriginalPrice != 24 || *got[0].Discount != 50 {
		t.Fatalf("steam IN localized to %+v", got[0])
	}
	if got[1].Price != 0 || got[1].Discount == nil || *got[1].Discount != 100 {
		t.Fatalf("free offer localized to %+v", got[1])
	}
	if offers[0].Price != 30 {
		t.Fatalf("input offers mutated")
	}
}

func TestConvertSkipsAuthenticTable(t *testing.T) {
	r := newTestResolver(t)
	if got := r.ResolveFrom("Cyberpunk 2077", domain.StoreSteam, "IN", 19.99); got != 2999 {
		t.Fatalf("resolve = %v", got)
	}
	cases := []struct {
		store  domain.Store
		region string
		base   float64
		want   float64
	}{
		{domain.StoreSteam, "IN", 19.99, 8},
		{domain.StoreSteam, "gb", 4.99, 4.24},
		{domain.StoreSteam, "FR", 10, 9.2},
		{domain.StoreSteam, "JP", 10, 10},
		{domain.StoreGOG, "US", -1, 0},
	}
	for _, c := range cases {
		if got := r.Convert(c.store, c.region, c.base); got != c.want {
			t.Errorf("Convert(%s, %s, %v) = %v, want %v", c.store, c.region, c.base, got, c.want)
		}
	}
	if got := r.DefaultBase(); got != DefaultBasePrice {
		t.Fatalf("default base = %v", got)
	}
}

func TestLoadTablesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	data := []byte(`
default_base_price: 10
regions:
  - { code: jp, name: Japan, currency: jpy, symbol: "¥" }
authentic:
  - title: "Hollow Knight"
    prices:
      humblestore: { JP: 1480 }
store_profiles:
  epicgames:
    JP: { multiplier: 150, currency: JPY }
conversion_rates:
  JP: 140
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	r := NewResolver(tables)

	if got := r.Resolve("Hollow Knight", domain.StoreHumble, "JP"); got != 1480 {
		t.Fatalf("humble JP = %v", got)
	}
	if got := r.Resolve("Hollow Knight", domain.StoreEpic, "JP"); got != 1500 {
		t.Fatalf("epic JP = %v", got)
	}
	if got := r.Resolve("Hollow Knight", domain.StoreSteam, "JP"); got != 1400 {
		t.Fatalf("steam JP = %v", got)
	}
	if got := r.DefaultBase(); got != 10 {
		t.Fatalf("default base = %v", got)
	}
	reg, ok := r.Region("jp")
	if !ok || reg.CurrencyCode != "JPY" {
		t.Fatalf("region JP = %+v, %v", reg, ok)
	}
}

func TestParseTablesRejectsUnknownStore(t *testing.T) {
	_, err := ParseTables([]byte(`
store_profiles:
  itch:
    US: { multiplier: 1 }
`))
	if err == nil {
		t.Fatal("expected error for unknown store")
	}
}
