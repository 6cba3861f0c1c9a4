package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"game-deals/internal/api"
	"game-deals/internal/catalog"
	"game-deals/internal/domain"
	"game-deals/internal/pricing"
)

func cardIDs(page *CatalogPage) []string {
	ids := make([]string, len(page.Games))
	for i, c := range page.Games {
		ids[i] = c.Game.ID
	}
	return ids
}

func dealQuery(store string) api.DealQuery {
	return api.DealQuery{Store: domain.Store(store)}
}

func TestSearchPricesForRegion(t *testing.T) {
	f := newFixture(t)
	page, err := f.catalog.Search(context.Background(), catalog.Filter{Query: "hades"}, "IN")
	if err != nil {
		t.Fatal(err)
	}
	if page.Region.CurrencyCode != "INR" || len(page.Games) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	deal := page.Games[0].Deal
	if deal == nil {
		t.Fatal("missing deal summary")
	}
	if deal.Best.Store != domain.StoreHumble || deal.Best.Price != 8 || deal.Display != "₹8" {
		t.Fatalf("best = %+v display %s", deal.Best, deal.Display)
	}
	if !deal.HasDiscount || deal.Discount != 20 {
		t.Fatalf("discount = %d %v", deal.Discount, deal.HasDiscount)
	}
}

func TestSearchUsesSelectedRegion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.settings.SetRegion(ctx, "GB"); err != nil {
		t.Fatal(err)
	}
	page, err := f.catalog.Search(ctx, catalog.Filter{Query: "hades"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if page.Region.Code != "GB" || page.Games[0].Deal.Display != "£17.19" {
		t.Fatalf("region %s display %s", page.Region.Code, page.Games[0].Deal.Display)
	}
}

func TestSearchMarksWishlistedGames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.wishlist.Add(ctx, "celeste"); err != nil {
		t.Fatal(err)
	}
	page, err := f.catalog.Search(ctx, catalog.Filter{Genres: []string{"Indie"}, Sort: catalog.SortTitle}, "US")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range page.Games {
		if c.InWishlist != (c.Game.ID == "celeste") {
			t.Errorf("%s: inWishlist=%v", c.Game.ID, c.InWishlist)
		}
	}
}

func TestSearchRejectsInvalidFilter(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.Search(context.Background(), catalog.Filter{Sort: "popularity"}, "US")
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestCatalogDegradesWhenSourceUnavailable(t *testing.T) {
	f := newFixture(t)
	f.source.err = fmt.Errorf("%w: connection refused", domain.ErrServiceUnavailable)
	ctx := context.Background()

	calls := map[string]func() (*CatalogPage, error){
		"search": func() (*CatalogPage, error) { return f.catalog.Search(ctx, catalog.Filter{}, "US") },
		"deals":  func() (*CatalogPage, error) { return f.catalog.ListDeals(ctx, dealQuery(""), "US") },
		"free":   func() (*CatalogPage, error) { return f.catalog.FreeGames(ctx, "US") },
		"hot":    func() (*CatalogPage, error) { return f.catalog.HotDeals(ctx, "US") },
	}
	for name, call := range calls {
		page, err := call()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(page.Games) != 0 || page.Advisory == nil || !page.Advisory.Retryable {
			t.Fatalf("%s: expected empty page with advisory, got %+v", name, page)
		}
	}

	stores, advisory, err := f.catalog.Stores(ctx)
	if err != nil || advisory == nil || len(stores) != len(domain.Stores) {
		t.Fatalf("stores fallback: %d %v %v", len(stores), advisory, err)
	}
}

func TestCatalogPropagatesOtherSourceErrors(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	f.source.err = boom
	if _, err := f.catalog.FreeGames(context.Background(), "US"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestHotDeals(t *testing.T) {
	f := newFixture(t)
	page, err := f.catalog.HotDeals(context.Background(), "US")
	if err != nil {
		t.Fatal(err)
	}
	// regional list prices for the two authentic-table games carry no discount
	want := []string{"control-ultimate", "civilization-vi", "celeste", "disco-elysium", "hollow-knight"}
	if got := cardIDs(page); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListDealsForStore(t *testing.T) {
	f := newFixture(t)
	page, err := f.catalog.ListDeals(context.Background(), dealQuery("humblestore"), "US")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range page.Games {
		if len(c.Game.Stores) != 1 || c.Game.Stores[0].Store != domain.StoreHumble {
			t.Fatalf("%s: %+v", c.Game.ID, c.Game.Stores)
		}
	}

	if _, err := f.catalog.ListDeals(context.Background(), dealQuery("origin"), "US"); !errors.Is(err, domain.ErrUnknownStore) {
		t.Fatalf("expected ErrUnknownStore, got %v", err)
	}
}

func TestFreeGames(t *testing.T) {
	f := newFixture(t)
	page, err := f.catalog.FreeGames(context.Background(), "IN")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Games) != 2 {
		t.Fatalf("expected 2 free games, got %v", cardIDs(page))
	}
	for _, c := range page.Games {
		if c.Deal == nil || c.Deal.Display != "FREE" {
			t.Fatalf("%s: deal %+v", c.Game.ID, c.Deal)
		}
	}
}

func TestGetGameDetail(t *testing.T) {
	f := newFixture(t)
	d, err := f.catalog.GetGame(context.Background(), "celeste", "US")
	if err != nil {
		t.Fatal(err)
	}
	if d.Estimated || d.InWishlist || d.Advisory != nil {
		t.Fatalf("unexpected flags: %+v", d)
	}
	if len(d.Offers) != 3 {
		t.Fatalf("offers: %+v", d.Offers)
	}
	humble := d.Offers[1]
	if !humble.Best || humble.Display != "$4.99" || humble.OriginalDisplay != "$19.99" || humble.StoreName != "Humble Store" {
		t.Fatalf("humble offer: %+v", humble)
	}
	if d.Offers[0].Best || d.Offers[2].Best {
		t.Fatal("more than one best offer")
	}
	if d.Deal == nil || d.Deal.Discount != 75 {
		t.Fatalf("deal: %+v", d.Deal)
	}
	if d.HeaderImage != "https://cdn.akamai.steamstatic.com/steam/apps/504230/header.jpg" {
		t.Fatalf("header image %s", d.HeaderImage)
	}
	want := HistoricalLow{Price: 4.99, Display: "$4.99", Date: "2023-11-14"}
	if d.CheapestEver == nil || *d.CheapestEver != want {
		t.Fatalf("cheapest ever: %+v", d.CheapestEver)
	}

	gb, err := f.catalog.GetGame(context.Background(), "celeste", "GB")
	if err != nil {
		t.Fatal(err)
	}
	// steam GB multiplier 0.85
	if gb.CheapestEver == nil || gb.CheapestEver.Display != "£4.24" {
		t.Fatalf("GB cheapest ever: %+v", gb.CheapestEver)
	}

	hades, err := f.catalog.GetGame(context.Background(), "hades", "US")
	if err != nil {
		t.Fatal(err)
	}
	if hades.CheapestEver != nil {
		t.Fatalf("hades has no recorded low: %+v", hades.CheapestEver)
	}
}

func TestGetGameWithoutOffersIsEstimated(t *testing.T) {
	f := newFixture(t)
	f.source.extra["mystery"] = domain.Game{ID: "mystery", Title: "Mystery Game"}

	d, err := f.catalog.GetGame(context.Background(), "mystery", "DE")
	if err != nil {
		t.Fatal(err)
	}
	if !d.Estimated || len(d.Offers) != len(domain.Stores) {
		t.Fatalf("expected estimated offers at every store: %+v", d)
	}
	// steam DE multiplier 0.92 over the 29.99 default
	if d.Offers[0].Store != domain.StoreSteam || d.Offers[0].Price != 27.59 || d.Offers[0].Display != "€27.59" {
		t.Fatalf("steam offer: %+v", d.Offers[0])
	}
}

func TestGetGameEstimatesFromConfiguredBasePrice(t *testing.T) {
	f := newFixture(t)
	tables, err := pricing.DefaultTables()
	if err != nil {
		t.Fatal(err)
	}
	tables.DefaultBasePrice = 10
	f.catalog.resolver = pricing.NewResolver(tables)
	f.source.extra["mystery"] = domain.Game{ID: "mystery", Title: "Mystery Game"}

	d, err := f.catalog.GetGame(context.Background(), "mystery", "DE")
	if err != nil {
		t.Fatal(err)
	}
	if !d.Estimated || d.Offers[0].Store != domain.StoreSteam || d.Offers[0].Display != "€9.20" {
		t.Fatalf("steam offer: %+v", d.Offers[0])
	}
}

func TestGetGameErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.catalog.GetGame(ctx, "nope", "US"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, err := f.catalog.GetGame(ctx, "  ", "US"); !errors.Is(err, domain.ErrInvalidGame) {
		t.Fatalf("expected ErrInvalidGame, got %v", err)
	}

	if _, _, err := f.wishlist.Add(ctx, "hades"); err != nil {
		t.Fatal(err)
	}
	f.source.err = fmt.Errorf("%w: 503", domain.ErrServiceUnavailable)

	d, err := f.catalog.GetGame(ctx, "hades", "US")
	if err != nil {
		t.Fatalf("wishlisted game should be served from its snapshot: %v", err)
	}
	if d.Advisory == nil || !d.InWishlist || d.Game.Title != "Hades" {
		t.Fatalf("snapshot detail: %+v", d)
	}

	if _, err := f.catalog.GetGame(ctx, "celeste", "US"); !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestResolvePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []struct {
		title, store, region string
		base                 *float64
		price                float64
		display              string
	}{
		{"Cyberpunk 2077", "steam", "IN", nil, 2999, "₹2999"},
		{"Hades", "epicgames", "FR", domain.Float(10), 9.2, "€9.20"},
		{"Hades", "steam", "JP", domain.Float(10), 10, "$10.00"},
		{"Unknown Game", "gog", "US", nil, 29.99, "$29.99"},
	}
	for _, c := range cases {
		q, err := f.catalog.ResolvePrice(ctx, c.title, c.store, c.region, c.base)
		if err != nil {
			t.Fatal(err)
		}
		if q.Price != c.price || q.Display != c.display {
			t.Errorf("%s/%s/%s: got %v %q, want %v %q", c.title, c.store, c.region, q.Price, q.Display, c.price, c.display)
		}
	}

	if _, err := f.catalog.ResolvePrice(ctx, "Hades", "origin", "US", nil); !errors.Is(err, domain.ErrUnknownStore) {
		t.Fatalf("expected ErrUnknownStore, got %v", err)
	}
}
