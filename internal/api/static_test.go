package api

import (
	"context"
	"errors"
	"strings"
	"testing"

	"game-deals/internal/domain"

	"github.com/rs/zerolog"
)

func newStatic(t *testing.T) *StaticCatalog {
	t.Helper()
	c, err := NewStaticCatalog(zerolog.Nop())
	if err != nil {
		t.Fatalf("loading embedded catalog: %v", err)
	}
	return c
}

func TestStaticCatalogLoads(t *testing.T) {
	c := newStatic(t)
	if len(c.games) < 5 {
		t.Fatalf("catalog too small: %d games", len(c.games))
	}
	for _, g := range c.games {
		if len(g.Stores) == 0 {
			t.Errorf("%s has no offers", g.ID)
		}
		for _, o := range g.Stores {
			if !o.Store.Valid() {
				t.Errorf("%s: invalid store %q", g.ID, o.Store)
			}
			if o.Discount != nil && !o.OnSale() {
				t.Errorf("%s at %s: discount without a lower price", g.ID, o.Store)
			}
			if o.URL == "" {
				t.Errorf("%s at %s: missing url", g.ID, o.Store)
			}
		}
		if !strings.HasPrefix(g.Image, "https://") {
			t.Errorf("%s: image %q", g.ID, g.Image)
		}
	}
}

func TestStaticCatalogRejectsBadData(t *testing.T) {
	cases := map[string]string{
		"unknown store": "games:\n  - {id: a, title: A, stores: [{store: origin, price: 1}]}\n",
		"duplicate id":  "games:\n  - {id: a, title: A}\n  - {id: a, title: B}\n",
		"missing title": "games:\n  - {id: a}\n",
		"negative":      "games:\n  - {id: a, title: A, stores: [{store: steam, price: -1}]}\n",
	}
	for name, data := range cases {
		if _, err := LoadStaticCatalog([]byte(data), zerolog.Nop()); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestStaticSearchByTitle(t *testing.T) {
	c := newStatic(t)
	games, err := c.SearchByTitle(context.Background(), "witcher", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 || games[0].ID != "the-witcher-3" {
		t.Fatalf("unexpected results: %+v", games)
	}

	games, _ = c.SearchByTitle(context.Background(), "", 3)
	if len(games) != 3 {
		t.Fatalf("limit not applied: %d", len(games))
	}
}

func TestStaticListDealsByStore(t *testing.T) {
	c := newStatic(t)
	games, err := c.ListDeals(context.Background(), DealQuery{Store: domain.StoreFanatical, SortBy: SortPrice})
	if err != nil {
		t.Fatal(err)
	}
	if len(games) == 0 {
		t.Fatal("expected fanatical deals")
	}
	prev := -1.0
	for _, g := range games {
		if len(g.Stores) != 1 || g.Stores[0].Store != domain.StoreFanatical {
			t.Fatalf("%s: offers not narrowed to the store: %+v", g.ID, g.Stores)
		}
		if g.Stores[0].Price < prev {
			t.Fatalf("not sorted by price ascending")
		}
		prev = g.Stores[0].Price
	}
}

func TestStaticListDealsOnSaleSortedBySavings(t *testing.T) {
	c := newStatic(t)
	games, err := c.ListDeals(context.Background(), DealQuery{OnSaleOnly: true, SortBy: SortSavings, Desc: true, PageSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 4 {
		t.Fatalf("page size not applied: %d", len(games))
	}
	for _, g := range games {
		for _, o := range g.Stores {
			if !o.OnSale() {
				t.Fatalf("%s at %s is not on sale", g.ID, o.Store)
			}
		}
	}
	// the two games given away for free lead the savings ordering
	for _, g := range games[:2] {
		if g.ID != "control-ultimate" && g.ID != "civilization-vi" {
			t.Fatalf("unexpected leader %s", g.ID)
		}
	}
}

func TestStaticFreeDeals(t *testing.T) {
	c := newStatic(t)
	games, err := c.FreeDeals(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 free games, got %d", len(games))
	}
}

func TestStaticGameDetails(t *testing.T) {
	c := newStatic(t)
	g, err := c.GameDetails(context.Background(), "hades")
	if err != nil {
		t.Fatal(err)
	}
	if g.Title != "Hades" || len(g.Stores) != 3 {
		t.Fatalf("unexpected game: %+v", g)
	}

	// callers may mutate what they get back
	g.Stores[0].Price = 1
	again, _ := c.GameDetails(context.Background(), "hades")
	if again.Stores[0].Price == 1 {
		t.Fatal("catalog state leaked to caller")
	}

	celeste, _ := c.GameDetails(context.Background(), "celeste")
	if celeste.CheapestEver == nil || celeste.CheapestEver.Price != 4.99 || celeste.CheapestEver.Date != "2023-11-14" {
		t.Fatalf("celeste low: %+v", celeste.CheapestEver)
	}
	celeste.CheapestEver.Price = 0
	if again, _ := c.GameDetails(context.Background(), "celeste"); again.CheapestEver.Price != 4.99 {
		t.Fatal("historical low leaked to caller")
	}

	if _, err := c.GameDetails(context.Background(), "nope"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestImageURL(t *testing.T) {
	cases := []struct {
		game domain.Game
		kind ImageKind
		want string
	}{
		{domain.Game{SteamAppID: "292030"}, ImageHeader, "https://cdn.akamai.steamstatic.com/steam/apps/292030/header.jpg"},
		{domain.Game{SteamAppID: "292030"}, "poster", "https://cdn.akamai.steamstatic.com/steam/apps/292030/library_600x900_2x.jpg"},
		{domain.Game{SteamAppID: "0", Image: "https://img/x.jpg"}, ImageLibrary, "https://img/x.jpg"},
		{domain.Game{Title: "Some Game"}, ImageLibrary, "https://via.placeholder.com/300x400/1a1a1a/888888?text=Some+Game"},
	}
	for _, c := range cases {
		if got := ImageURL(c.game, c.kind); got != c.want {
			t.Errorf("ImageURL(%+v, %s) = %q, want %q", c.game, c.kind, got, c.want)
		}
	}
}
