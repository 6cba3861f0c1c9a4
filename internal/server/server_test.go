package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"game-deals/internal/api"
	"game-deals/internal/catalog"
	"game-deals/internal/notify"
	"game-deals/internal/pricing"
	"game-deals/internal/repository"
	"game-deals/internal/service"
	"game-deals/internal/storage"

	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zerolog.Nop()

	static, err := api.NewStaticCatalog(logger)
	if err != nil {
		t.Fatal(err)
	}
	tables, err := pricing.DefaultTables()
	if err != nil {
		t.Fatal(err)
	}
	resolver := pricing.NewResolver(tables)
	kv := storage.NewMemory()
	wishlist := repository.NewWishlistRepository(kv, logger)
	settings := repository.NewSettingsRepository(kv, "US", logger)

	srv := NewCatalogServer(
		service.NewCatalogService(static, resolver, wishlist, settings, logger),
		service.NewWishlistService(static, resolver, wishlist, settings, notify.NewLogNotifier(logger), logger),
		service.NewSettingsService(settings, wishlist, resolver, logger),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// call posts a Connect unary request and decodes the body into out.
func call(t *testing.T, ts *httptest.Server, method string, in, out any) int {
	t.Helper()
	body, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+CatalogServicePath+method, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("%s: decoding %q: %v", method, data, err)
		}
	}
	return resp.StatusCode
}

type connectError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestSearchGames(t *testing.T) {
	ts := newTestServer(t)

	var page service.CatalogPage
	status := call(t, ts, "SearchGames", SearchGamesRequest{Region: "IN", Filter: catalog.Filter{Query: "hades"}}, &page)
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	if page.Region.CurrencyCode != "INR" || len(page.Games) != 1 || page.Games[0].Deal.Display != "₹8" {
		t.Fatalf("page: %+v", page)
	}
}

func TestWishlistAndSettingsFlow(t *testing.T) {
	ts := newTestServer(t)

	var added WishlistEntryResponse
	if status := call(t, ts, "AddToWishlist", GameRequest{GameID: "celeste"}, &added); status != http.StatusOK || !added.Added {
		t.Fatalf("add: %d %+v", status, added)
	}
	var alert WishlistEntryResponse
	if status := call(t, ts, "SetPriceAlert", SetPriceAlertRequest{GameID: "celeste", Target: 5}, &alert); status != http.StatusOK {
		t.Fatalf("alert status %d", status)
	}
	if alert.Entry.PriceAlert == nil || *alert.Entry.PriceAlert != 5 {
		t.Fatalf("alert: %+v", alert.Entry)
	}

	var report service.AlertReport
	call(t, ts, "CheckPriceAlerts", RegionRequest{Region: "US"}, &report)
	if report.Checked != 1 || len(report.Triggered) != 1 {
		t.Fatalf("report: %+v", report)
	}

	var completed struct {
		UserName         string `json:"userName"`
		CompletedWelcome bool   `json:"completedWelcome"`
	}
	call(t, ts, "CompleteWelcome", CompleteWelcomeRequest{UserName: "Sam"}, &completed)
	if !completed.CompletedWelcome || completed.UserName != "Sam" {
		t.Fatalf("welcome: %+v", completed)
	}

	if status := call(t, ts, "ResetData", Empty{}, nil); status != http.StatusOK {
		t.Fatalf("reset status %d", status)
	}
	var view service.WishlistView
	call(t, ts, "ListWishlist", ListWishlistRequest{}, &view)
	if len(view.Items) != 0 {
		t.Fatalf("wishlist survived reset: %+v", view.Items)
	}
}

func TestErrorCodes(t *testing.T) {
	ts := newTestServer(t)
	cases := []struct {
		method string
		req    any
		status int
		code   string
	}{
		{"GetGame", GetGameRequest{ID: "nope"}, http.StatusNotFound, "not_found"},
		{"GetGame", GetGameRequest{}, http.StatusBadRequest, "invalid_argument"},
		{"ListDeals", ListDealsRequest{Store: "origin"}, http.StatusBadRequest, "invalid_argument"},
		{"SetPriceAlert", SetPriceAlertRequest{GameID: "hades", Target: 5}, http.StatusNotFound, "not_found"},
		{"UpdateSettings", map[string]string{"theme": "neon"}, http.StatusBadRequest, "invalid_argument"},
	}
	for _, c := range cases {
		var got connectError
		status := call(t, ts, c.method, c.req, &got)
		if status != c.status || got.Code != c.code {
			t.Errorf("%s %+v: got %d %q, want %d %q", c.method, c.req, status, got.Code, c.status, c.code)
		}
	}
}

func TestListRegionsAndStores(t *testing.T) {
	ts := newTestServer(t)

	var regions ListRegionsResponse
	call(t, ts, "ListRegions", Empty{}, &regions)
	if len(regions.Regions) == 0 {
		t.Fatal("no regions")
	}

	var stores ListStoresResponse
	call(t, ts, "ListStores", Empty{}, &stores)
	if len(stores.Stores) == 0 || stores.Advisory != nil {
		t.Fatalf("stores: %+v", stores)
	}
}
