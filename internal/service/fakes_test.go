package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"game-deals/internal/api"
	"game-deals/internal/domain"
	"game-deals/internal/pricing"
	"game-deals/internal/repository"
	"game-deals/internal/storage"

	"github.com/rs/zerolog"
)

// fakeSource serves the embedded catalog with optional failures and extra games.
type fakeSource struct {
	*api.StaticCatalog
	err     error
	failIDs map[string]bool
	extra   map[string]domain.Game
}

func (f *fakeSource) SearchByTitle(ctx context.Context, title string, limit int) ([]domain.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.StaticCatalog.SearchByTitle(ctx, title, limit)
}

func (f *fakeSource) ListDeals(ctx context.Context, q api.DealQuery) ([]domain.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.StaticCatalog.ListDeals(ctx, q)
}

func (f *fakeSource) FreeDeals(ctx context.Context, limit int) ([]domain.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.StaticCatalog.FreeDeals(ctx, limit)
}

func (f *fakeSource) GameDetails(ctx context.Context, id string) (domain.Game, error) {
	if f.err != nil {
		return domain.Game{}, f.err
	}
	if f.failIDs[id] {
		return domain.Game{}, fmt.Errorf("%w: timeout", domain.ErrServiceUnavailable)
	}
	if g, ok := f.extra[id]; ok {
		return g, nil
	}
	return f.StaticCatalog.GameDetails(ctx, id)
}

func (f *fakeSource) Stores(ctx context.Context) ([]domain.StoreInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.StaticCatalog.Stores(ctx)
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []domain.PriceAlert
	sent   chan struct{}
}

func (n *recordingNotifier) Notify(_ context.Context, alert domain.PriceAlert) error {
	n.mu.Lock()
	n.alerts = append(n.alerts, alert)
	n.mu.Unlock()
	if n.sent != nil {
		select {
		case n.sent <- struct{}{}:
		default:
		}
	}
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

type fixture struct {
	source   *fakeSource
	resolver *pricing.Resolver
	kv       storage.KV
	wishRepo *repository.WishlistRepository
	settings *repository.SettingsRepository
	notifier *recordingNotifier
	catalog  *CatalogService
	wishlist *WishlistService
	prefs    *SettingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, storage.NewMemory())
}

func newFixtureOn(t *testing.T, kv storage.KV) *fixture {
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

	f := &fixture{
		source:   &fakeSource{StaticCatalog: static, failIDs: map[string]bool{}, extra: map[string]domain.Game{}},
		resolver: pricing.NewResolver(tables),
		kv:       kv,
		notifier: &recordingNotifier{},
	}
	f.wishRepo = repository.NewWishlistRepository(f.kv, logger)
	f.settings = repository.NewSettingsRepository(f.kv, "US", logger)
	f.catalog = NewCatalogService(f.source, f.resolver, f.wishRepo, f.settings, logger)
	f.wishlist = NewWishlistService(f.source, f.resolver, f.wishRepo, f.settings, f.notifier, logger)
	f.prefs = NewSettingsService(f.settings, f.wishRepo, f.resolver, logger)
	return f
}
