package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"game-deals/internal/constants"
	"game-deals/internal/domain"
	"game-deals/internal/notify"
	"game-deals/internal/pricing"
	"game-deals/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const alertCheckConcurrency = 4

type WishlistItem struct {
	domain.WishlistEntry
	Deal         *pricing.DealSummary `json:"deal,omitempty"`
	AlertDisplay string               `json:"alertDisplay,omitempty"`
	// AlertMet reports whether the snapshot price is at or below the alert target.
	AlertMet bool `json:"alertMet"`
}

type WishlistView struct {
	Region domain.Region  `json:"region"`
	Items  []WishlistItem `json:"items"`
	Stats  WishlistStats  `json:"stats"`
}

// WishlistStats summarizes the whole wishlist, regardless of the search query.
type WishlistStats struct {
	Total       int `json:"total"`
	Matching    int `json:"matching"`
	OnSale      int `json:"onSale"`
	PriceAlerts int `json:"priceAlerts"`
	// TotalValue sums the lowest regional price of every entry.
	TotalValue        float64 `json:"totalValue"`
	TotalValueDisplay string  `json:"totalValueDisplay"`
}

type AlertReport struct {
	Region    domain.Region       `json:"region"`
	Checked   int                 `json:"checked"`
	Failed    int                 `json:"failed"`
	Triggered []domain.PriceAlert `json:"triggered"`
	Notified  bool                `json:"notified"`
	Advisory  *Advisory           `json:"advisory,omitempty"`
}

type WishlistService struct {
	source   DealsSource
	resolver *pricing.Resolver
	repo     *repository.WishlistRepository
	settings *repository.SettingsRepository
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewWishlistService(source DealsSource, resolver *pricing.Resolver, repo *repository.WishlistRepository, settings *repository.SettingsRepository, notifier notify.Notifier, logger zerolog.Logger) *WishlistService {
	return &WishlistService{
		source:   source,
		resolver: resolver,
		repo:     repo,
		settings: settings,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Add fetches the game and stores a snapshot of it. Adding a tracked game is a no-op.
func (s *WishlistService) Add(ctx context.Context, gameID string) (domain.WishlistEntry, bool, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return domain.WishlistEntry{}, false, fmt.Errorf("%w: missing id", domain.ErrInvalidGame)
	}

	if entry, err := s.repo.Get(ctx, gameID); err == nil {
		return entry, false, nil
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	game, err := s.source.GameDetails(apiCtx, gameID)
	if err != nil {
		s.logger.Error().Err(err).Str("game_id", gameID).Msg("failed to fetch game for wishlist")
		return domain.WishlistEntry{}, false, fmt.Errorf("failed to fetch game %s: %w", gameID, err)
	}
	return s.repo.Add(ctx, game)
}

func (s *WishlistService) Remove(ctx context.Context, gameID string) (bool, error) {
	return s.repo.Remove(ctx, gameID)
}

func (s *WishlistService) SetPriceAlert(ctx context.Context, gameID string, target float64) (domain.WishlistEntry, error) {
	return s.repo.SetPriceAlert(ctx, gameID, target)
}

func (s *WishlistService) ClearPriceAlert(ctx context.Context, gameID string) (domain.WishlistEntry, error) {
	return s.repo.ClearPriceAlert(ctx, gameID)
}

func (s *WishlistService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

// List prices every stored snapshot for the region without contacting the source.
// A non-empty query keeps entries whose title or any tag contains it.
func (s *WishlistService) List(ctx context.Context, regionCode, query string) (*WishlistView, error) {
	region := regionFor(ctx, regionCode, s.settings, s.resolver, s.logger)

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	view := &WishlistView{Region: region, Items: make([]WishlistItem, 0, len(entries))}
	view.Stats.Total = len(entries)
	for _, e := range entries {
		e.Game = localize(s.resolver, e.Game, region.Code)
		item := WishlistItem{WishlistEntry: e}
		if summary, err := pricing.Summarize(e.Game.Stores, region); err == nil {
			item.Deal = &summary
			item.AlertMet = e.PriceAlert != nil && summary.Best.Price <= *e.PriceAlert
			view.Stats.TotalValue += summary.Best.Price
		}
		if e.PriceAlert != nil {
			item.AlertDisplay = pricing.FormatForRegion(*e.PriceAlert, region)
			view.Stats.PriceAlerts++
		}
		if onSale(e.Game.Stores) {
			view.Stats.OnSale++
		}
		if matchesQuery(e.Game, query) {
			view.Items = append(view.Items, item)
		}
	}

	view.Stats.Matching = len(view.Items)
	view.Stats.TotalValue = pricing.RoundFor(region.CurrencyCode, view.Stats.TotalValue)
	view.Stats.TotalValueDisplay = pricing.FormatForRegion(view.Stats.TotalValue, region)
	return view, nil
}

func onSale(offers []domain.StoreOffer) bool {
	for _, o := range offers {
		if o.OnSale() {
			return true
		}
	}
	return false
}

// matchesQuery expects a lowercased query; empty matches everything.
func matchesQuery(g domain.Game, query string) bool {
	if query == "" || strings.Contains(strings.ToLower(g.Title), query) {
		return true
	}
	for _, tag := range g.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// CheckPriceAlerts refreshes every entry carrying an alert and triggers those whose
// best regional price is at or below the target. Targets are in the region's currency.
// Entries that cannot be refreshed are counted as failed and skipped.
func (s *WishlistService) CheckPriceAlerts(ctx context.Context, regionCode string) (*AlertReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	region := regionFor(ctx, regionCode, s.settings, s.resolver, s.logger)
	report := &AlertReport{Region: region, Triggered: []domain.PriceAlert{}}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var watched []domain.WishlistEntry
	for _, e := range entries {
		if e.PriceAlert != nil {
			watched = append(watched, e)
		}
	}
	report.Checked = len(watched)
	if len(watched) == 0 {
		return report, nil
	}

	s.logger.Info().Int("alerts", len(watched)).Str("region", region.Code).Msg("checking price alerts")

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	// results are indexed by wishlist position so the report keeps wishlist order
	triggered := make([]*domain.PriceAlert, len(watched))
	var (
		mu          sync.Mutex
		failed      int
		unavailable bool
	)

	g, gCtx := errgroup.WithContext(apiCtx)
	g.SetLimit(alertCheckConcurrency)
	for i, e := range watched {
		i, e := i, e
		g.Go(func() error {
			game, err := s.source.GameDetails(gCtx, e.Game.ID)
			if err != nil {
				s.logger.Warn().Err(err).Str("game_id", e.Game.ID).Msg("failed to refresh wishlist game")
				mu.Lock()
				failed++
				if errors.Is(err, domain.ErrServiceUnavailable) {
					unavailable = true
				}
				mu.Unlock()
				return nil
			}

			game = localize(s.resolver, game, region.Code)
			best, err := pricing.SelectBestDeal(game.Stores)
			if err != nil || best.Price > *e.PriceAlert {
				return nil
			}

			id, err := gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate alert id: %w", err)
			}
			triggered[i] = &domain.PriceAlert{
				ID:          id,
				GameID:      game.ID,
				Title:       game.Title,
				Target:      *e.PriceAlert,
				Store:       best.Store,
				Price:       best.Price,
				Display:     pricing.FormatForRegion(best.Price, region),
				Region:      region.Code,
				TriggeredAt: s.now().UTC(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Failed = failed
	if unavailable {
		a := unavailableAdvisory
		report.Advisory = &a
	}
	for _, a := range triggered {
		if a != nil {
			report.Triggered = append(report.Triggered, *a)
		}
	}

	if len(report.Triggered) == 0 {
		return report, nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load notification settings, notifying anyway")
	}
	if err == nil && !settings.Notifications.PriceAlerts {
		s.logger.Info().Int("triggered", len(report.Triggered)).Msg("price alert notifications disabled")
		return report, nil
	}

	report.Notified = true
	for _, a := range report.Triggered {
		if err := s.notifier.Notify(ctx, a); err != nil {
			s.logger.Error().Err(err).Str("alert_id", a.ID).Msg("failed to deliver price alert")
			report.Notified = false
		}
	}

	s.logger.Info().
		Int("checked", report.Checked).
		Int("triggered", len(report.Triggered)).
		Int("failed", report.Failed).
		Msg("price alert check completed")
	return report, nil
}
