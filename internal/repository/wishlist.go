package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"game-deals/internal/constants"
	"game-deals/internal/domain"
	"game-deals/internal/storage"

	"github.com/rs/zerolog"
)

// WishlistRepository persists the wishlist as one JSON array under the wishlist key.
// Every mutation rewrites the whole array.
type WishlistRepository struct {
	kv     storage.KV
	logger zerolog.Logger
	now    func() time.Time

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func NewWishlistRepository(kv storage.KV, logger zerolog.Logger) *WishlistRepository {
	return &WishlistRepository{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

func (r *WishlistRepository) List(ctx context.Context) ([]domain.WishlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *WishlistRepository) Get(ctx context.Context, gameID string) (domain.WishlistEntry, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return domain.WishlistEntry{}, err
	}
	if i := indexOf(entries, gameID); i >= 0 {
		return entries[i], nil
	}
	return domain.WishlistEntry{}, fmt.Errorf("%w: %s", domain.ErrNotInWishlist, gameID)
}

// Add appends a snapshot of the game. Adding a game that is already tracked returns
// the existing entry with added=false.
func (r *WishlistRepository) Add(ctx context.Context, game domain.Game) (domain.WishlistEntry, bool, error) {
	if game.ID == "" {
		return domain.WishlistEntry{}, false, fmt.Errorf("%w: missing id", domain.ErrInvalidGame)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return domain.WishlistEntry{}, false, err
	}
	if i := indexOf(entries, game.ID); i >= 0 {
		return entries[i], false, nil
	}

	entry := domain.WishlistEntry{Game: game, DateAdded: r.now().UTC()}
	entries = append(entries, entry)
	if err := r.save(ctx, entries); err != nil {
		return domain.WishlistEntry{}, false, err
	}

	r.logger.Info().Str("game_id", game.ID).Str("title", game.Title).Msg("added to wishlist")
	return entry, true, nil
}

// Remove deletes the entry for gameID. Removing an untracked game is not an error.
func (r *WishlistRepository) Remove(ctx context.Context, gameID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(entries, gameID)
	if i < 0 {
		return false, nil
	}
	entries = append(entries[:i], entries[i+1:]...)
	if err := r.save(ctx, entries); err != nil {
		return false, err
	}

	r.logger.Info().Str("game_id", gameID).Msg("removed from wishlist")
	return true, nil
}

func (r *WishlistRepository) SetPriceAlert(ctx context.Context, gameID string, target float64) (domain.WishlistEntry, error) {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return domain.WishlistEntry{}, fmt.Errorf("%w: %v", domain.ErrInvalidPriceAlert, target)
	}
	return r.update(ctx, gameID, func(e *domain.WishlistEntry) {
		e.PriceAlert = domain.Float(target)
	})
}

func (r *WishlistRepository) ClearPriceAlert(ctx context.Context, gameID string) (domain.WishlistEntry, error) {
	return r.update(ctx, gameID, func(e *domain.WishlistEntry) {
		e.PriceAlert = nil
	})
}

func (r *WishlistRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Remove(ctx, constants.KeyWishlist); err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	r.logger.Info().Msg("wishlist cleared")
	return nil
}

func (r *WishlistRepository) update(ctx context.Context, gameID string, fn func(*domain.WishlistEntry)) (domain.WishlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		return domain.WishlistEntry{}, err
	}
	i := indexOf(entries, gameID)
	if i < 0 {
		return domain.WishlistEntry{}, fmt.Errorf("%w: %s", domain.ErrNotInWishlist, gameID)
	}
	fn(&entries[i])
	if err := r.save(ctx, entries); err != nil {
		return domain.WishlistEntry{}, err
	}
	return entries[i], nil
}

// load must be called with mu held. Unreadable JSON is treated as an empty wishlist.
func (r *WishlistRepository) load(ctx context.Context) ([]domain.WishlistEntry, error) {
	raw, ok, err := r.kv.Get(ctx, constants.KeyWishlist)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}
	if !ok || raw == "" {
		return []domain.WishlistEntry{}, nil
	}

	var entries []domain.WishlistEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		r.logger.Warn().Err(err).Msg("stored wishlist is corrupt, starting from an empty wishlist")
		return []domain.WishlistEntry{}, nil
	}

	// drop anything a foreign writer may have left behind without an id, and duplicates
	seen := make(map[string]struct{}, len(entries))
	clean := entries[:0]
	for _, e := range entries {
		if e.Game.ID == "" {
			continue
		}
		if _, dup := seen[e.Game.ID]; dup {
			continue
		}
		seen[e.Game.ID] = struct{}{}
		clean = append(clean, e)
	}
	return clean, nil
}

func (r *WishlistRepository) save(ctx context.Context, entries []domain.WishlistEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}
	if err := r.kv.Set(ctx, constants.KeyWishlist, string(data)); err != nil {
		return fmt.Errorf("failed to save wishlist: %w", err)
	}
	return nil
}

func indexOf(entries []domain.WishlistEntry, gameID string) int {
	for i, e := range entries {
		if e.Game.ID == gameID {
			return i
		}
	}
	return -1
}
