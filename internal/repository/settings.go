package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"game-deals/internal/constants"
	"game-deals/internal/domain"
	"game-deals/internal/storage"

	"github.com/rs/zerolog"
)

const (
	DefaultTheme  = domain.ThemeGame
	DefaultRegion = "US"
)

// SettingsRepository maps user preferences onto individual persisted keys.
// Plain strings are stored as-is, notifications as a JSON object.
type SettingsRepository struct {
	kv            storage.KV
	logger        zerolog.Logger
	defaultRegion string
}

func NewSettingsRepository(kv storage.KV, defaultRegion string, logger zerolog.Logger) *SettingsRepository {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = DefaultRegion
	}
	return &SettingsRepository{
		kv:            kv,
		logger:        logger,
		defaultRegion: region,
	}
}

func (r *SettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	settings := domain.Settings{
		Theme:          DefaultTheme,
		SelectedRegion: r.defaultRegion,
		Notifications:  domain.DefaultNotifications(),
	}

	name, _, err := r.kv.Get(ctx, constants.KeyUserName)
	if err != nil {
		return settings, fmt.Errorf("failed to load user name: %w", err)
	}
	settings.UserName = name

	welcome, _, err := r.kv.Get(ctx, constants.KeyCompletedWelcome)
	if err != nil {
		return settings, fmt.Errorf("failed to load welcome flag: %w", err)
	}
	settings.CompletedWelcome = welcome == "true"

	theme, ok, err := r.kv.Get(ctx, constants.KeyTheme)
	if err != nil {
		return settings, fmt.Errorf("failed to load theme: %w", err)
	}
	if ok {
		if t := domain.Theme(theme); t.Valid() {
			settings.Theme = t
		} else {
			r.logger.Warn().Str("theme", theme).Msg("stored theme is invalid, using default")
		}
	}

	region, ok, err := r.kv.Get(ctx, constants.KeySelectedRegion)
	if err != nil {
		return settings, fmt.Errorf("failed to load region: %w", err)
	}
	if ok && strings.TrimSpace(region) != "" {
		settings.SelectedRegion = strings.ToUpper(strings.TrimSpace(region))
	}

	raw, ok, err := r.kv.Get(ctx, constants.KeyNotifications)
	if err != nil {
		return settings, fmt.Errorf("failed to load notifications: %w", err)
	}
	if ok && raw != "" {
		// unmarshal over the defaults so missing fields keep their default value
		n := domain.DefaultNotifications()
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			r.logger.Warn().Err(err).Msg("stored notification settings are corrupt, using defaults")
		} else {
			settings.Notifications = n
		}
	}

	return settings, nil
}

// Save writes every field of s. CompletedWelcome=false removes the flag.
func (r *SettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	if err := r.SetUserName(ctx, s.UserName); err != nil {
		return err
	}
	if err := r.SetTheme(ctx, s.Theme); err != nil {
		return err
	}
	if err := r.SetRegion(ctx, s.SelectedRegion); err != nil {
		return err
	}
	if err := r.SetNotifications(ctx, s.Notifications); err != nil {
		return err
	}
	return r.setWelcome(ctx, s.CompletedWelcome)
}

func (r *SettingsRepository) SetUserName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		if err := r.kv.Remove(ctx, constants.KeyUserName); err != nil {
			return fmt.Errorf("failed to clear user name: %w", err)
		}
		return nil
	}
	if err := r.kv.Set(ctx, constants.KeyUserName, name); err != nil {
		return fmt.Errorf("failed to save user name: %w", err)
	}
	return nil
}

func (r *SettingsRepository) SetTheme(ctx context.Context, theme domain.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: theme %q", domain.ErrInvalidSettings, theme)
	}
	if err := r.kv.Set(ctx, constants.KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

func (r *SettingsRepository) SetRegion(ctx context.Context, region string) error {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return fmt.Errorf("%w: empty region", domain.ErrInvalidSettings)
	}
	if err := r.kv.Set(ctx, constants.KeySelectedRegion, region); err != nil {
		return fmt.Errorf("failed to save region: %w", err)
	}
	return nil
}

func (r *SettingsRepository) SetNotifications(ctx context.Context, n domain.Notifications) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}
	if err := r.kv.Set(ctx, constants.KeyNotifications, string(data)); err != nil {
		return fmt.Errorf("failed to save notifications: %w", err)
	}
	return nil
}

func (r *SettingsRepository) CompleteWelcome(ctx context.Context) error {
	return r.setWelcome(ctx, true)
}

func (r *SettingsRepository) setWelcome(ctx context.Context, done bool) error {
	var err error
	if done {
		err = r.kv.Set(ctx, constants.KeyCompletedWelcome, "true")
	} else {
		err = r.kv.Remove(ctx, constants.KeyCompletedWelcome)
	}
	if err != nil {
		return fmt.Errorf("failed to save welcome flag: %w", err)
	}
	return nil
}

// Reset removes every persisted preference. The wishlist key is left to
// WishlistRepository.Clear, which serializes with in-flight wishlist writes.
func (r *SettingsRepository) Reset(ctx context.Context) error {
	removed := 0
	for _, key := range constants.PersistedKeys {
		if key == constants.KeyWishlist {
			continue
		}
		if err := r.kv.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
		removed++
	}
	r.logger.Info().Int("keys", removed).Msg("settings reset")
	return nil
}
