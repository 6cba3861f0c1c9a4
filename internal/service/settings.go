package service

import (
	"context"
	"fmt"
	"strings"

	"game-deals/internal/domain"
	"game-deals/internal/pricing"
	"game-deals/internal/repository"

	"github.com/asaskevich/govalidator"
	"github.com/rs/zerolog"
)

const maxUserNameLength = "40"

// SettingsUpdate carries the fields to change; nil fields are left untouched.
type SettingsUpdate struct {
	UserName       *string               `json:"userName,omitempty"`
	Theme          *domain.Theme         `json:"theme,omitempty"`
	SelectedRegion *string               `json:"selectedRegion,omitempty"`
	Notifications  *domain.Notifications `json:"notifications,omitempty"`
}

type SettingsService struct {
	repo     *repository.SettingsRepository
	wishlist *repository.WishlistRepository
	resolver *pricing.Resolver
	logger   zerolog.Logger
}

func NewSettingsService(repo *repository.SettingsRepository, wishlist *repository.WishlistRepository, resolver *pricing.Resolver, logger zerolog.Logger) *SettingsService {
	return &SettingsService{repo: repo, wishlist: wishlist, resolver: resolver, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	return s.repo.Get(ctx)
}

// Update validates every provided field before writing any of them.
func (s *SettingsService) Update(ctx context.Context, u SettingsUpdate) (domain.Settings, error) {
	if u.UserName != nil {
		if err := validateUserName(*u.UserName); err != nil {
			return domain.Settings{}, err
		}
	}
	if u.Theme != nil && !u.Theme.Valid() {
		return domain.Settings{}, fmt.Errorf("%w: theme %q", domain.ErrInvalidSettings, *u.Theme)
	}
	var region string
	if u.SelectedRegion != nil {
		var err error
		if region, err = s.validateRegion(*u.SelectedRegion); err != nil {
			return domain.Settings{}, err
		}
	}

	if u.UserName != nil {
		if err := s.repo.SetUserName(ctx, *u.UserName); err != nil {
			return domain.Settings{}, err
		}
	}
	if u.Theme != nil {
		if err := s.repo.SetTheme(ctx, *u.Theme); err != nil {
			return domain.Settings{}, err
		}
	}
	if u.SelectedRegion != nil {
		if err := s.repo.SetRegion(ctx, region); err != nil {
			return domain.Settings{}, err
		}
	}
	if u.Notifications != nil {
		if err := s.repo.SetNotifications(ctx, *u.Notifications); err != nil {
			return domain.Settings{}, err
		}
	}

	s.logger.Info().
		Bool("user_name", u.UserName != nil).
		Bool("theme", u.Theme != nil).
		Str("region", region).
		Bool("notifications", u.Notifications != nil).
		Msg("settings updated")
	return s.repo.Get(ctx)
}

// CompleteWelcome finishes onboarding, optionally recording the user's name.
func (s *SettingsService) CompleteWelcome(ctx context.Context, userName string) (domain.Settings, error) {
	if strings.TrimSpace(userName) != "" {
		if err := validateUserName(userName); err != nil {
			return domain.Settings{}, err
		}
		if err := s.repo.SetUserName(ctx, userName); err != nil {
			return domain.Settings{}, err
		}
	}
	if err := s.repo.CompleteWelcome(ctx); err != nil {
		return domain.Settings{}, err
	}
	return s.repo.Get(ctx)
}

// ResetData clears the wishlist and every stored preference.
func (s *SettingsService) ResetData(ctx context.Context) error {
	if err := s.wishlist.Clear(ctx); err != nil {
		return err
	}
	return s.repo.Reset(ctx)
}

func (s *SettingsService) validateRegion(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !govalidator.IsISO3166Alpha2(code) {
		return "", fmt.Errorf("%w: %q is not a country code", domain.ErrInvalidSettings, code)
	}
	if _, ok := s.resolver.Region(code); !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownRegion, code)
	}
	return code, nil
}

func validateUserName(name string) error {
	if !govalidator.StringLength(strings.TrimSpace(name), "0", maxUserNameLength) {
		return fmt.Errorf("%w: user name longer than %s characters", domain.ErrInvalidSettings, maxUserNameLength)
	}
	return nil
}
