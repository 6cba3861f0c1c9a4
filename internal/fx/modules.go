package fx

import (
	"context"
	"fmt"

	"game-deals/internal/api"
	"game-deals/internal/config"
	"game-deals/internal/constants"
	"game-deals/internal/database"
	"game-deals/internal/logger"
	"game-deals/internal/notify"
	"game-deals/internal/pricing"
	"game-deals/internal/repository"
	"game-deals/internal/server"
	"game-deals/internal/service"
	"game-deals/internal/storage"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideResolver(cfg *config.Config, logger zerolog.Logger) (*pricing.Resolver, error) {
	if cfg.PricingFile == "" {
		tables, err := pricing.DefaultTables()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in pricing tables: %w", err)
		}
		return pricing.NewResolver(tables), nil
	}

	tables, err := pricing.LoadTables(cfg.PricingFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing tables: %w", err)
	}
	logger.Info().Str("path", cfg.PricingFile).Msg("pricing tables loaded")
	return pricing.NewResolver(tables), nil
}

// ProvideStorage opens the configured preferences backend and closes it on shutdown.
func ProvideStorage(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (storage.KV, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.StorageTimeout)
	defer cancel()

	var kv storage.KV
	switch cfg.StorageDriver {
	case config.StorageMemory:
		kv = storage.NewMemory()
	case config.StorageRedis:
		r, err := storage.NewRedis(ctx, storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, err
		}
		kv = r
	case config.StoragePostgres:
		p, err := storage.NewPostgres(ctx, cfg.PostgresURL, logger)
		if err != nil {
			return nil, err
		}
		kv = p
	default:
		db, err := database.Open(cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		kv = storage.NewSQLite(db, logger)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if err := kv.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing storage")
			}
			return nil
		},
	})
	return kv, nil
}

func ProvideDealsSource(cfg *config.Config, logger zerolog.Logger) (service.DealsSource, error) {
	if cfg.DealsSource == config.SourceCheapShark {
		return api.NewCheapSharkClient(cfg.DealsAPIURL, logger), nil
	}
	static, err := api.NewStaticCatalog(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load static catalog: %w", err)
	}
	return static, nil
}

// ProvideNotifier publishes alerts to Kafka when brokers are configured and logs them otherwise.
func ProvideNotifier(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (notify.Notifier, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return notify.NewLogNotifier(logger), nil
	}

	n, err := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return n.Close()
		},
	})
	return n, nil
}

func ProvideSettingsRepository(kv storage.KV, cfg *config.Config, logger zerolog.Logger) *repository.SettingsRepository {
	return repository.NewSettingsRepository(kv, cfg.DefaultRegion, logger)
}

func ProvideAlertWorker(lc fx.Lifecycle, wishlist *service.WishlistService, cfg *config.Config, logger zerolog.Logger) *service.AlertWorker {
	w := service.NewAlertWorker(wishlist, cfg.AlertCheckInterval, logger)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			w.Stop()
			return nil
		},
	})
	return w
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(ProvideResolver),
	fx.Provide(ProvideStorage),
	fx.Provide(ProvideDealsSource),
	fx.Provide(ProvideNotifier),
	// repos
	fx.Provide(repository.NewWishlistRepository),
	fx.Provide(ProvideSettingsRepository),
	// svc
	fx.Provide(service.NewCatalogService),
	fx.Provide(service.NewWishlistService),
	fx.Provide(service.NewSettingsService),
	fx.Provide(ProvideAlertWorker),
	// server
	fx.Provide(server.NewCatalogServer),
)
