package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// AlertWorker runs CheckPriceAlerts for the selected region on a fixed interval.
type AlertWorker struct {
	wishlist *WishlistService
	interval time.Duration
	logger   zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAlertWorker(wishlist *WishlistService, interval time.Duration, logger zerolog.Logger) *AlertWorker {
	return &AlertWorker{wishlist: wishlist, interval: interval, logger: logger}
}

// Start is a no-op when the interval is not positive.
func (w *AlertWorker) Start() {
	if w.interval <= 0 {
		w.logger.Debug().Msg("price alert worker disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.Info().Dur("interval", w.interval).Msg("price alert worker started")
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

func (w *AlertWorker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.logger.Info().Msg("price alert worker stopped")
}

func (w *AlertWorker) runOnce(ctx context.Context) {
	report, err := w.wishlist.CheckPriceAlerts(ctx, "")
	if err != nil {
		w.logger.Error().Err(err).Msg("scheduled price alert check failed")
		return
	}
	w.logger.Debug().
		Int("checked", report.Checked).
		Int("triggered", len(report.Triggered)).
		Msg("scheduled price alert check done")
}
