package jobs

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"go.uber.org/zap"
)

type FlashSaleRunner interface {
	RunLifecycle(ctx context.Context, now time.Time) (started, ended int, err error)
}

type CartSweeper interface {
	SweepAbandoned(ctx context.Context) (int, error)
}

func FlashSaleLifecycle(runner FlashSaleRunner, log logger.ZapLogger) Job {
	return func(ctx context.Context) error {
		started, ended, err := runner.RunLifecycle(ctx, time.Now())
		if err != nil {
			return err
		}
		if started+ended > 0 {
			log.Info("flash sale lifecycle", zap.Int("started", started), zap.Int("ended", ended))
		}
		return nil
	}
}

func AbandonedCartSweep(sweeper CartSweeper, log logger.ZapLogger) Job {
	return func(ctx context.Context) error {
		n, err := sweeper.SweepAbandoned(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("carts marked abandoned", zap.Int("count", n))
		}
		return nil
	}
}

// Register schedules the standard jobs.
func Register(s *Scheduler, flash FlashSaleRunner, carts CartSweeper, log logger.ZapLogger) error {
	if err := s.Add("@every 1m", "flash_sale_lifecycle", FlashSaleLifecycle(flash, log)); err != nil {
		return err
	}
	return s.Add("*/15 * * * *", "abandoned_cart_sweep", AbandonedCartSweep(carts, log))
}
