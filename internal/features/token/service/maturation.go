package service

import (
	"context"
	"sync"
	"time"

	"exchange-backend/internal/common/logger"
)

// MaturationWorker periodically settles matured deposit tokens.
type MaturationWorker struct {
	service  TokenService
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMaturationWorker(service TokenService, interval time.Duration) *MaturationWorker {
	return &MaturationWorker{service: service, interval: interval}
}

func (w *MaturationWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		logger.Info().Dur("interval", w.interval).Msg("Maturation worker started")

		for {
			select {
			case <-ticker.C:
				settled, err := w.service.ProcessMatured(ctx)
				if err != nil {
					logger.Error().Err(err).Msg("Maturation pass failed")
					continue
				}
				if settled > 0 {
					logger.Info().Int("settled", settled).Msg("Maturation pass settled tokens")
				}
			case <-ctx.Done():
				logger.Info().Msg("Maturation worker stopped")
				return
			}
		}
	}()
}

// Stop cancels the worker and waits for the inflight pass.
func (w *MaturationWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
