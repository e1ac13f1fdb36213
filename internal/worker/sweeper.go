package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/repository"
)

// PendingSweeper cancels sessions that were never paid. A pending
// session holds no slot, but sweeping keeps patient session lists from
// filling up with dead bookings.
type PendingSweeper struct {
	sessions *repository.SessionRepository
	ttl      time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewPendingSweeper(sessions *repository.SessionRepository, ttl time.Duration, logger *zap.Logger) *PendingSweeper {
	return &PendingSweeper{
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		cron:     cron.New(),
	}
}

func (w *PendingSweeper) Start() error {
	if _, err := w.cron.AddFunc("@every 1m", w.sweep); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("pending session sweeper started", zap.Duration("ttl", w.ttl))
	return nil
}

func (w *PendingSweeper) Stop() {
	<-w.cron.Stop().Done()
}

func (w *PendingSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	swept, err := w.sessions.CancelStalePending(ctx, time.Now().Add(-w.ttl))
	if err != nil {
		w.logger.Error("pending session sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		w.logger.Info("stale pending sessions cancelled", zap.Int64("count", swept))
	}
}
