package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RemarketingRunner sends due remarketing messages and reports how many went out.
type RemarketingRunner interface {
	Run(ctx context.Context, now time.Time) (int, error)
}

type RemarketingWorker struct {
	runner       RemarketingRunner
	tickInterval time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewRemarketingWorker(runner RemarketingRunner, tickInterval time.Duration, logger *zap.Logger) *RemarketingWorker {
	if tickInterval <= 0 {
		tickInterval = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemarketingWorker{
		runner:       runner,
		tickInterval: tickInterval,
		logger:       logger,
		now:          time.Now,
	}
}

func (w *RemarketingWorker) Start(ctx context.Context) {
	w.logger.Info("🕒 Remarketing Worker iniciado", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("⚠️ Remarketing Worker encerrado")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *RemarketingWorker) tick(ctx context.Context) {
	sent, err := w.runner.Run(ctx, w.now())
	if err != nil {
		w.logger.Error("❌ Erro no remarketing", zap.Error(err))
		return
	}
	if sent > 0 {
		w.logger.Info("✅ remarketing disparado", zap.Int("messages", sent))
	}
}
