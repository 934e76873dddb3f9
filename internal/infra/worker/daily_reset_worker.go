package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CounterResetter zeroes every seller's leads_received_today.
type CounterResetter interface {
	ResetDailyCounters(ctx context.Context) (int64, error)
}

// DailyResetWorker resets the daily lead counters at local midnight.
type DailyResetWorker struct {
	resetter CounterResetter
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func NewDailyResetWorker(resetter CounterResetter, location *time.Location, logger *zap.Logger) *DailyResetWorker {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyResetWorker{resetter: resetter, location: location, logger: logger, now: time.Now}
}

// nextMidnight returns the first local midnight strictly after t.
func nextMidnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

func (w *DailyResetWorker) Start(ctx context.Context) {
	w.logger.Info("🕒 Daily Reset Worker iniciado", zap.String("location", w.location.String()))

	for {
		wait := nextMidnight(w.now(), w.location).Sub(w.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("⚠️ Daily Reset Worker encerrado")
			return
		case <-timer.C:
			w.reset(ctx)
		}
	}
}

func (w *DailyResetWorker) reset(ctx context.Context) {
	n, err := w.resetter.ResetDailyCounters(ctx)
	if err != nil {
		w.logger.Error("❌ Erro ao zerar contadores diários", zap.Error(err))
		return
	}
	w.logger.Info("✅ contadores diários zerados", zap.Int64("users", n))
}
