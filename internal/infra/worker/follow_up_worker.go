package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type followUpRunner interface {
	Execute(ctx context.Context) (*usecase.RunFollowUpsOutput, error)
}

// FollowUpWorker roda a varredura de follow-ups em intervalo fixo.
type FollowUpWorker struct {
	runner       followUpRunner
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewFollowUpWorker(runner followUpRunner, interval time.Duration, logger *zap.Logger) *FollowUpWorker {
	return &FollowUpWorker{
		runner:       runner,
		tickInterval: interval,
		logger:       logger,
	}
}

// Start roda uma vez na hora e depois a cada tick, até o ctx ser cancelado.
func (w *FollowUpWorker) Start(ctx context.Context) {
	w.logger.Info("follow-up worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("follow-up worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *FollowUpWorker) runOnce(ctx context.Context) {
	start := time.Now()
	out, err := w.runner.Execute(ctx)
	if err != nil {
		w.logger.Error("follow-up scan failed", zap.Error(err))
		return
	}

	if len(out.Reminders) > 0 {
		w.logger.Info("follow-up reminders processed",
			zap.Int("count", len(out.Reminders)),
			zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
		)
	}
}
