package worker

import (
	"context"
	"time"
)

// NoShowSweeper отмечает неявки по подтвержденным записям
type NoShowSweeper interface {
	SweepNoShows(ctx context.Context) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// NoShowWorker периодически запускает отметку неявок
type NoShowWorker struct {
	sweeper  NoShowSweeper
	interval time.Duration
	logger   Logger
}

// NewNoShowWorker создает воркер. interval <= 0 заменяется на минуту
func NewNoShowWorker(sweeper NoShowSweeper, interval time.Duration, logger Logger) *NoShowWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &NoShowWorker{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Run блокируется до отмены контекста. Первый проход выполняется сразу
func (w *NoShowWorker) Run(ctx context.Context) {
	w.logger.Info("NoShowWorker: started, interval=%s", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.sweep(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info("NoShowWorker: stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *NoShowWorker) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	marked, err := w.sweeper.SweepNoShows(ctx)
	if err != nil {
		w.logger.Error("NoShowWorker: sweep failed (marked=%d): %v", marked, err)
		return
	}
	if marked > 0 {
		w.logger.Info("NoShowWorker: marked %d appointments as no_show", marked)
	}
}
