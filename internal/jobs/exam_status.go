package jobs

import (
	"context"
	"log/slog"
	"time"

	"exampro/internal/config"
)

const examStatusTimeout = 10 * time.Second

type ExamCloser interface {
	MarkPastExamsFinished(ctx context.Context, today time.Time) (int64, error)
}

type ExamRecorder interface {
	ExamsClosed(n int64)
}

// ExamStatusJob marks exams dated before today as finished.
type ExamStatusJob struct {
	store    ExamCloser
	recorder ExamRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewExamStatusJob(store ExamCloser, recorder ExamRecorder, logger *slog.Logger) *ExamStatusJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExamStatusJob{store: store, recorder: recorder, logger: logger, now: time.Now}
}

func (j *ExamStatusJob) WithClock(now func() time.Time) *ExamStatusJob {
	j.now = now
	return j
}

// RunOnce closes every past exam still marked upcoming and returns how many changed.
func (j *ExamStatusJob) RunOnce(ctx context.Context) (int64, error) {
	today := startOfDay(j.now())
	closed, err := j.store.MarkPastExamsFinished(ctx, today)
	if err != nil {
		return 0, err
	}
	if j.recorder != nil && closed > 0 {
		j.recorder.ExamsClosed(closed)
	}
	return closed, nil
}

func StartExamStatusJob(ctx context.Context, cfg config.Config, job *ExamStatusJob) {
	if !cfg.ExamStatusJobEnabled {
		return
	}
	if job == nil || job.store == nil {
		slog.Warn("exam status job disabled: store not configured")
		return
	}
	interval := cfg.ExamStatusJobInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, examStatusTimeout)
				closed, err := job.RunOnce(tickCtx)
				cancel()
				if err != nil {
					job.logger.Error("exam status job error", slog.Any("error", err))
					continue
				}
				if closed > 0 {
					job.logger.Info("exam status job closed exams", slog.Int64("count", closed))
				}
			}
		}
	}()
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
