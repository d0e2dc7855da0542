package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/job-insights/internal/entity"
	"github.com/user/job-insights/internal/repository"
	"github.com/user/job-insights/pkg/metrics"
)

// Scheduler runs fn after d unless the returned cancel is called first.
type Scheduler func(d time.Duration, fn func(ctx context.Context)) (cancel func())

// FocusOverlay owns the single overlay shown for the job the user is looking at.
// It is not safe for concurrent use.
type FocusOverlay struct {
	store     repository.JobRecordRepository
	presenter repository.Presenter
	schedule  Scheduler
	timeout   time.Duration
	logger    *zap.Logger

	jobID       string
	generation  uint64
	cancelTimer func()
}

func NewFocusOverlay(store repository.JobRecordRepository, presenter repository.Presenter, schedule Scheduler, timeout time.Duration, logger *zap.Logger) *FocusOverlay {
	return &FocusOverlay{
		store:     store,
		presenter: presenter,
		schedule:  schedule,
		timeout:   timeout,
		logger:    logger,
	}
}

// Show replaces any current overlay with one for jobID. Until the record is stored the
// overlay shows a loading state.
func (f *FocusOverlay) Show(ctx context.Context, jobID string) {
	if jobID == "" {
		return
	}
	f.Close(ctx)

	f.jobID = jobID
	rec, _ := f.store.Get(jobID)
	if err := f.presenter.ShowFocused(ctx, jobID, rec); err != nil {
		f.logger.Debug("focus overlay not shown", zap.String("job_id", jobID), zap.Error(err))
	}
	metrics.FocusOverlaysShown.Inc()

	gen := f.generation
	f.cancelTimer = f.schedule(f.timeout, func(ctx context.Context) {
		if f.generation == gen && f.jobID != "" {
			f.Close(ctx)
		}
	})
}

// RecordStored refreshes the overlay when it is waiting on rec.
func (f *FocusOverlay) RecordStored(ctx context.Context, rec *entity.JobRecord) {
	if f.jobID == "" || rec.ID != f.jobID {
		return
	}
	if err := f.presenter.ShowFocused(ctx, f.jobID, rec); err != nil {
		f.logger.Debug("focus overlay not updated", zap.String("job_id", f.jobID), zap.Error(err))
	}
}

// Close tears down the current overlay, if any.
func (f *FocusOverlay) Close(ctx context.Context) {
	if f.cancelTimer != nil {
		f.cancelTimer()
		f.cancelTimer = nil
	}
	f.generation++
	if f.jobID == "" {
		return
	}
	f.jobID = ""
	if err := f.presenter.DismissFocused(ctx); err != nil {
		f.logger.Debug("focus overlay not dismissed", zap.Error(err))
	}
}

// Active returns the job currently shown, or "".
func (f *FocusOverlay) Active() string {
	return f.jobID
}
