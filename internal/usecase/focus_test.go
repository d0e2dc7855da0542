package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/job-insights/internal/adapter/memory"
	"github.com/user/job-insights/internal/entity"
)

// manualScheduler records timers so tests fire them explicitly.
type manualScheduler struct {
	timers []*manualTimer
}

type manualTimer struct {
	fn        func(ctx context.Context)
	cancelled bool
}

func (s *manualScheduler) schedule(_ time.Duration, fn func(ctx context.Context)) func() {
	t := &manualTimer{fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

func (s *manualScheduler) fire(ctx context.Context, i int) {
	t := s.timers[i]
	if !t.cancelled {
		t.fn(ctx)
	}
}

func TestFocusOverlaySingleton(t *testing.T) {
	ctx := context.Background()
	store := memory.NewJobRecordRepo()
	presenter := newFakePresenter()
	sched := &manualScheduler{}
	f := NewFocusOverlay(store, presenter, sched.schedule, time.Second, zap.NewNop())

	f.Show(ctx, "1")
	f.Show(ctx, "2")

	_, focused := presenter.snapshot()
	assert.Equal(t, "2", focused)
	assert.Equal(t, "2", f.Active())
	// The first overlay was torn down before the second was drawn.
	assert.Equal(t, 1, presenter.callCount("dismiss"))
	require.Len(t, sched.timers, 2)
	assert.True(t, sched.timers[0].cancelled)
}

func TestFocusOverlayAutoDismiss(t *testing.T) {
	ctx := context.Background()
	presenter := newFakePresenter()
	sched := &manualScheduler{}
	f := NewFocusOverlay(memory.NewJobRecordRepo(), presenter, sched.schedule, time.Second, zap.NewNop())

	f.Show(ctx, "1")
	sched.fire(ctx, 0)

	_, focused := presenter.snapshot()
	assert.Equal(t, "", focused)
	assert.Equal(t, "", f.Active())
}

func TestFocusOverlayStaleTimerIsIgnored(t *testing.T) {
	ctx := context.Background()
	presenter := newFakePresenter()
	sched := &manualScheduler{}
	f := NewFocusOverlay(memory.NewJobRecordRepo(), presenter, sched.schedule, time.Second, zap.NewNop())

	f.Show(ctx, "1")
	f.Show(ctx, "2")
	// A timer whose cancellation raced with firing still must not close the newer overlay.
	sched.timers[0].fn(ctx)

	assert.Equal(t, "2", f.Active())
}

func TestFocusOverlayUpdatesWhenRecordArrives(t *testing.T) {
	ctx := context.Background()
	store := memory.NewJobRecordRepo()
	presenter := newFakePresenter()
	sched := &manualScheduler{}
	f := NewFocusOverlay(store, presenter, sched.schedule, time.Second, zap.NewNop())

	f.Show(ctx, "9")
	assert.False(t, presenter.focusOK)

	f.RecordStored(ctx, &entity.JobRecord{ID: "8"})
	assert.False(t, presenter.focusOK)

	f.RecordStored(ctx, &entity.JobRecord{ID: "9", Title: "arrived"})
	assert.True(t, presenter.focusOK)
	assert.Equal(t, "9", f.Active())
}

func TestFocusOverlayCloseWithoutOverlay(t *testing.T) {
	presenter := newFakePresenter()
	sched := &manualScheduler{}
	f := NewFocusOverlay(memory.NewJobRecordRepo(), presenter, sched.schedule, time.Second, zap.NewNop())

	f.Close(context.Background())
	f.Show(context.Background(), "")

	assert.Equal(t, 0, presenter.callCount(""))
}
