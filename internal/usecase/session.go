package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/job-insights/internal/entity"
	"github.com/user/job-insights/internal/repository"
	"github.com/user/job-insights/pkg/metrics"
)

type SessionState string

const (
	SessionIdle    SessionState = "idle"
	SessionRunning SessionState = "running"
	SessionStopped SessionState = "stopped"
)

var (
	ErrSessionStarted = errors.New("session already started")
	ErrSessionStopped = errors.New("session stopped")
)

const (
	eventQueueSize  = 1024
	teardownTimeout = 5 * time.Second
)

// SessionDeps wires a session to its page.
type SessionDeps struct {
	Port         repository.InterceptionPort
	DOM          repository.DOMSource
	Presenter    repository.Presenter
	Store        repository.JobRecordRepository
	Match        repository.ResponseMatcher
	Location     *time.Location
	FocusTimeout time.Duration
	Logger       *zap.Logger
}

// SessionStats is a point-in-time view for operators.
type SessionStats struct {
	ID         string       `json:"id"`
	State      SessionState `json:"state"`
	Records    int          `json:"records"`
	Candidates int64        `json:"candidates"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
}

// Session is the instrumentation of one page. Every callback from the page (captured
// responses, DOM observations, timers) runs on a single event loop goroutine, so the
// correlator and focus overlay need no locking and records and cards can arrive in any
// order.
type Session struct {
	id         string
	deps       SessionDeps
	logger     *zap.Logger
	pipeline   *Pipeline
	correlator *Correlator
	focus      *FocusOverlay

	mu          sync.Mutex
	state       SessionState
	startedAt   time.Time
	cancel      context.CancelFunc
	unsubscribe []func()
	loopCtx     context.Context
	events      chan func(ctx context.Context)
	done        chan struct{}

	candidates atomic.Int64
}

func NewSession(deps SessionDeps) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	id := uuid.NewString()
	logger := deps.Logger.With(zap.String("session_id", id))

	s := &Session{
		id:     id,
		deps:   deps,
		logger: logger,
		state:  SessionIdle,
		events: make(chan func(ctx context.Context), eventQueueSize),
		done:   make(chan struct{}),
	}
	s.pipeline = NewPipeline(deps.Location, logger.With(zap.String("component", "pipeline")))
	s.correlator = NewCorrelator(deps.Store, deps.Presenter, logger.With(zap.String("component", "correlator")))
	s.focus = NewFocusOverlay(deps.Store, deps.Presenter, s.after, deps.FocusTimeout, logger.With(zap.String("component", "focus")))
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Store exposes the session's records for read-only lookups.
func (s *Session) Store() repository.JobRecordRepository { return s.deps.Store }

func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := SessionStats{
		ID:         s.id,
		State:      s.state,
		Records:    s.deps.Store.Len(),
		Candidates: s.candidates.Load(),
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		st.StartedAt = &t
	}
	return st
}

// Start subscribes to the page and starts the event loop. A session starts at most once.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case SessionRunning:
		s.mu.Unlock()
		return ErrSessionStarted
	case SessionStopped:
		s.mu.Unlock()
		return ErrSessionStopped
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.loopCtx = loopCtx
	s.cancel = cancel
	s.state = SessionRunning
	s.startedAt = time.Now()
	s.mu.Unlock()

	go s.loop(loopCtx)

	unsubPort, err := s.deps.Port.Subscribe(loopCtx, s.deps.Match, s.onResponse)
	if err != nil {
		s.Stop()
		return fmt.Errorf("subscribe to responses: %w", err)
	}
	s.addUnsubscribe(unsubPort)

	unsubDOM, err := s.deps.DOM.Observe(loopCtx, s.onDOMEvent)
	if err != nil {
		s.Stop()
		return fmt.Errorf("observe page: %w", err)
	}
	s.addUnsubscribe(unsubDOM)

	s.logger.Info("instrumentation session started")
	return nil
}

// Stop detaches observers, cancels timers and clears the store. Callbacks that fire
// afterwards are dropped. Stop is safe to call more than once.
func (s *Session) Stop() {
	s.mu.Lock()
	s.state = SessionStopped
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		// Never started, so there is no loop to wait for.
		return
	}
	cancel()
	<-s.done
}

func (s *Session) addUnsubscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.state != SessionRunning {
		s.mu.Unlock()
		fn()
		return
	}
	s.unsubscribe = append(s.unsubscribe, fn)
	s.mu.Unlock()
}

func (s *Session) onResponse(msg entity.InterceptedMessage) {
	metrics.ResponsesIntercepted.WithLabelValues(string(msg.TransportMethod)).Inc()
	s.enqueue(func(ctx context.Context) { s.handleResponse(ctx, msg) })
}

func (s *Session) onDOMEvent(ev repository.DOMEvent) {
	s.enqueue(func(ctx context.Context) { s.handleDOMEvent(ctx, ev) })
}

// after is the focus overlay's scheduler: the timer callback is queued on the loop.
func (s *Session) after(d time.Duration, fn func(ctx context.Context)) func() {
	t := time.AfterFunc(d, func() { s.enqueue(fn) })
	return func() { t.Stop() }
}

func (s *Session) enqueue(fn func(ctx context.Context)) {
	s.mu.Lock()
	running := s.state == SessionRunning
	ctx := s.loopCtx
	s.mu.Unlock()
	if !running {
		return
	}
	select {
	case s.events <- fn:
	case <-ctx.Done():
	}
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.teardown(ctx)
			return
		case fn := <-s.events:
			if s.State() != SessionRunning {
				continue
			}
			fn(ctx)
		}
	}
}

// teardown runs on the loop when its context ends, whether through Stop or because the
// parent context was cancelled.
func (s *Session) teardown(ctx context.Context) {
	s.mu.Lock()
	s.state = SessionStopped
	unsubs := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}

	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
	defer cancel()
	s.focus.Close(tctx)
	s.correlator.Reset()
	s.candidates.Store(0)
	s.deps.Store.Clear()
	s.logger.Info("instrumentation session stopped")
}

func (s *Session) handleResponse(ctx context.Context, msg entity.InterceptedMessage) {
	records, err := s.pipeline.Process(msg)
	if err != nil {
		s.logger.Warn("discarding captured response", zap.String("url", msg.URL), zap.Error(err))
		return
	}
	for _, rec := range records {
		s.deps.Store.Set(rec.ID, rec)
		metrics.RecordsStored.Inc()
		s.correlator.RecordStored(ctx, rec)
		s.focus.RecordStored(ctx, rec)
	}
	s.logger.Debug("captured job postings",
		zap.String("url", msg.URL),
		zap.String("transport", string(msg.TransportMethod)),
		zap.Int("records", len(records)),
	)
}

func (s *Session) handleDOMEvent(ctx context.Context, ev repository.DOMEvent) {
	switch ev.Kind {
	case repository.DOMInsert:
		s.correlator.Register(ctx, ev.Candidate)
		s.candidates.Store(int64(s.correlator.Len()))
	case repository.DOMFocus:
		s.focus.Show(ctx, ev.FocusJobID)
	default:
		s.logger.Debug("ignoring page event", zap.String("kind", string(ev.Kind)))
	}
}
