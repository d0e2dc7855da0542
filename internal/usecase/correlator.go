package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/job-insights/internal/entity"
	"github.com/user/job-insights/internal/repository"
	"github.com/user/job-insights/pkg/metrics"
)

// Correlator matches job cards on the page with stored job records. Records and cards
// arrive in any order; both orders end with the card showing the newest record.
//
// Correlator is not safe for concurrent use. The session calls it from its event loop.
type Correlator struct {
	store     repository.JobRecordRepository
	presenter repository.Presenter
	logger    *zap.Logger

	elements map[string]*entity.CandidateElement
	byJob    map[string]map[string]struct{}
}

func NewCorrelator(store repository.JobRecordRepository, presenter repository.Presenter, logger *zap.Logger) *Correlator {
	return &Correlator{
		store:     store,
		presenter: presenter,
		logger:    logger,
		elements:  make(map[string]*entity.CandidateElement),
		byJob:     make(map[string]map[string]struct{}),
	}
}

// Register records a card observation and advances its state machine.
func (c *Correlator) Register(ctx context.Context, cand entity.CandidateElement) {
	if cand.Key == "" {
		return
	}

	el, seen := c.elements[cand.Key]
	if !seen {
		el = &entity.CandidateElement{Key: cand.Key, State: entity.CandidateUnresolved}
		c.elements[cand.Key] = el
	}

	if cand.JobID == "" {
		if !seen {
			metrics.CandidateTransitions.WithLabelValues(string(entity.CandidateUnresolved)).Inc()
		}
		return
	}
	if el.JobID == cand.JobID && el.State != entity.CandidateUnresolved {
		// Same node, same job: already has its overlay.
		return
	}

	if el.JobID != "" && el.JobID != cand.JobID {
		c.unindex(el.JobID, el.Key)
	}
	el.JobID = cand.JobID
	c.index(el.JobID, el.Key)

	if rec, ok := c.store.Get(el.JobID); ok {
		c.resolve(ctx, el, rec)
		return
	}

	el.State = entity.CandidatePending
	metrics.CandidateTransitions.WithLabelValues(string(entity.CandidatePending)).Inc()
	if err := c.presenter.ShowPlaceholder(ctx, el.Key, el.JobID); err != nil {
		c.logger.Debug("placeholder not shown", zap.String("key", el.Key), zap.String("job_id", el.JobID), zap.Error(err))
	}
}

// RecordStored updates every card that shows the job of rec.
func (c *Correlator) RecordStored(ctx context.Context, rec *entity.JobRecord) {
	for key := range c.byJob[rec.ID] {
		if el, ok := c.elements[key]; ok {
			c.resolve(ctx, el, rec)
		}
	}
}

// Element returns a copy of the tracked state of the card with key.
func (c *Correlator) Element(key string) (entity.CandidateElement, bool) {
	el, ok := c.elements[key]
	if !ok {
		return entity.CandidateElement{}, false
	}
	return *el, true
}

// Len returns the number of tracked cards.
func (c *Correlator) Len() int {
	return len(c.elements)
}

// Reset forgets every card.
func (c *Correlator) Reset() {
	c.elements = make(map[string]*entity.CandidateElement)
	c.byJob = make(map[string]map[string]struct{})
}

func (c *Correlator) resolve(ctx context.Context, el *entity.CandidateElement, rec *entity.JobRecord) {
	if el.State != entity.CandidateResolved {
		metrics.CandidateTransitions.WithLabelValues(string(entity.CandidateResolved)).Inc()
	}
	el.State = entity.CandidateResolved
	if err := c.presenter.Render(ctx, el.Key, rec); err != nil {
		c.logger.Debug("overlay not rendered", zap.String("key", el.Key), zap.String("job_id", rec.ID), zap.Error(err))
	}
}

func (c *Correlator) index(jobID, key string) {
	keys, ok := c.byJob[jobID]
	if !ok {
		keys = make(map[string]struct{})
		c.byJob[jobID] = keys
	}
	keys[key] = struct{}{}
}

func (c *Correlator) unindex(jobID, key string) {
	keys := c.byJob[jobID]
	delete(keys, key)
	if len(keys) == 0 {
		delete(c.byJob, jobID)
	}
}
