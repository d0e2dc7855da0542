package repository

import (
	"context"

	"github.com/user/job-insights/internal/entity"
)

type DOMEventKind string

const (
	// DOMInsert reports a job card node that appeared or changed.
	DOMInsert DOMEventKind = "insert"
	// DOMFocus reports that the user focused a job (click or in-app navigation).
	DOMFocus DOMEventKind = "focus"
)

// DOMEvent is one observation from the page.
type DOMEvent struct {
	Kind      DOMEventKind
	Candidate entity.CandidateElement
	// FocusJobID is set for DOMFocus events.
	FocusJobID string
}

type DOMHandler func(ev DOMEvent)

// DOMSource observes the page for job listing nodes and focus changes.
type DOMSource interface {
	Observe(ctx context.Context, handle DOMHandler) (cancel func(), err error)
}

// Presenter draws insight overlays into the page.
type Presenter interface {
	// ShowPlaceholder attaches a loading overlay for jobID to the node with key. An
	// overlay already showing jobID is kept; one showing another job is replaced.
	ShowPlaceholder(ctx context.Context, key, jobID string) error
	// Render attaches or replaces the overlay of the node with key.
	Render(ctx context.Context, key string, rec *entity.JobRecord) error
	// ShowFocused draws the singleton focus overlay. rec is nil while loading.
	ShowFocused(ctx context.Context, jobID string, rec *entity.JobRecord) error
	// DismissFocused removes the focus overlay if any.
	DismissFocused(ctx context.Context) error
}
