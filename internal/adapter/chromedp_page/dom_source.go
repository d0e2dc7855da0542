package chromedp_page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/job-insights/internal/bus"
	"github.com/user/job-insights/internal/repository"
	"github.com/user/job-insights/pkg/jobid"
)

var errAlreadyObserved = errors.New("dom source already observed")

// domMessage is what the observer script sends through the DOM binding.
type domMessage struct {
	Kind string `json:"kind"` // insert, focus, navigate
	Key  string `json:"key"`
	HTML string `json:"html"`
	URL  string `json:"url"`
}

// DOMSource reports job cards, clicks and in-app navigations from the page.
type DOMSource struct {
	tabCtx   context.Context
	bindings *Bindings
	logger   *zap.Logger

	mu     sync.Mutex
	queue  *bus.Queue[string]
	handle repository.DOMHandler
}

func NewDOMSource(tabCtx context.Context, bindings *Bindings, logger *zap.Logger) *DOMSource {
	return &DOMSource{
		tabCtx:   tabCtx,
		bindings: bindings,
		logger:   logger.With(zap.String("component", "dom_source")),
	}
}

// Observe installs the page observer. Only one observer is active at a time.
func (d *DOMSource) Observe(ctx context.Context, handle repository.DOMHandler) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queue != nil {
		return nil, errAlreadyObserved
	}

	// Card HTML is parsed off the CDP event goroutine, in arrival order.
	d.handle = handle
	d.queue = bus.NewQueue(d.process)
	if err := d.bindings.Handle(domBinding, d.queue.Publish); err != nil {
		d.queue.Close()
		d.queue = nil
		return nil, err
	}
	if err := injectScript(d.tabCtx, observerScript()); err != nil {
		d.bindings.Remove(domBinding)
		d.queue.Close()
		d.queue = nil
		return nil, fmt.Errorf("inject observer: %w", err)
	}

	return d.stop, nil
}

func (d *DOMSource) stop() {
	d.bindings.Remove(domBinding)

	d.mu.Lock()
	q := d.queue
	d.queue = nil
	d.mu.Unlock()
	if q != nil {
		q.Close()
	}

	// Best effort: the tab may already be gone.
	const js = `window.__jobInsightsObserver && window.__jobInsightsObserver.disconnect()`
	if err := chromedp.Run(d.tabCtx, chromedp.Evaluate(js, nil)); err != nil {
		d.logger.Debug("observer not disconnected", zap.Error(err))
	}
}

func (d *DOMSource) process(payload string) {
	ev, ok := d.parse(payload)
	if !ok {
		return
	}
	d.handle(ev)
}

func (d *DOMSource) parse(payload string) (repository.DOMEvent, bool) {
	var msg domMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		d.logger.Debug("ignoring malformed dom message", zap.Error(err))
		return repository.DOMEvent{}, false
	}

	switch msg.Kind {
	case "insert", "focus":
		if msg.Key == "" {
			return repository.DOMEvent{}, false
		}
		cand, err := ExtractCandidate(msg.Key, msg.HTML)
		if err != nil {
			d.logger.Debug("card html not parsed", zap.String("key", msg.Key), zap.Error(err))
			return repository.DOMEvent{}, false
		}
		if msg.Kind == "insert" {
			return repository.DOMEvent{Kind: repository.DOMInsert, Candidate: cand}, true
		}
		if cand.JobID == "" {
			return repository.DOMEvent{}, false
		}
		return repository.DOMEvent{Kind: repository.DOMFocus, FocusJobID: cand.JobID}, true

	case "navigate":
		id := jobid.FromURL(msg.URL)
		if id == "" {
			return repository.DOMEvent{}, false
		}
		return repository.DOMEvent{Kind: repository.DOMFocus, FocusJobID: id}, true
	}

	d.logger.Debug("ignoring dom message", zap.String("kind", msg.Kind))
	return repository.DOMEvent{}, false
}
