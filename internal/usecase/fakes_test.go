package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/user/job-insights/internal/entity"
	"github.com/user/job-insights/internal/repository"
)

type presenterCall struct {
	Op    string
	Key   string
	JobID string
	Rec   *entity.JobRecord
}

// fakePresenter keeps the visible page state: one overlay per key plus the focus overlay.
type fakePresenter struct {
	mu      sync.Mutex
	calls   []presenterCall
	views   map[string]string // key -> "placeholder:<job id>" or "<job id>|<title>"
	focused string            // job id, "" when none
	focusOK bool              // focus overlay shows a record rather than loading
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{views: make(map[string]string)}
}

// ShowPlaceholder keeps an overlay that already belongs to jobID, like the page does.
func (p *fakePresenter) ShowPlaceholder(_ context.Context, key, jobID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, presenterCall{Op: "placeholder", Key: key, JobID: jobID})
	cur := p.views[key]
	if cur == "placeholder:"+jobID || strings.HasPrefix(cur, jobID+"|") {
		return nil
	}
	p.views[key] = "placeholder:" + jobID
	return nil
}

func (p *fakePresenter) Render(_ context.Context, key string, rec *entity.JobRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, presenterCall{Op: "render", Key: key, JobID: rec.ID, Rec: rec})
	p.views[key] = rec.ID + "|" + rec.Title
	return nil
}

func (p *fakePresenter) ShowFocused(_ context.Context, jobID string, rec *entity.JobRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, presenterCall{Op: "focus", JobID: jobID, Rec: rec})
	p.focused = jobID
	p.focusOK = rec != nil
	return nil
}

func (p *fakePresenter) DismissFocused(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, presenterCall{Op: "dismiss"})
	p.focused = ""
	p.focusOK = false
	return nil
}

func (p *fakePresenter) snapshot() (map[string]string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	views := make(map[string]string, len(p.views))
	for k, v := range p.views {
		views[k] = v
	}
	return views, p.focused
}

func (p *fakePresenter) callCount(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if op == "" || c.Op == op {
			n++
		}
	}
	return n
}

// fakePort hands the subscribed handler to the test.
type fakePort struct {
	mu        sync.Mutex
	match     repository.ResponseMatcher
	handle    repository.ResponseHandler
	cancelled bool
	err       error
}

func (f *fakePort) Subscribe(_ context.Context, match repository.ResponseMatcher, handle repository.ResponseHandler) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.match, f.handle = match, handle
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.cancelled = true
		f.mu.Unlock()
	}, nil
}

// deliver mimics a port: it only forwards matching URLs, even after cancellation, so tests
// can check that the session itself drops late callbacks.
func (f *fakePort) deliver(msg entity.InterceptedMessage) {
	f.mu.Lock()
	match, handle := f.match, f.handle
	f.mu.Unlock()
	if handle != nil && match(msg.URL) {
		handle(msg)
	}
}

type fakeDOM struct {
	mu        sync.Mutex
	handle    repository.DOMHandler
	cancelled bool
}

func (f *fakeDOM) Observe(_ context.Context, handle repository.DOMHandler) (func(), error) {
	f.mu.Lock()
	f.handle = handle
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.cancelled = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeDOM) emit(ev repository.DOMEvent) {
	f.mu.Lock()
	handle := f.handle
	f.mu.Unlock()
	if handle != nil {
		handle(ev)
	}
}
