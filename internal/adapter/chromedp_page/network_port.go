package chromedp_page

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/job-insights/internal/entity"
	"github.com/user/job-insights/internal/repository"
	"github.com/user/job-insights/pkg/metrics"
)

// NetworkPort captures responses through the CDP Network domain. It observes traffic
// from outside the page, so the page's fetch and XMLHttpRequest stay untouched.
type NetworkPort struct {
	tabCtx context.Context
	logger *zap.Logger

	once       sync.Once
	installErr error

	subs subscribers

	mu      sync.Mutex
	pending map[network.RequestID]pendingResponse
}

type pendingResponse struct {
	url       string
	transport entity.TransportMethod
}

func NewNetworkPort(tabCtx context.Context, logger *zap.Logger) *NetworkPort {
	return &NetworkPort{
		tabCtx:  tabCtx,
		logger:  logger.With(zap.String("component", "network_port")),
		pending: make(map[network.RequestID]pendingResponse),
	}
}

// Subscribe installs the Network listener on first use and registers a subscriber.
func (p *NetworkPort) Subscribe(ctx context.Context, match repository.ResponseMatcher, handle repository.ResponseHandler) (func(), error) {
	p.once.Do(func() { p.installErr = p.install() })
	if p.installErr != nil {
		return nil, p.installErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return p.subs.add(match, handle), nil
}

func (p *NetworkPort) install() error {
	chromedp.ListenTarget(p.tabCtx, p.onEvent)
	if err := chromedp.Run(p.tabCtx, network.Enable()); err != nil {
		return fmt.Errorf("%w: enable network domain: %v", repository.ErrPortClosed, err)
	}
	return nil
}

func (p *NetworkPort) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		transport, ok := transportFor(e.Type)
		if !ok || e.Response == nil || !p.subs.wanted(e.Response.URL) {
			return
		}
		if e.Response.Status < 200 || e.Response.Status >= 300 {
			metrics.CaptureFailures.WithLabelValues("status").Inc()
			p.logger.Debug("skipping unsuccessful response", zap.String("url", e.Response.URL), zap.Int64("status", e.Response.Status))
			return
		}
		p.mu.Lock()
		p.pending[e.RequestID] = pendingResponse{url: e.Response.URL, transport: transport}
		p.mu.Unlock()

	case *network.EventLoadingFinished:
		if pr, ok := p.take(e.RequestID); ok {
			// GetResponseBody is a CDP round trip; it cannot run on the event goroutine.
			go p.fetchBody(e.RequestID, pr)
		}

	case *network.EventLoadingFailed:
		if pr, ok := p.take(e.RequestID); ok {
			metrics.CaptureFailures.WithLabelValues("loading_failed").Inc()
			p.logger.Debug("matched request failed", zap.String("url", pr.url), zap.String("error", e.ErrorText))
		}
	}
}

func (p *NetworkPort) fetchBody(id network.RequestID, pr pendingResponse) {
	var body []byte
	err := chromedp.Run(p.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		body, err = network.GetResponseBody(id).Do(ctx)
		return err
	}))
	if err != nil {
		metrics.CaptureFailures.WithLabelValues("body").Inc()
		p.logger.Warn("could not read response body",
			zap.String("url", pr.url),
			zap.Error(fmt.Errorf("%w: %v", repository.ErrBodyUnavailable, err)),
		)
		return
	}
	p.subs.dispatch(entity.InterceptedMessage{URL: pr.url, RawBody: string(body), TransportMethod: pr.transport})
}

func (p *NetworkPort) take(id network.RequestID) (pendingResponse, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.pending[id]
	if ok {
		delete(p.pending, id)
	}
	return pr, ok
}

func transportFor(t network.ResourceType) (entity.TransportMethod, bool) {
	switch t {
	case network.ResourceTypeFetch:
		return entity.TransportFetch, true
	case network.ResourceTypeXHR:
		return entity.TransportXHR, true
	}
	return "", false
}
