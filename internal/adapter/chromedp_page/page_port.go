package chromedp_page

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/user/job-insights/internal/bus"
	"github.com/user/job-insights/internal/entity"
	"github.com/user/job-insights/internal/repository"
)

// PagePort captures responses from inside the page realm. An injected script wraps the
// page's fetch and XMLHttpRequest and broadcasts tagged envelopes with postMessage; a
// relay forwards window messages to a CDP binding, and the bus keeps only capture
// envelopes, in order.
type PagePort struct {
	tabCtx   context.Context
	bindings *Bindings
	marker   string
	logger   *zap.Logger

	once       sync.Once
	installErr error
	bus        *bus.Bus

	subs subscribers
}

// NewPagePort creates a port whose page script captures URLs containing marker.
func NewPagePort(tabCtx context.Context, bindings *Bindings, marker string, logger *zap.Logger) *PagePort {
	return &PagePort{
		tabCtx:   tabCtx,
		bindings: bindings,
		marker:   marker,
		logger:   logger.With(zap.String("component", "page_port")),
	}
}

func (p *PagePort) Subscribe(ctx context.Context, match repository.ResponseMatcher, handle repository.ResponseHandler) (func(), error) {
	p.once.Do(func() { p.installErr = p.install() })
	if p.installErr != nil {
		return nil, p.installErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return p.subs.add(match, handle), nil
}

// Close detaches the relay and stops delivery.
func (p *PagePort) Close() {
	p.bindings.Remove(captureBinding)
	if p.bus != nil {
		p.bus.Close()
	}
}

func (p *PagePort) install() error {
	p.bus = bus.New(func(msg entity.InterceptedMessage) { p.subs.dispatch(msg) })

	err := p.bindings.Handle(captureBinding, func(payload string) {
		if !p.bus.PublishRaw([]byte(payload)) {
			p.logger.Debug("ignoring unrelated window message")
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrPortClosed, err)
	}
	if err := injectScript(p.tabCtx, relayScript()); err != nil {
		return fmt.Errorf("%w: inject relay: %v", repository.ErrPortClosed, err)
	}
	if err := injectScript(p.tabCtx, interceptorScript(p.marker, bus.CaptureTag)); err != nil {
		return fmt.Errorf("%w: inject interceptor: %v", repository.ErrPortClosed, err)
	}
	return nil
}
