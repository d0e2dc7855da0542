package chromedp_page

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Bindings routes Runtime.bindingCalled events to Go handlers by binding name. One
// listener is installed per tab no matter how many bindings are added.
type Bindings struct {
	tabCtx context.Context
	logger *zap.Logger

	once     sync.Once
	mu       sync.RWMutex
	handlers map[string]func(payload string)
}

func NewBindings(tabCtx context.Context, logger *zap.Logger) *Bindings {
	return &Bindings{
		tabCtx:   tabCtx,
		logger:   logger.With(zap.String("component", "bindings")),
		handlers: make(map[string]func(string)),
	}
}

// Handle exposes window[name] to the page and sends its calls to fn. fn runs on the
// CDP event goroutine and must not block.
func (b *Bindings) Handle(name string, fn func(payload string)) error {
	b.once.Do(func() {
		chromedp.ListenTarget(b.tabCtx, b.onEvent)
	})

	b.mu.Lock()
	b.handlers[name] = fn
	b.mu.Unlock()

	if err := chromedp.Run(b.tabCtx, runtime.AddBinding(name)); err != nil {
		b.Remove(name)
		return fmt.Errorf("add binding %s: %w", name, err)
	}
	return nil
}

// Remove stops routing calls for name. The page keeps the binding function but its
// calls are dropped.
func (b *Bindings) Remove(name string) {
	b.mu.Lock()
	delete(b.handlers, name)
	b.mu.Unlock()
}

func (b *Bindings) onEvent(ev interface{}) {
	called, ok := ev.(*runtime.EventBindingCalled)
	if !ok {
		return
	}
	b.mu.RLock()
	fn := b.handlers[called.Name]
	b.mu.RUnlock()
	if fn == nil {
		b.logger.Debug("binding call without handler", zap.String("name", called.Name))
		return
	}
	fn(called.Payload)
}
