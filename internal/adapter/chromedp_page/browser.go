package chromedp_page

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/job-insights/pkg/config"
)

const userAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36`

// Browser owns the Chromium tab the session instruments.
type Browser struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      *zap.Logger
}

// NewBrowser attaches to CHROME_REMOTE_URL when set, otherwise launches a local browser.
func NewBrowser(cfg *config.Config, logger *zap.Logger) (*Browser, error) {
	logger = logger.With(zap.String("component", "browser"))

	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)
	if cfg.ChromeRemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(context.Background(), cfg.ChromeRemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.ChromeHeadless),
			chromedp.Flag("disable-gpu", cfg.ChromeHeadless),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)
		if cfg.ChromeUserDataDir != "" {
			opts = append(opts, chromedp.UserDataDir(cfg.ChromeUserDataDir))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))

	// The first Run starts the browser and creates the tab.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	logger.Info("browser ready", zap.Bool("remote", cfg.ChromeRemoteURL != ""), zap.Bool("headless", cfg.ChromeHeadless))
	return &Browser{tabCtx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc, logger: logger}, nil
}

// Tab is the chromedp context of the instrumented tab.
func (b *Browser) Tab() context.Context {
	return b.tabCtx
}

// Done is closed when the tab or browser goes away.
func (b *Browser) Done() <-chan struct{} {
	return b.tabCtx.Done()
}

func (b *Browser) Navigate(url string) error {
	if err := chromedp.Run(b.tabCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	b.logger.Info("navigated", zap.String("url", url))
	return nil
}

// Close closes the tab, and the browser when it was launched by us.
func (b *Browser) Close() {
	b.cancelTab()
	b.cancelAlloc()
}

// injectScript runs src in every future document of the tab and in the current one.
func injectScript(tabCtx context.Context, src string) error {
	return chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(src).Do(ctx)
			return err
		}),
		chromedp.Evaluate(src, nil),
	)
}
