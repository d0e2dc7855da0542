package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/job-insights/internal/adapter/chromedp_page"
	"github.com/user/job-insights/internal/adapter/memory"
	"github.com/user/job-insights/internal/delivery/http/handler"
	"github.com/user/job-insights/internal/delivery/http/router"
	"github.com/user/job-insights/internal/repository"
	"github.com/user/job-insights/internal/usecase"
	"github.com/user/job-insights/pkg/config"
	"github.com/user/job-insights/pkg/logger"
	"github.com/user/job-insights/pkg/utils"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("job insights exited", zap.Error(err))
		os.Exit(1)
	}
	log.Info("job insights exiting")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// --- Browser ---
	browser, err := chromedp_page.NewBrowser(cfg, log)
	if err != nil {
		return err
	}
	defer browser.Close()

	tab := browser.Tab()
	bindings := chromedp_page.NewBindings(tab, log)

	var port repository.InterceptionPort
	switch cfg.InterceptMode {
	case config.InterceptModePage:
		pagePort := chromedp_page.NewPagePort(tab, bindings, cfg.APIMarker, log)
		defer pagePort.Close()
		port = pagePort
	default:
		port = chromedp_page.NewNetworkPort(tab, log)
	}

	presenter := chromedp_page.NewPresenter(tab, log)
	if err := presenter.Install(); err != nil {
		return err
	}

	// --- Session ---
	session := usecase.NewSession(usecase.SessionDeps{
		Port:         port,
		DOM:          chromedp_page.NewDOMSource(tab, bindings, log),
		Presenter:    presenter,
		Store:        memory.NewJobRecordRepo(),
		Match:        utils.MarkerMatcher(cfg.APIMarker),
		Location:     loc,
		FocusTimeout: cfg.FocusOverlayTimeout(),
		Logger:       log,
	})
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.Stop()

	if err := browser.Navigate(cfg.StartURL); err != nil {
		return err
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(handler.NewHandler(session, log), log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", zap.String("port", cfg.ServerPort), zap.String("intercept_mode", cfg.InterceptMode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", cfg.ServerPort, err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			log.Info("shutting down")
		case <-browser.Done():
			log.Warn("browser went away, shutting down")
		}
		session.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
