package chromedp_page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/job-insights/internal/entity"
)

// ErrNodeNotFound is returned when the card an overlay targets is no longer in the page.
var ErrNodeNotFound = errors.New("card node not found")

const presenterTimeout = 5 * time.Second

var overlayTemplates = template.Must(template.Must(template.New("placeholder").Parse(
	`<div class="ji-insights ji-loading" data-job-id="{{.}}">Loading job insights…</div>`,
)).New("record").Parse(`<div class="ji-insights" data-job-id="{{.ID}}">
<div><b>Listed:</b> {{.ListedAt}}</div>
<div><b>Original listing:</b> {{.OriginalListedAt}}</div>
<div><b>Expires:</b> {{.ExpireAt}}</div>
<div><b>Views:</b> {{.Views}} · <b>Applies:</b> {{.Applies}}</div>
</div>`))

var focusTemplate = template.Must(template.New("focus").Parse(`<div class="ji-insights" data-job-id="{{.ID}}">
{{if .Record}}<div><b>{{.Record.Title}}</b> · {{.Record.Company}}</div>
<div><b>Listed:</b> {{.Record.ListedAt}}</div>
<div><b>Original listing:</b> {{.Record.OriginalListedAt}}</div>
<div><b>Expires:</b> {{.Record.ExpireAt}}</div>
<div><b>Views:</b> {{.Record.Views}} · <b>Applies:</b> {{.Record.Applies}}</div>
{{else}}<div class="ji-loading">Loading job insights…</div>{{end}}</div>`))

// Presenter draws overlays by calling the page half installed by presenterScript.
type Presenter struct {
	tabCtx context.Context
	logger *zap.Logger
}

func NewPresenter(tabCtx context.Context, logger *zap.Logger) *Presenter {
	return &Presenter{tabCtx: tabCtx, logger: logger.With(zap.String("component", "presenter"))}
}

// Install defines the page runtime in the current and every future document.
func (p *Presenter) Install() error {
	if err := injectScript(p.tabCtx, presenterScript()); err != nil {
		return fmt.Errorf("inject presenter: %w", err)
	}
	return nil
}

func (p *Presenter) ShowPlaceholder(ctx context.Context, key, jobID string) error {
	markup, err := RenderPlaceholder(jobID)
	if err != nil {
		return err
	}
	return p.call(ctx, "placeholder", true, key, jobID, markup)
}

func (p *Presenter) Render(ctx context.Context, key string, rec *entity.JobRecord) error {
	markup, err := RenderRecord(rec)
	if err != nil {
		return err
	}
	return p.call(ctx, "render", true, key, markup)
}

func (p *Presenter) ShowFocused(ctx context.Context, jobID string, rec *entity.JobRecord) error {
	markup, err := RenderFocus(jobID, rec)
	if err != nil {
		return err
	}
	// focus() reports false when it fell back to a fixed position; that still shows.
	return p.call(ctx, "focus", false, markup)
}

func (p *Presenter) DismissFocused(ctx context.Context) error {
	return p.call(ctx, "dismiss", false)
}

// RenderPlaceholder returns the loading overlay markup for jobID.
func RenderPlaceholder(jobID string) (string, error) {
	return execute(overlayTemplates.Lookup("placeholder"), jobID)
}

// RenderRecord returns the card overlay markup for rec.
func RenderRecord(rec *entity.JobRecord) (string, error) {
	return execute(overlayTemplates.Lookup("record"), rec)
}

// RenderFocus returns the focus overlay markup. A nil rec renders the loading state.
func RenderFocus(jobID string, rec *entity.JobRecord) (string, error) {
	return execute(focusTemplate, struct {
		ID     string
		Record *entity.JobRecord
	}{ID: jobID, Record: rec})
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s overlay: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// call invokes window.__jobInsights[fn](args...). With mustFind, a false result means
// the target node was missing.
func (p *Presenter) call(ctx context.Context, fn string, mustFind bool, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	expr := fmt.Sprintf("window.__jobInsights ? !!window.__jobInsights.%s(", fn)
	for i, a := range args {
		if i > 0 {
			expr += ", "
		}
		expr += jsValue(a)
	}
	expr += ") : false"

	runCtx, cancel := context.WithTimeout(p.tabCtx, presenterTimeout)
	defer cancel()

	var found bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(expr, &found)); err != nil {
		return fmt.Errorf("presenter %s: %w", fn, err)
	}
	if mustFind && !found {
		return ErrNodeNotFound
	}
	return nil
}
