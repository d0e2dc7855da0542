package chromedp_page

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/job-insights/internal/bus"
	"github.com/user/job-insights/internal/entity"
)

const testMarker = "voyager/api/jobs/jobPostings"

// findBrowser returns a Chromium binary for the page script tests, or "" when none is
// installed. CHROME_PATH overrides the lookup.
func findBrowser() string {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	for _, name := range []string{
		"headless-shell",
		"headless_shell",
		"chromium",
		"chromium-browser",
		"google-chrome",
		"google-chrome-stable",
	} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func testSite() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!doctype html><html><body><ul id="list"></ul></body></html>`)
	})
	mux.HandleFunc("/voyager/api/jobs/jobPostings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"elements":[{"jobPostingId":%q}]}`, r.URL.Query().Get("n"))
	})
	mux.HandleFunc("/voyager/api/jobs/jobPostings/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/other", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"elements":[]}`)
	})
	return mux
}

// newScriptTab opens a headless tab on a local job search page.
func newScriptTab(t *testing.T) context.Context {
	t.Helper()
	if testing.Short() {
		t.Skip("page script tests start a browser")
	}
	path := findBrowser()
	if path == "" {
		t.Skip("no Chromium binary found, set CHROME_PATH to run page script tests")
	}

	srv := httptest.NewServer(testSite())
	t.Cleanup(srv.Close)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(path),
		chromedp.NoSandbox,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	t.Cleanup(cancelAlloc)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	t.Cleanup(cancelTab)
	ctx, cancel := context.WithTimeout(tabCtx, 30*time.Second)
	t.Cleanup(cancel)

	require.NoError(t, chromedp.Run(ctx, chromedp.Navigate(srv.URL+"/jobs/")))
	return ctx
}

func inject(t *testing.T, ctx context.Context, scripts ...string) {
	t.Helper()
	for _, src := range scripts {
		require.NoError(t, chromedp.Run(ctx, chromedp.Evaluate(src, nil)))
	}
}

func evalAsync(t *testing.T, ctx context.Context, js string, res any) {
	t.Helper()
	require.NoError(t, chromedp.Run(ctx, chromedp.Evaluate(js, res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	})))
}

// installCapture stands in for the capture binding, then installs relay and interceptor.
func installCapture(t *testing.T, ctx context.Context) {
	t.Helper()
	inject(t, ctx,
		fmt.Sprintf(`window.__captured = []; window[%s] = (s) => window.__captured.push(s);`, jsValue(captureBinding)),
		relayScript(),
		interceptorScript(testMarker, bus.CaptureTag),
		interceptorScript(testMarker, bus.CaptureTag),
	)
}

func decodeAll(t *testing.T, raw []string) []entity.InterceptedMessage {
	t.Helper()
	msgs := make([]entity.InterceptedMessage, 0, len(raw))
	for _, r := range raw {
		msg, ok := bus.Decode([]byte(r))
		require.True(t, ok, r)
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestInterceptorFetch(t *testing.T) {
	ctx := newScriptTab(t)
	installCapture(t, ctx)

	var out struct {
		Body      string   `json:"body"`
		BadStatus int      `json:"badStatus"`
		Rejected  string   `json:"rejected"`
		Captured  []string `json:"captured"`
	}
	evalAsync(t, ctx, `(async () => {
		const out = {};
		const resp = await fetch('/voyager/api/jobs/jobPostings?n=1');
		out.body = await resp.text();
		out.badStatus = (await fetch('/voyager/api/jobs/jobPostings/broken')).status;
		try {
			await fetch('http://127.0.0.1:1/voyager/api/jobs/jobPostings');
			out.rejected = '';
		} catch (e) {
			out.rejected = e.name;
		}
		await fetch('/other');
		await new Promise((r) => setTimeout(r, 300));
		out.captured = window.__captured;
		return out;
	})()`, &out)

	// The page reads its own response body and sees its own failures.
	assert.JSONEq(t, `{"elements":[{"jobPostingId":"1"}]}`, out.Body)
	assert.Equal(t, http.StatusInternalServerError, out.BadStatus)
	assert.Equal(t, "TypeError", out.Rejected)

	msgs := decodeAll(t, out.Captured)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].URL, "jobPostings?n=1")
	assert.Equal(t, entity.TransportFetch, msgs[0].TransportMethod)
	assert.Equal(t, out.Body, msgs[0].RawBody)
}

func TestInterceptorReusedXHRPostsOncePerRequest(t *testing.T) {
	ctx := newScriptTab(t)
	installCapture(t, ctx)

	var captured []string
	evalAsync(t, ctx, `(async () => {
		const xhr = new XMLHttpRequest();
		const get = (url) => new Promise((resolve) => {
			xhr.onloadend = () => resolve(xhr.status);
			xhr.open('GET', url);
			xhr.send();
		});
		await get('/voyager/api/jobs/jobPostings?n=1');
		await get('/voyager/api/jobs/jobPostings?n=2');
		await get('/other');
		await get('/voyager/api/jobs/jobPostings/broken');
		await new Promise((r) => setTimeout(r, 300));
		return window.__captured;
	})()`, &captured)

	msgs := decodeAll(t, captured)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].URL, "n=1")
	assert.Contains(t, msgs[1].URL, "n=2")
	assert.Equal(t, `{"elements":[{"jobPostingId":"2"}]}`, msgs[1].RawBody)
	for _, m := range msgs {
		assert.Equal(t, entity.TransportXHR, m.TransportMethod)
	}
}

func TestObserverIgnoresOverlays(t *testing.T) {
	ctx := newScriptTab(t)
	inject(t, ctx,
		fmt.Sprintf(`window.__dom = []; window[%s] = (s) => window.__dom.push(JSON.parse(s));`, jsValue(domBinding)),
		observerScript(),
		presenterScript(),
	)

	placeholder, err := RenderPlaceholder("1")
	require.NoError(t, err)
	record, err := RenderRecord(&entity.JobRecord{ID: "1", Views: entity.KnownMetric(3)})
	require.NoError(t, err)

	var out struct {
		Key      string           `json:"key"`
		Placed   bool             `json:"placed"`
		Overlays int              `json:"overlays"`
		Messages []map[string]any `json:"messages"`
	}
	evalAsync(t, ctx, fmt.Sprintf(`(async () => {
		const wait = () => new Promise((r) => setTimeout(r, 200));
		const card = document.createElement('li');
		card.setAttribute('data-occludable-job-id', '1');
		document.getElementById('list').appendChild(card);
		await wait();
		const key = card.getAttribute(%[1]s);
		const placed = window.__jobInsights.placeholder(key, '1', %[2]s);
		await wait();
		window.__jobInsights.render(key, %[3]s);
		await wait();
		return { key: key, placed: placed, overlays: card.querySelectorAll('.' + %[4]s).length, messages: window.__dom };
	})()`, jsValue(NodeKeyAttribute), jsValue(placeholder), jsValue(record), jsValue(OverlayClass)), &out)

	assert.NotEmpty(t, out.Key)
	assert.True(t, out.Placed)
	assert.Equal(t, 1, out.Overlays)
	require.Len(t, out.Messages, 1, "rendering an overlay must not report the card again")
	assert.Equal(t, "insert", out.Messages[0]["kind"])
	assert.Equal(t, out.Key, out.Messages[0]["key"])
}

func TestPresenterPlaceholderRules(t *testing.T) {
	ctx := newScriptTab(t)
	inject(t, ctx, presenterScript())

	markup := func(s string, err error) string {
		require.NoError(t, err)
		return jsValue(s)
	}
	ph1 := markup(RenderPlaceholder("1"))
	ph2 := markup(RenderPlaceholder("2"))
	rec1 := markup(RenderRecord(&entity.JobRecord{ID: "1"}))
	rec2 := markup(RenderRecord(&entity.JobRecord{ID: "2"}))
	focus := markup(RenderFocus("2", nil))

	var steps []string
	evalAsync(t, ctx, fmt.Sprintf(`(async () => {
		const ji = window.__jobInsights;
		const card = document.createElement('li');
		card.setAttribute(%[1]s, 'k');
		document.getElementById('list').appendChild(card);
		const shown = () => {
			const n = card.querySelector('.' + %[2]s + ' [data-job-id]');
			return n.getAttribute('data-job-id') + ':' + (n.classList.contains('ji-loading') ? 'loading' : 'record');
		};
		const out = [];
		ji.render('k', %[3]s); out.push(shown());
		ji.placeholder('k', '1', %[4]s); out.push(shown());
		ji.placeholder('k', '2', %[5]s); out.push(shown());
		ji.render('k', %[6]s); out.push(shown());
		out.push(String(card.querySelectorAll('.' + %[2]s).length));
		out.push(String(ji.placeholder('missing', '3', %[5]s)));
		out.push(String(ji.focus(%[7]s)));
		ji.focus(%[7]s);
		out.push(String(document.querySelectorAll('.' + %[8]s).length));
		ji.dismiss();
		out.push(String(document.querySelectorAll('.' + %[8]s).length));
		return out;
	})()`, jsValue(NodeKeyAttribute), jsValue(OverlayClass), rec1, ph1, ph2, rec2, focus, jsValue(FocusClass)), &steps)

	assert.Equal(t, []string{
		"1:record",  // rendered
		"1:record",  // placeholder for the same job keeps the record
		"2:loading", // recycled card: the previous job's data is replaced
		"2:record",
		"1",     // a single overlay per card
		"false", // missing node
		"false", // no details panel, fixed fallback position
		"1",     // focus overlay is a singleton
		"0",
	}, steps)
}
