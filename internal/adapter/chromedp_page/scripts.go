package chromedp_page

import (
	"encoding/json"
	"strings"
)

// Binding names exposed to the page with Runtime.addBinding.
const (
	captureBinding = "__jobInsightsCapture"
	domBinding     = "__jobInsightsDOM"
)

// interceptorJS runs in the page realm. It wraps fetch and XMLHttpRequest, copies the
// body of successful responses whose URL contains the marker, and broadcasts it with
// window.postMessage. The page always gets its original response or rejection.
const interceptorJS = `(() => {
  if (window.__jobInsightsInterceptor) return;
  window.__jobInsightsInterceptor = true;
  const MARKER = __MARKER__;
  const TAG = __TAG__;
  const post = (url, rawBody, transportMethod) => {
    try {
      window.postMessage({ type: TAG, url: String(url), rawBody: rawBody, transportMethod: transportMethod }, window.location.origin);
    } catch (e) {}
  };

  const origFetch = window.fetch;
  if (typeof origFetch === 'function') {
    window.fetch = function (...args) {
      const p = origFetch.apply(this, args);
      p.then((resp) => {
        try {
          const url = resp.url || (args[0] && args[0].url) || String(args[0]);
          if (!resp.ok || url.indexOf(MARKER) === -1) return;
          resp.clone().text().then((body) => post(url, body, 'fetch'), () => {});
        } catch (e) {}
      }, () => {});
      return p;
    };
  }

  const proto = XMLHttpRequest.prototype;
  const origOpen = proto.open;
  const origSend = proto.send;
  proto.open = function (method, url, ...rest) {
    try { this.__jiURL = String(url); } catch (e) {}
    return origOpen.call(this, method, url, ...rest);
  };
  // One load listener per instance; a reused XHR reads its current URL when it fires.
  const onLoad = function () {
    try {
      const url = this.responseURL || this.__jiURL || '';
      if (url.indexOf(MARKER) === -1 || this.status < 200 || this.status >= 300) return;
      let body = null;
      if (this.responseType === '' || this.responseType === 'text') body = this.responseText;
      else if (this.responseType === 'json') body = JSON.stringify(this.response);
      if (body !== null) post(url, body, 'xhr');
    } catch (e) {}
  };
  proto.send = function (...args) {
    try {
      if (!this.__jiHooked && this.__jiURL && this.__jiURL.indexOf(MARKER) !== -1) {
        this.__jiHooked = true;
        this.addEventListener('load', onLoad);
      }
    } catch (e) {}
    return origSend.apply(this, args);
  };
})();`

// relayJS forwards same-window messages to the capture binding. Everything posted on
// the window is forwarded; the Go side keeps only capture envelopes.
const relayJS = `(() => {
  if (window.__jobInsightsRelay) return;
  window.__jobInsightsRelay = true;
  const send = window[__BINDING__];
  window.addEventListener('message', (e) => {
    if (e.source !== window || typeof send !== 'function') return;
    try { send(JSON.stringify(e.data)); } catch (err) {}
  });
})();`

// observerJS reports job cards, clicks on them, and in-app navigations. Overlay nodes
// are skipped so rendering never looks like a new card.
const observerJS = `(() => {
  if (window.__jobInsightsObserver) return;
  const CARD = __CARD_SELECTOR__;
  const KEY = __KEY_ATTR__;
  const IGNORE = __IGNORE_SELECTOR__;
  const send = window[__BINDING__];
  if (typeof send !== 'function') return;
  let seq = 0;
  const emit = (msg) => { try { send(JSON.stringify(msg)); } catch (e) {} };
  const keyOf = (el) => {
    let k = el.getAttribute(KEY);
    if (!k) { k = 'ji-' + (++seq); el.setAttribute(KEY, k); }
    return k;
  };
  const html = (el) => {
    const clone = el.cloneNode(true);
    clone.querySelectorAll(IGNORE).forEach((n) => n.remove());
    const s = clone.outerHTML;
    return s.length > 50000 ? s.slice(0, 50000) : s;
  };
  const report = (el, kind) => {
    if (!el || el.closest(IGNORE)) return;
    emit({ kind: kind, key: keyOf(el), html: html(el), url: location.href });
  };
  const scan = (root) => {
    if (!(root instanceof Element) || root.closest(IGNORE)) return;
    if (root.matches(CARD)) report(root, 'insert');
    root.querySelectorAll(CARD).forEach((el) => report(el, 'insert'));
    const card = root.parentElement && root.parentElement.closest(CARD);
    if (card) report(card, 'insert');
  };

  const observer = new MutationObserver((records) => {
    for (const r of records) {
      if (r.type === 'attributes') { scan(r.target); continue; }
      r.addedNodes.forEach(scan);
    }
  });
  const start = () => {
    observer.observe(document.body, { childList: true, subtree: true, attributes: true, attributeFilter: __ID_ATTRS__ });
    scan(document.body);
  };
  if (document.body) start(); else document.addEventListener('DOMContentLoaded', start, { once: true });

  const onClick = (e) => {
    const card = e.target instanceof Element ? e.target.closest(CARD) : null;
    if (card) report(card, 'focus');
  };
  document.addEventListener('click', onClick, true);

  let lastURL = location.href;
  const onNavigate = () => {
    if (location.href === lastURL) return;
    lastURL = location.href;
    emit({ kind: 'navigate', url: location.href });
  };
  const wrap = (name) => {
    const orig = history[name];
    history[name] = function (...args) { const r = orig.apply(this, args); setTimeout(onNavigate, 0); return r; };
  };
  wrap('pushState');
  wrap('replaceState');
  window.addEventListener('popstate', onNavigate);

  window.__jobInsightsObserver = {
    disconnect() {
      observer.disconnect();
      document.removeEventListener('click', onClick, true);
      window.removeEventListener('popstate', onNavigate);
      window.__jobInsightsObserver = null;
    },
  };
})();`

// presenterJS defines the page half of the presenter. Go renders the markup; the page
// only places it.
const presenterJS = `(() => {
  if (window.__jobInsights) return;
  const KEY = __KEY_ATTR__;
  const OVERLAY = __OVERLAY_CLASS__;
  const FOCUS = __FOCUS_CLASS__;
  const PANEL = __PANEL_SELECTOR__;
  const attach = (key, markup) => {
    const host = document.querySelector('[' + KEY + '="' + CSS.escape(key) + '"]');
    if (!host) return false;
    let box = host.querySelector(':scope > .' + OVERLAY);
    if (!box) {
      box = document.createElement('div');
      box.className = OVERLAY;
      host.appendChild(box);
    }
    if (box.innerHTML !== markup) box.innerHTML = markup;
    return true;
  };
  window.__jobInsights = {
    placeholder(key, jobID, markup) {
      const host = document.querySelector('[' + KEY + '="' + CSS.escape(key) + '"]');
      const shown = host && host.querySelector(':scope > .' + OVERLAY + ' [data-job-id]');
      if (shown && shown.getAttribute('data-job-id') === jobID) return true;
      return attach(key, markup);
    },
    render: attach,
    focus(markup) {
      this.dismiss();
      const box = document.createElement('div');
      box.className = FOCUS;
      box.innerHTML = markup;
      const panel = document.querySelector(PANEL);
      if (panel) {
        panel.prepend(box);
        return true;
      }
      box.style.cssText = 'position:fixed;top:80px;right:20px;z-index:9999;max-width:320px;background:#fff;border:1px solid #ccc;padding:8px;';
      document.body.appendChild(box);
      return false;
    },
    dismiss() {
      document.querySelectorAll('.' + FOCUS).forEach((n) => n.remove());
    },
  };
})();`

func jsValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func interceptorScript(marker, tag string) string {
	return strings.NewReplacer(
		"__MARKER__", jsValue(marker),
		"__TAG__", jsValue(tag),
	).Replace(interceptorJS)
}

func relayScript() string {
	return strings.ReplaceAll(relayJS, "__BINDING__", jsValue(captureBinding))
}

func observerScript() string {
	return strings.NewReplacer(
		"__CARD_SELECTOR__", jsValue(strings.Join(JobCardSelectors, ", ")),
		"__KEY_ATTR__", jsValue(NodeKeyAttribute),
		"__IGNORE_SELECTOR__", jsValue("."+OverlayClass+", ."+FocusClass),
		"__BINDING__", jsValue(domBinding),
		"__ID_ATTRS__", jsValue(JobIDAttributes),
	).Replace(observerJS)
}

func presenterScript() string {
	return strings.NewReplacer(
		"__KEY_ATTR__", jsValue(NodeKeyAttribute),
		"__OVERLAY_CLASS__", jsValue(OverlayClass),
		"__FOCUS_CLASS__", jsValue(FocusClass),
		"__PANEL_SELECTOR__", jsValue(strings.Join(DetailPanelSelectors, ", ")),
	).Replace(presenterJS)
}
