package annotate

// Asset file names written next to generated pages.
const (
	StylesheetFile = "codenotes.css"
	ScriptFile     = "codenotes.js"
)

// Stylesheet returns the CSS for annotation markers, tooltips and hidden
// explanation lists.
func Stylesheet() string { return cssContent }

// Script returns the browser script that handles hover, focus and click on
// annotations.
func Script() string { return jsContent }

const cssContent = `/* ============ Code annotations ============ */
:root {
  --ca-marker-bg: #2563eb;
  --ca-marker-fg: #ffffff;
  --ca-marker-bg-active: #1e40af;
  --ca-tooltip-bg: #111827;
  --ca-tooltip-fg: #f9fafb;
  --ca-tooltip-width: 22rem;
  --ca-radius: 6px;
  --ca-transition: 120ms ease-in-out;
}

.code-annotation {
  position: relative;
  display: inline-block;
  vertical-align: baseline;
  cursor: pointer;
  outline: none;
}

.code-annotation-marker {
  display: inline-flex;
  align-items: center;
  justify-content: center;
  min-width: 1.25em;
  height: 1.25em;
  padding: 0 0.25em;
  border-radius: 999px;
  background: var(--ca-marker-bg);
  color: var(--ca-marker-fg);
  font-size: 0.8em;
  font-weight: 600;
  line-height: 1;
  transition: background var(--ca-transition), transform var(--ca-transition);
  user-select: none;
}

.code-annotation:hover .code-annotation-marker,
.code-annotation:focus-visible .code-annotation-marker {
  transform: scale(1.1);
}

.code-annotation--active .code-annotation-marker {
  background: var(--ca-marker-bg-active);
}

.code-annotation-tooltip {
  position: absolute;
  z-index: 20;
  top: 1.6em;
  left: 0;
  width: max-content;
  max-width: var(--ca-tooltip-width);
  padding: 0.5rem 0.75rem;
  border-radius: var(--ca-radius);
  background: var(--ca-tooltip-bg);
  color: var(--ca-tooltip-fg);
  font-family: system-ui, -apple-system, "Segoe UI", sans-serif;
  font-size: 0.85rem;
  line-height: 1.4;
  white-space: normal;
  box-shadow: 0 4px 14px rgba(0, 0, 0, 0.25);
  visibility: hidden;
  opacity: 0;
  transition: opacity var(--ca-transition), visibility var(--ca-transition);
  pointer-events: none;
}

.code-annotation:hover .code-annotation-tooltip,
.code-annotation:focus-visible .code-annotation-tooltip,
.code-annotation--active .code-annotation-tooltip {
  visibility: visible;
  opacity: 1;
  pointer-events: auto;
}

.code-annotation--flipped .code-annotation-tooltip {
  left: auto;
  right: 0;
}

.code-annotation-list--hidden {
  display: none;
}

@media (prefers-reduced-motion: reduce) {
  .code-annotation-marker,
  .code-annotation-tooltip {
    transition: none;
  }
  .code-annotation:hover .code-annotation-marker,
  .code-annotation:focus-visible .code-annotation-marker {
    transform: none;
  }
}

@media (prefers-contrast: more), (forced-colors: active) {
  .code-annotation-marker {
    border: 2px solid CanvasText;
    background: Canvas;
    color: CanvasText;
  }
  .code-annotation-tooltip {
    border: 2px solid CanvasText;
    background: Canvas;
    color: CanvasText;
    box-shadow: none;
  }
}

@media (max-width: 640px) {
  .code-annotation--active .code-annotation-tooltip {
    position: fixed;
    top: auto;
    left: 0.75rem;
    right: 0.75rem;
    bottom: 0.75rem;
    width: auto;
    max-width: none;
  }
}
`

const jsContent = `(function() {
  'use strict';

  var ROOT = '.code-annotation';
  var ACTIVE = 'code-annotation--active';
  var FLIPPED = 'code-annotation--flipped';
  var TOOLTIP = '.code-annotation-tooltip';
  var DEBOUNCE_MS = 100;

  function placeTooltip(el) {
    var tip = el.querySelector(TOOLTIP);
    if (!tip) return;
    el.classList.remove(FLIPPED);
    var rect = tip.getBoundingClientRect();
    var viewport = window.innerWidth || document.documentElement.clientWidth;
    if (rect.right > viewport) {
      el.classList.add(FLIPPED);
    }
  }

  function deactivateAll(except) {
    document.querySelectorAll(ROOT + '.' + ACTIVE).forEach(function(el) {
      if (el !== except) el.classList.remove(ACTIVE);
    });
  }

  function toggle(el) {
    var block = el.closest('pre') || document;
    block.querySelectorAll(ROOT + '.' + ACTIVE).forEach(function(other) {
      if (other !== el) other.classList.remove(ACTIVE);
    });
    var active = el.classList.toggle(ACTIVE);
    el.setAttribute('aria-expanded', active ? 'true' : 'false');
    if (active) placeTooltip(el);
  }

  function bind(el) {
    if (el.dataset.annotationBound) return;
    el.dataset.annotationBound = 'true';
    el.addEventListener('mouseenter', function() { placeTooltip(el); });
    el.addEventListener('focus', function() { placeTooltip(el); });
    el.addEventListener('click', function(ev) {
      ev.stopPropagation();
      toggle(el);
    });
    el.addEventListener('keydown', function(ev) {
      if (ev.key === 'Enter' || ev.key === ' ') {
        ev.preventDefault();
        toggle(el);
      } else if (ev.key === 'Escape') {
        el.classList.remove(ACTIVE);
      }
    });
  }

  function scan(root) {
    (root || document).querySelectorAll(ROOT).forEach(bind);
  }

  document.addEventListener('click', function(ev) {
    if (!ev.target.closest || !ev.target.closest(ROOT)) deactivateAll(null);
  });
  document.addEventListener('keydown', function(ev) {
    if (ev.key === 'Escape') deactivateAll(null);
  });

  var timer = null;
  function schedule() {
    if (timer) clearTimeout(timer);
    timer = setTimeout(function() { timer = null; scan(document); }, DEBOUNCE_MS);
  }

  function liveReload() {
    var meta = document.querySelector('meta[name="codenotes-live"]');
    if (!meta || !window.WebSocket) return;
    var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    var ws = new WebSocket(proto + location.host + meta.getAttribute('content'));
    ws.onmessage = function(ev) {
      try {
        if (JSON.parse(ev.data).type === 'rebuilt') location.reload();
      } catch (e) {}
    };
  }

  function init() {
    scan(document);
    if (window.MutationObserver) {
      new MutationObserver(schedule).observe(document.body, { childList: true, subtree: true });
    }
    liveReload();
  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', init);
  } else {
    init();
  }
})();
`
