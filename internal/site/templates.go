package site

// Layout asset file names written next to the annotation assets.
const (
	layoutStylesheetFile = "site.css"
	layoutScriptFile     = "site.js"
)

// pageTemplate is the Go html/template for each rendered markdown page.
const pageTemplate = `<!DOCTYPE html>
<html lang="en" data-theme="light">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  {{- if .LiveReload}}
  <meta name="codenotes-live" content="{{.LiveReload}}">
  {{- end}}
  <title>{{.Title}} | {{.SiteTitle}}</title>
  <link rel="stylesheet" href="{{.BasePath}}site.css">
  <link rel="stylesheet" href="{{.BasePath}}codenotes.css">
</head>
<body>
  <nav class="sidebar" id="sidebar">
    <div class="sidebar-header">
      <h2 class="project-title"><a href="{{.BasePath}}index.html">{{.SiteTitle}}</a></h2>
      <input type="text" id="search-input" placeholder="Filter pages..." autocomplete="off">
    </div>
    <div class="sidebar-tree" id="sidebar-tree">
      {{.TreeHTML}}
    </div>
  </nav>
  <div class="sidebar-overlay" id="sidebar-overlay"></div>
  <main class="content">
    <div class="top-bar">
      <button class="menu-toggle" id="menu-toggle" aria-label="Toggle sidebar">&#9776;</button>
      <button class="theme-toggle" id="theme-toggle" aria-label="Toggle theme">&#9680;</button>
    </div>
    <article class="page-content">
      {{.Content}}
    </article>
  </main>
  <script src="{{.BasePath}}site.js" defer></script>
  <script src="{{.BasePath}}codenotes.js" defer></script>
</body>
</html>
`

// layoutCSS styles the page chrome. Code annotations bring their own
// stylesheet.
const layoutCSS = `/* ============ CSS Variables ============ */
:root {
  --bg: #ffffff;
  --bg-sidebar: #f1f3f5;
  --text: #212529;
  --text-secondary: #495057;
  --text-muted: #868e96;
  --border: #dee2e6;
  --accent: #228be6;
  --accent-light: #e7f5ff;
  --code-bg: #f1f3f5;
  --code-border: #e9ecef;
  --sidebar-width: 280px;
  --content-max-width: 900px;
}

[data-theme="dark"] {
  --bg: #1a1b26;
  --bg-sidebar: #16171f;
  --text: #c0caf5;
  --text-secondary: #a9b1d6;
  --text-muted: #565f89;
  --border: #292e42;
  --accent: #7aa2f7;
  --accent-light: #1a1b2e;
  --code-bg: #1f2030;
  --code-border: #292e42;
}

/* ============ Base ============ */
*, *::before, *::after { box-sizing: border-box; }

body {
  margin: 0;
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
  color: var(--text);
  background: var(--bg);
  line-height: 1.7;
  display: flex;
  min-height: 100vh;
}

a { color: var(--accent); }

/* ============ Sidebar ============ */
.sidebar {
  width: var(--sidebar-width);
  background: var(--bg-sidebar);
  border-right: 1px solid var(--border);
  position: fixed;
  top: 0;
  bottom: 0;
  left: 0;
  overflow-y: auto;
  z-index: 100;
}

.sidebar-header {
  padding: 20px 16px 12px;
  border-bottom: 1px solid var(--border);
}

.project-title { font-size: 1.1rem; margin: 0 0 12px; }
.project-title a { text-decoration: none; }

#search-input {
  width: 100%;
  padding: 8px 12px;
  border: 1px solid var(--border);
  border-radius: 6px;
  background: var(--bg);
  color: var(--text);
}

.sidebar-tree ul { list-style: none; margin: 0; padding-left: 0; }
.sidebar-tree ul ul { padding-left: 16px; }
.sidebar-tree .hidden { display: none; }

.sidebar-tree .dir > .dir-toggle {
  display: block;
  padding: 4px 16px;
  font-size: 0.82rem;
  font-weight: 600;
  color: var(--text-secondary);
  cursor: pointer;
  user-select: none;
}

.sidebar-tree .dir > .dir-toggle::before {
  content: "\25B6";
  display: inline-block;
  margin-right: 6px;
  font-size: 0.6rem;
  transition: transform 0.15s;
}

.sidebar-tree .dir.expanded > .dir-toggle::before { transform: rotate(90deg); }
.sidebar-tree .dir > ul { display: none; }
.sidebar-tree .dir.expanded > ul { display: block; }

.sidebar-tree .file a {
  display: block;
  padding: 3px 16px 3px 22px;
  font-size: 0.82rem;
  color: var(--text-muted);
  text-decoration: none;
  border-radius: 4px;
}

.sidebar-tree .file a:hover,
.sidebar-tree .file a.active {
  background: var(--accent-light);
  color: var(--accent);
}

.sidebar-overlay {
  display: none;
  position: fixed;
  inset: 0;
  background: rgba(0,0,0,0.4);
  z-index: 99;
}

.sidebar-overlay.visible { display: block; }

/* ============ Content ============ */
.content { margin-left: var(--sidebar-width); flex: 1; min-width: 0; }

.top-bar {
  display: flex;
  justify-content: flex-end;
  padding: 8px 24px;
  border-bottom: 1px solid var(--border);
}

.menu-toggle, .theme-toggle {
  background: none;
  border: 1px solid var(--border);
  border-radius: 6px;
  color: var(--text);
  cursor: pointer;
  padding: 2px 8px;
}

.menu-toggle { display: none; margin-right: auto; }

.page-content {
  max-width: var(--content-max-width);
  padding: 32px 48px 64px;
}

.page-content pre {
  background: var(--code-bg);
  border: 1px solid var(--code-border);
  border-radius: 6px;
  padding: 16px;
  overflow-x: auto;
}

.page-content table { border-collapse: collapse; }
.page-content th, .page-content td { border: 1px solid var(--border); padding: 6px 12px; }

@media (max-width: 768px) {
  .sidebar { transform: translateX(-100%); transition: transform 0.2s; }
  .sidebar.open { transform: none; }
  .content { margin-left: 0; }
  .menu-toggle { display: inline-block; }
  .page-content { padding: 24px 16px 48px; }
}
`

// layoutJS drives the theme toggle, the mobile sidebar and the page filter.
const layoutJS = `(function() {
  "use strict";

  var html = document.documentElement;

  // ===== Theme toggle =====
  function setTheme(theme) {
    html.setAttribute("data-theme", theme);
    try { localStorage.setItem("codenotes-theme", theme); } catch (e) {}
  }

  var stored = null;
  try { stored = localStorage.getItem("codenotes-theme"); } catch (e) {}
  if (stored) {
    setTheme(stored);
  } else if (window.matchMedia && window.matchMedia("(prefers-color-scheme: dark)").matches) {
    setTheme("dark");
  }

  var themeToggle = document.getElementById("theme-toggle");
  if (themeToggle) {
    themeToggle.addEventListener("click", function() {
      setTheme(html.getAttribute("data-theme") === "dark" ? "light" : "dark");
    });
  }

  // ===== Sidebar toggle (mobile) =====
  var sidebar = document.getElementById("sidebar");
  var overlay = document.getElementById("sidebar-overlay");
  function toggleSidebar() {
    sidebar.classList.toggle("open");
    overlay.classList.toggle("visible");
  }
  var menuToggle = document.getElementById("menu-toggle");
  if (menuToggle) menuToggle.addEventListener("click", toggleSidebar);
  if (overlay) overlay.addEventListener("click", toggleSidebar);

  // ===== Directory tree toggle =====
  document.querySelectorAll(".dir-toggle").forEach(function(toggle) {
    toggle.addEventListener("click", function() {
      this.parentElement.classList.toggle("expanded");
    });
  });

  // ===== Page filter =====
  var searchInput = document.getElementById("search-input");
  var tree = document.getElementById("sidebar-tree");
  if (searchInput && tree) {
    searchInput.addEventListener("input", function() {
      var query = this.value.toLowerCase().trim();
      tree.querySelectorAll("li.file").forEach(function(item) {
        var match = query === "" || item.textContent.toLowerCase().indexOf(query) !== -1;
        item.classList.toggle("hidden", !match);
      });
      if (query !== "") {
        tree.querySelectorAll("li.dir").forEach(function(dir) {
          dir.classList.toggle("expanded", dir.querySelector("li.file:not(.hidden)") !== null);
        });
      }
    });
  }
})();
`
