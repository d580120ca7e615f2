package config

import "slices"

// DefaultExcludes are glob patterns excluded from the build by default.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"**/.DS_Store",
	"**/*.swp",
	"**/*~",
}

// DefaultSyntaxes enables every supported comment style.
var DefaultSyntaxes = []string{"html", "block", "line", "sql"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SourceDir: "docs",
		OutputDir: "build",
		Title:     "Documentation",
		Include:   []string{"**"},
		Exclude:   slices.Clone(DefaultExcludes),
		Clean:     true,
		Annotations: AnnotationConfig{
			ContainerSelector: "body",
			CodeSelector:      "pre > code",
			MarkerDisplay:     DisplayNumber,
			Placeholder:       "No explanation provided.",
			OrdinalLists:      true,
			Syntaxes:          slices.Clone(DefaultSyntaxes),
		},
		Watch: WatchConfig{
			DebounceMS: 100,
			Ignore:     []string{".git", "node_modules", ".idea", "*.swp", "*.tmp", "*~"},
		},
		Serve: ServeConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogText,
		},
	}
}
