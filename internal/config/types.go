package config

// MarkerDisplay controls what the visible part of an annotation shows.
type MarkerDisplay string

const (
	DisplayNumber MarkerDisplay = "number"
	DisplaySource MarkerDisplay = "source"
)

// LogFormat selects the log output encoding.
type LogFormat string

const (
	LogText   LogFormat = "text"
	LogJSON   LogFormat = "json"
	LogLogfmt LogFormat = "logfmt"
)

// Config is the top-level codenotes configuration, corresponding to .codenotes.yml.
type Config struct {
	SourceDir   string           `yaml:"source_dir" koanf:"source_dir"`
	OutputDir   string           `yaml:"output_dir" koanf:"output_dir"`
	Title       string           `yaml:"title" koanf:"title"`
	Include     []string         `yaml:"include" koanf:"include"`
	Exclude     []string         `yaml:"exclude" koanf:"exclude"`
	Clean       bool             `yaml:"clean" koanf:"clean"`
	Annotations AnnotationConfig `yaml:"annotations" koanf:"annotations"`
	Watch       WatchConfig      `yaml:"watch" koanf:"watch"`
	Serve       ServeConfig      `yaml:"serve" koanf:"serve"`
	Log         LogConfig        `yaml:"log" koanf:"log"`
}

// AnnotationConfig controls how code blocks are annotated.
type AnnotationConfig struct {
	ContainerSelector string        `yaml:"container_selector" koanf:"container_selector"`
	CodeSelector      string        `yaml:"code_selector" koanf:"code_selector"`
	MarkerDisplay     MarkerDisplay `yaml:"marker_display" koanf:"marker_display"`
	Placeholder       string        `yaml:"placeholder" koanf:"placeholder"`
	InlineFallback    bool          `yaml:"inline_fallback" koanf:"inline_fallback"`
	OrdinalLists      bool          `yaml:"ordinal_lists" koanf:"ordinal_lists"`
	Syntaxes          []string      `yaml:"syntaxes" koanf:"syntaxes"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	DebounceMS int      `yaml:"debounce_ms" koanf:"debounce_ms"`
	Ignore     []string `yaml:"ignore" koanf:"ignore"`
}

// ServeConfig holds settings for the local server.
type ServeConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LogConfig holds logging settings. Command-line flags override them.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}
