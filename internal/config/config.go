package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nested keys: CODENOTES_SERVE__PORT sets serve.port.
const EnvPrefix = "CODENOTES_"

// DefaultPath is the config file looked up when none is given.
const DefaultPath = ".codenotes.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CODENOTES_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Lists given in the file or env replace the defaults instead of being
	// merged into them element by element.
	err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           cfg,
			WeaklyTypedInput: true,
			ZeroFields:       true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps CODENOTES_SERVE__PORT to serve.port.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validDisplays is the set of recognized marker_display values.
var validDisplays = map[MarkerDisplay]bool{
	DisplayNumber: true,
	DisplaySource: true,
}

// validFormats is the set of recognized log formats.
var validFormats = map[LogFormat]bool{
	LogText:   true,
	LogJSON:   true,
	LogLogfmt: true,
}

var validLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if filepath.Clean(c.SourceDir) == filepath.Clean(c.OutputDir) {
		return fmt.Errorf("output_dir must differ from source_dir")
	}

	a := c.Annotations
	if a.MarkerDisplay != "" && !validDisplays[a.MarkerDisplay] {
		return fmt.Errorf("invalid annotations.marker_display %q: must be one of number, source", a.MarkerDisplay)
	}
	for _, s := range a.Syntaxes {
		if !slices.Contains(DefaultSyntaxes, s) {
			return fmt.Errorf("invalid annotations.syntaxes entry %q: must be one of %s", s, strings.Join(DefaultSyntaxes, ", "))
		}
	}
	for key, sel := range map[string]string{
		"annotations.container_selector": a.ContainerSelector,
		"annotations.code_selector":      a.CodeSelector,
	} {
		if sel == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(sel); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, sel, err)
		}
	}

	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must be non-negative")
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port must be between 0 and 65535")
	}
	if c.Log.Level != "" && !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Log.Format != "" && !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be one of text, json, logfmt", c.Log.Format)
	}

	return nil
}
