package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
)

// sourceDirCandidates are directories checked, in order, for an existing
// documentation tree.
var sourceDirCandidates = []string{"docs", "doc", "documentation", "src/docs", "site"}

// detectSourceDir returns the first candidate directory that exists.
func detectSourceDir() string {
	for _, dir := range sourceDirCandidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "docs"
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to codenotes! Let's configure your documentation build.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Source directory.
	sourcePrompt := promptui.Prompt{
		Label:   "Documentation source directory",
		Default: detectSourceDir(),
	}
	sourceDir, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("source dir: %w", err)
	}
	cfg.SourceDir = filepath.Clean(sourceDir)

	// 2. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Build output directory",
		Default: cfg.OutputDir,
		Validate: func(s string) error {
			if filepath.Clean(s) == cfg.SourceDir {
				return fmt.Errorf("output must differ from the source directory")
			}
			return nil
		},
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	cfg.OutputDir = filepath.Clean(outputDir)

	// 3. Site title.
	titlePrompt := promptui.Prompt{
		Label:   "Site title",
		Default: cfg.Title,
	}
	if cfg.Title, err = titlePrompt.Run(); err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}

	// 4. Marker display.
	displayPrompt := promptui.Select{
		Label: "What should an annotation marker show",
		Items: []string{
			"number (the annotation number, e.g. 1)",
			"source (the comment as written, e.g. # (1)!)",
		},
	}
	displayIdx, _, err := displayPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("marker display: %w", err)
	}
	cfg.Annotations.MarkerDisplay = []MarkerDisplay{DisplayNumber, DisplaySource}[displayIdx]

	// 5. Comment styles.
	stylesPrompt := promptui.Prompt{
		Label:   "Comment styles to scan (comma-separated)",
		Default: strings.Join(DefaultSyntaxes, ","),
	}
	stylesStr, err := stylesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("comment styles: %w", err)
	}
	cfg.Annotations.Syntaxes = splitAndTrim(stylesStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace,
// dropping empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
