package segmenter

import (
	"embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// patternSpec is one entry of the embedded pattern file.
type patternSpec struct {
	Type       string  `yaml:"type"`
	Regex      string  `yaml:"regex"`
	Weight     int     `yaml:"weight"`
	Confidence float64 `yaml:"confidence"`
}

type profileFile struct {
	Patterns []patternSpec `yaml:"patterns"`
}

// Pattern is a compiled boundary detector.
type Pattern struct {
	Type       string
	Weight     int
	Confidence float64
	re         *regexp.Regexp
}

// LoadPatterns compiles the embedded pattern ensemble. Regexes are RE2,
// so matching stays linear in the document size.
func LoadPatterns() ([]Pattern, error) {
	data, err := configFiles.ReadFile("config/patterns.yaml")
	if err != nil {
		return nil, fmt.Errorf("read patterns.yaml: %w", err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal patterns.yaml: %w", err)
	}

	patterns := make([]Pattern, 0, len(file.Patterns))
	for _, spec := range file.Patterns {
		re, err := regexp.Compile(spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern: %w", spec.Type, err)
		}
		patterns = append(patterns, Pattern{
			Type:       spec.Type,
			Weight:     spec.Weight,
			Confidence: spec.Confidence,
			re:         re,
		})
	}

	return patterns, nil
}
