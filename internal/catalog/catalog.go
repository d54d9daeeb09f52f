// Package catalog holds the ordered lookup tables used by the heuristic
// extractor and the category classifier. The tables are an embedded,
// immutable data asset; Default parses them once per process.
package catalog

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// DocumentType maps a surface keyword found in text to a canonical label.
type DocumentType struct {
	Match string `yaml:"match"`
	Label string `yaml:"label"`
}

// ReferencePattern is a labeled pattern whose first group captures the value.
type ReferencePattern struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// Regexp returns the compiled, case-insensitive pattern.
func (p ReferencePattern) Regexp() *regexp.Regexp { return p.re }

// Category is one row of the folder placement table.
type Category struct {
	Name      string   `yaml:"name"`
	Folder    string   `yaml:"folder"`
	Companies []string `yaml:"companies"`
}

// Catalog is read-only after Parse returns.
type Catalog struct {
	Companies         []string           `yaml:"companies"`
	DocumentTypes     []DocumentType     `yaml:"document_types"`
	ReferencePatterns []ReferencePattern `yaml:"reference_patterns"`
	Categories        []Category         `yaml:"categories"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. The embedded asset is covered by
// tests, so a parse failure here is a build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded tables invalid: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, dt := range c.DocumentTypes {
		if strings.TrimSpace(dt.Match) == "" || strings.TrimSpace(dt.Label) == "" {
			return nil, fmt.Errorf("document_types[%d]: match and label are required", i)
		}
	}
	for i := range c.ReferencePatterns {
		p := &c.ReferencePatterns[i]
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("reference_patterns[%d] %q: %w", i, p.Name, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("reference_patterns[%d] %q: needs a capture group", i, p.Name)
		}
		p.re = re
	}
	for i, cat := range c.Categories {
		if cat.Name == "" || cat.Folder == "" {
			return nil, fmt.Errorf("categories[%d]: name and folder are required", i)
		}
	}
	return &c, nil
}
