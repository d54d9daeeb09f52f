// Package category maps a company name onto the folder placement table.
package category

import (
	"strings"

	"github.com/joseph-ayodele/docnamer/internal/catalog"
)

// Entry is one category with its target folder.
type Entry struct {
	Name   string
	Folder string
}

type Classifier struct {
	table []catalog.Category
}

// NewClassifier uses catalog.Default() when cat is nil.
func NewClassifier(cat *catalog.Catalog) *Classifier {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Classifier{table: cat.Categories}
}

// Classify returns the first category in table order where the company and a
// listed company contain one another. Matching is case-sensitive and treats
// underscores in company as spaces, so sanitized names still match.
func (c *Classifier) Classify(company string) (Entry, bool) {
	name := strings.TrimSpace(strings.ReplaceAll(company, "_", " "))
	if name == "" {
		return Entry{}, false
	}
	for _, row := range c.table {
		for _, listed := range row.Companies {
			if listed == "" {
				continue
			}
			if strings.Contains(listed, name) || strings.Contains(name, listed) {
				return Entry{Name: row.Name, Folder: row.Folder}, true
			}
		}
	}
	return Entry{}, false
}

// Categories lists every category in table order.
func (c *Classifier) Categories() []Entry {
	out := make([]Entry, 0, len(c.table))
	for _, row := range c.table {
		out = append(out, Entry{Name: row.Name, Folder: row.Folder})
	}
	return out
}

// ByFolder finds the category stored under folder.
func (c *Classifier) ByFolder(folder string) (Entry, bool) {
	for _, row := range c.table {
		if row.Folder == folder {
			return Entry{Name: row.Name, Folder: row.Folder}, true
		}
	}
	return Entry{}, false
}
