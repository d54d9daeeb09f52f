package pipeline

import (
	"path/filepath"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/heuristic"
	"github.com/joseph-ayodele/docnamer/internal/metadata"
)

// Suggestion is the outcome of running one file through the pipeline.
type Suggestion struct {
	Path         string
	OriginalName string
	Filename     string
	Source       constants.Source
	Outcome      constants.Outcome
	Reason       string

	// Metadata is set only when the AI extractor produced usable output.
	Metadata   *metadata.DocumentMetadata
	AIStatus   metadata.Status
	AICategory constants.Category
	Heuristic  heuristic.Result

	// Category and Folder come from the company classifier; empty when no row matched.
	Category string
	Folder   string

	TextLen   int
	Method    string
	Warnings  []string
	RequestID string

	// Err is set by callers that act on the suggestion, e.g. a failed rename.
	Err error
}

// Target is the path the file would have after renaming.
func (s Suggestion) Target() string {
	return filepath.Join(filepath.Dir(s.Path), s.Filename)
}

// Changed reports whether the suggested name differs from the current one.
func (s Suggestion) Changed() bool {
	return s.Filename != "" && s.Filename != s.OriginalName
}
