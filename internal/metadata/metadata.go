// Package metadata defines the result shape shared by the heuristic and AI
// extractors and the tagged outcome of an extraction attempt.
package metadata

import "fmt"

// DefaultConfidence is assumed when a source reports none. Heuristic
// results are compared at this level.
const DefaultConfidence = 0.5

// MaxKeywords bounds DocumentMetadata.Keywords.
const MaxKeywords = 5

// DocumentMetadata is built once per extractor run and not mutated afterwards.
type DocumentMetadata struct {
	Category        string   `json:"category"`
	Company         string   `json:"company"`
	DocumentType    string   `json:"documentType"`
	Keywords        []string `json:"keywords"`
	ReferenceNumber string   `json:"referenceNumber,omitempty"`
	Confidence      float64  `json:"confidence"`

	// RawResponse is diagnostic only.
	RawResponse string `json:"-"`
}

// HasSignal reports whether the metadata can contribute to a filename.
func (m DocumentMetadata) HasSignal() bool {
	return m.Company != "" || m.DocumentType != "" || len(m.Keywords) > 0
}

// Status tags why a Result does or does not carry metadata.
type Status string

const (
	StatusFound         Status = "found"
	StatusNotConfigured Status = "not_configured"
	StatusFailed        Status = "failed"
	StatusUnusable      Status = "unusable"
)

// Result is the outcome of one extraction attempt. Every status other than
// StatusFound is treated the same by callers: fall back.
type Result struct {
	Status   Status
	Metadata DocumentMetadata
	Err      error
}

// Found wraps usable metadata.
func Found(m DocumentMetadata) Result {
	return Result{Status: StatusFound, Metadata: m}
}

// Absent builds a result without metadata.
func Absent(status Status, err error) Result {
	return Result{Status: status, Err: err}
}

// OK reports whether the result carries metadata.
func (r Result) OK() bool { return r.Status == StatusFound }

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Status, r.Err)
	}
	return string(r.Status)
}
