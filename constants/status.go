package constants

// Outcome is what happened to a single file in a batch or watch run.
type Outcome string

const (
	OutcomePreview   Outcome = "PREVIEW"   // new name suggested, nothing touched
	OutcomeRenamed   Outcome = "RENAMED"   // file renamed on disk
	OutcomeUnchanged Outcome = "UNCHANGED" // suggestion equals the current name
	OutcomeSkipped   Outcome = "SKIPPED"   // unsupported, too little text, or target exists
	OutcomeFailed    Outcome = "FAILED"
)

// Source names the path that produced a filename.
type Source string

const (
	SourceAI        Source = "ai"
	SourceHeuristic Source = "heuristic"
	SourceOriginal  Source = "original"
)
