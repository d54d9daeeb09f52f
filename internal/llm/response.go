package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/docnamer/constants"
	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/metadata"
	"github.com/joseph-ayodele/docnamer/internal/naming"
)

const (
	MinKeywordLen = 2
	MaxKeywordLen = 20
)

// StripCodeFence removes a leading ```lang line and a trailing ``` marker.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		// single line fence: ```{...}```
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// fieldSynonyms is walked in order: when several aliases of one field are
// present the earliest listed wins, and the canonical key beats them all.
var fieldSynonyms = []struct{ alias, field string }{
	{"document_type", "documentType"},
	{"doctype", "documentType"},
	{"type", "documentType"},
	{"organization", "company"},
	{"organisation", "company"},
	{"sender", "company"},
	{"reference_number", "referenceNumber"},
	{"reference", "referenceNumber"},
	{"ref", "referenceNumber"},
}

// NormalizeAnalysis coerces a decoded model answer into the analysis shape:
// - renames known synonyms and removes unknown keys
// - sanitizes every string field
// - filters keywords to the 2..20 character window, at most 5
// - defaults confidence to 0.5 and clamps it into [0,1]
// It returns the notes describing what was changed.
func NormalizeAnalysis(m map[string]any) (map[string]any, []string) {
	notes := make([]string, 0, 4)

	for _, syn := range fieldSynonyms {
		if v, ok := m[syn.alias]; ok {
			if _, exists := m[syn.field]; !exists {
				m[syn.field] = v
			}
			delete(m, syn.alias)
			notes = append(notes, syn.alias+"->"+syn.field)
		}
	}

	out := map[string]any{}

	category, _ := coerceString(m["category"])
	if category = naming.Sanitize(category); category == "" {
		category = string(constants.Sonstiges)
		notes = append(notes, "category(default)")
	}
	out["category"] = category

	company, _ := coerceString(m["company"])
	out["company"] = naming.Sanitize(company)

	docType, _ := coerceString(m["documentType"])
	out["documentType"] = naming.Sanitize(docType)

	if ref, ok := coerceString(m["referenceNumber"]); ok {
		if ref = naming.Sanitize(ref); ref != "" {
			out["referenceNumber"] = ref
		}
	}

	keywords, dropped := coerceKeywords(m["keywords"])
	if dropped > 0 {
		notes = append(notes, fmt.Sprintf("keywords(dropped %d)", dropped))
	}
	out["keywords"] = keywords

	conf, note := coerceConfidence(m["confidence"])
	if note != "" {
		notes = append(notes, note)
	}
	out["confidence"] = conf

	known := []string{"category", "company", "documentType", "keywords", "referenceNumber", "confidence"}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if !slices.Contains(known, k) {
			notes = append(notes, k+"(unknown)")
		}
	}
	return out, notes
}

// ParseAnalysis turns raw completion content into DocumentMetadata.
// Parse failures and schema mismatches are AppErrors coded CodeValidation
// that wrap common.ErrValidation.
func ParseAnalysis(content string, logger *slog.Logger) (metadata.DocumentMetadata, error) {
	if logger == nil {
		logger = slog.Default()
	}
	body := StripCodeFence(content)
	if body == "" {
		return metadata.DocumentMetadata{}, invalidAnswer("empty content")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return metadata.DocumentMetadata{}, invalidAnswer("decode: %v", err)
	}

	schema, err := analysisSchema()
	if err != nil {
		return metadata.DocumentMetadata{}, fmt.Errorf("analysis schema: %w", err)
	}
	strictErr := ValidateJSON(schema, []byte(body))

	normalized, notes := NormalizeAnalysis(raw)
	cleaned, err := json.Marshal(normalized)
	if err != nil {
		return metadata.DocumentMetadata{}, fmt.Errorf("encode normalized: %w", err)
	}
	if err := ValidateJSON(schema, cleaned); err != nil {
		return metadata.DocumentMetadata{}, invalidAnswer("%v", err)
	}
	if strictErr != nil || len(notes) > 0 {
		logger.Warn("llm.analyze.lenient_normalize_applied", "notes", notes, "strict_error", errString(strictErr))
	}

	var out metadata.DocumentMetadata
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return metadata.DocumentMetadata{}, invalidAnswer("unmarshal fields: %v", err)
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	out.RawResponse = content
	return out, nil
}

func invalidAnswer(format string, args ...any) error {
	return common.NewAppError(common.CodeValidation, fmt.Sprintf(format, args...), common.ErrValidation)
}

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func coerceKeywords(v any) ([]string, int) {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case string:
		for _, s := range strings.Split(t, ",") {
			items = append(items, s)
		}
	}

	out := make([]string, 0, metadata.MaxKeywords)
	dropped := 0
	for _, it := range items {
		s, ok := coerceString(it)
		if !ok {
			dropped++
			continue
		}
		s = naming.Sanitize(s)
		n := naming.Len(s)
		if n < MinKeywordLen || n > MaxKeywordLen || slices.Contains(out, s) {
			dropped++
			continue
		}
		if len(out) == metadata.MaxKeywords {
			dropped++
			continue
		}
		out = append(out, s)
	}
	return out, dropped
}

func coerceConfidence(v any) (float64, string) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return metadata.DefaultConfidence, "confidence(non-numeric)"
		}
		f = p
	case nil:
		return metadata.DefaultConfidence, "confidence(missing)"
	default:
		return metadata.DefaultConfidence, "confidence(type)"
	}
	if math.IsNaN(f) {
		return metadata.DefaultConfidence, "confidence(nan)"
	}
	if f < 0 {
		return 0, "confidence(clamped)"
	}
	if f > 1 {
		return 1, "confidence(clamped)"
	}
	return f, ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
