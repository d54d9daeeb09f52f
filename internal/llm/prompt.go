package llm

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/docnamer/constants"
)

// MaxPromptChars is how much document text goes into a prompt.
const MaxPromptChars = 2000

const analysisSystemPrompt = "Du bist ein Experte für Dokumentenanalyse. " +
	"Du analysierst deutsche Geschäftsdokumente und extrahierst strukturierte Metadaten. " +
	"Antworte IMMER ausschließlich mit einem JSON-Objekt, ohne Erklärungen."

const dateSystemPrompt = "Du bestimmst das Briefdatum eines Dokuments, also das Datum im Briefkopf, " +
	"an dem das Dokument erstellt wurde. Vertragslaufzeiten, Fälligkeiten und andere Daten im Text sind nicht gemeint. " +
	"Antworte ausschließlich mit genau einem Datum im Format TT.MM.JJJJ aus der vorgegebenen Liste."

// BuildAnalysisMessages composes the metadata extraction prompt.
func BuildAnalysisMessages(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: analysisSystemPrompt},
		{Role: RoleUser, Content: BuildAnalysisUserPrompt(text)},
	}
}

// BuildAnalysisUserPrompt lists the categories, field rules and the truncated text.
func BuildAnalysisUserPrompt(text string) string {
	cats := constants.AsStringSlice()
	fixed := cats[:len(cats)-1]

	parts := []string{
		"Analysiere das folgende Dokument und gib ein JSON-Objekt mit diesen Feldern zurück:",
		`- "category": genau eine dieser Kategorien: ` + strings.Join(fixed, ", ") +
			`. Wenn keine passt, verwende "` + string(constants.Sonstiges) + `".`,
		`- "company": Name des Absenders bzw. der Organisation, ohne Rechtsform (GmbH, AG, SE, KG usw.), wenn möglich.`,
		`- "documentType": Art des Dokuments, z. B. Rechnung, Vertrag, Bescheid, Mahnung, Kündigung, Kontoauszug.`,
		`- "keywords": höchstens 5 kurze Schlagwörter, je 2 bis 15 Zeichen, nur Buchstaben, Ziffern, Bindestrich oder Unterstrich.`,
		`- "referenceNumber": Rechnungs-, Kunden-, Vertrags- oder Aktenzeichen, falls vorhanden, sonst weglassen.`,
		`- "confidence": deine Sicherheit als Zahl zwischen 0 und 1.`,
		"Antworte nur mit JSON.",
		"",
		"Dokumenttext:",
		TruncateRunes(strings.TrimSpace(text), MaxPromptChars),
	}
	return strings.Join(parts, "\n")
}

// BuildDateMessages composes the letter-date selection prompt.
func BuildDateMessages(text string, candidates []string) []Message {
	var b strings.Builder
	b.WriteString("Mögliche Daten: ")
	b.WriteString(strings.Join(candidates, ", "))
	b.WriteString("\n\nWelches dieser Daten ist das Briefdatum? Antworte nur mit dem Datum.\n\nDokumenttext:\n")
	b.WriteString(TruncateRunes(strings.TrimSpace(text), MaxPromptChars))
	return []Message{
		{Role: RoleSystem, Content: dateSystemPrompt},
		{Role: RoleUser, Content: b.String()},
	}
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
