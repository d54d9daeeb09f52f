package heuristic

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2025, 1, 2, 9, 30, 0, 0, time.Local)

func TestExtract_LetterheadDateReplacesCreationDate(t *testing.T) {
	text := "Vodafone GmbH\nDüsseldorf, 15.03.2024\nIhre Rechnung\nRechnungsnummer: RE-2024-001"
	r := NewExtractor(nil, nil).Extract(text, "scan.pdf", created)

	assert.Equal(t, "2025-01-02", r.Timestamp)
	assert.Equal(t, TimestampCreated, r.TimestampSource)
	assert.Equal(t, "2024-03-15", r.LetterheadDate)
	assert.Equal(t, "2024-03-15", r.DateComponent())
	assert.Equal(t, "2024-03-15_Vodafone_Rechnung_RE-2024-001.pdf", r.Filename)
	assert.NotContains(t, r.Filename, "2025-01-02")
	assert.True(t, r.Signal)
}

func TestExtract_NoMatchKeepsOriginalName(t *testing.T) {
	for _, name := range []string{"Scan 001.pdf", "notiz.txt", "x"} {
		r := NewExtractor(nil, nil).Extract("lorem ipsum dolor sit amet, consetetur sadipscing", name, created)
		assert.Equal(t, name, r.Filename)
		assert.False(t, r.Signal)
	}
}

func TestExtract_TimestampAloneIsNoSignal(t *testing.T) {
	r := NewExtractor(nil, nil).Extract("nichts zu finden", "2024-05-06_07-08-09.pdf", created)
	assert.Equal(t, "2024-05-06_07-08-09", r.Timestamp)
	assert.False(t, r.Signal)
	assert.Equal(t, "2024-05-06_07-08-09.pdf", r.Filename)
}

func TestExtract_ScannerTimestamp(t *testing.T) {
	r := NewExtractor(nil, nil).Extract("Allianz Versicherungs-AG\nIhr Vertrag", "2024-05-06_07-08-09.pdf", created)
	assert.Equal(t, TimestampScanner, r.TimestampSource)
	assert.Equal(t, "2024-05-06_07-08-09_Allianz_Vertrag.pdf", r.Filename)
}

func TestExtract_LetterheadRegion(t *testing.T) {
	text := "Telekom Rechnung\n" + strings.Repeat("ä", LetterheadRunes) + " 15.03.2024"
	r := NewExtractor(nil, nil).Extract(text, "scan.pdf", time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local))
	assert.Empty(t, r.LetterheadDate)
	assert.Equal(t, "2024-01-02_Telekom_Rechnung.pdf", r.Filename)
}

func TestExtract_Dates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"iso fallback", "Barmer\n2023-11-30 Bescheid", "2023-11-30"},
		{"german preferred over iso", "Stand 2023-01-01\nBerlin, 15.03.2024", "2024-03-15"},
		{"impossible date skipped", "Barmer 31.02.2024 und 01.03.2024", "2024-03-01"},
		{"none", "Barmer Bescheid", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewExtractor(nil, nil).Extract(tt.text, "a.pdf", time.Time{})
			assert.Equal(t, tt.want, r.LetterheadDate)
		})
	}
}

func TestExtract_ZeroCreationTime(t *testing.T) {
	r := NewExtractor(nil, nil).Extract("Barmer Bescheid", "a.pdf", time.Time{})
	assert.Empty(t, r.Timestamp)
	assert.Equal(t, "Barmer_Bescheid.pdf", r.Filename)
}

func TestExtract_Reference(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"invoice", "Rechnungs-Nr.: 2024/0815", "2024/0815"},
		{"too short falls through", "Rechnungsnummer: AB\nKundennummer: K-12345", "K-12345"},
		{"case insensitive", "invoice no.: inv-77", "inv-77"},
		{"policy", "Versicherungs-Nr. 44-1234", "44-1234"},
		{"file reference", "Aktenzeichen: 3 C 123/24", ""},
		{"none", "ohne Nummer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewExtractor(nil, nil).Extract(tt.text, "a.pdf", time.Time{})
			assert.Equal(t, tt.want, r.Reference)
		})
	}
}

func TestExtract_CompanyPriority(t *testing.T) {
	r := NewExtractor(nil, nil).Extract("Kontoauszug der Deutsche Bank, Zahlung an Vodafone", "a.pdf", time.Time{})
	assert.Equal(t, "Vodafone", r.Company)
	assert.Equal(t, "Kontoauszug", r.DocumentType)
}

func TestExtract_MultiWordCompany(t *testing.T) {
	r := NewExtractor(nil, nil).Extract("Deutsche Bahn Fahrkarte", "ticket.pdf", time.Time{})
	require.Equal(t, "Deutsche Bahn", r.Company)
	assert.Equal(t, "Deutsche_Bahn.pdf", r.Filename)
}

func TestExtract_DocumentTypeSynonyms(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Invoice", "Rechnung"},
		{"Contract", "Vertrag"},
		{"Ihre Kündigung", "Kuendigung"},
		{"Rechnung und Vertrag", "Rechnung"},
		{"rechnung", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r := NewExtractor(nil, nil).Extract(tt.text, "a.pdf", time.Time{})
			assert.Equal(t, tt.want, r.DocumentType)
		})
	}
}
