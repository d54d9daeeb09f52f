package naming

import (
	"math/rand"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/docnamer/internal/metadata"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Rechnung", "Rechnung"},
		{"spaces to underscore", "Deutsche  Bank AG", "Deutsche_Bank_AG"},
		{"illegal stripped", `a<b>c:d"e|f?g*h`, "abcdefgh"},
		{"control stripped", "ab\x00c\x1fd\x7f", "abcd"},
		{"separators to hyphen", `RE/2024\001`, "RE-2024-001"},
		{"underscores collapsed", "a___b", "a_b"},
		{"trim underscores", "__a b__", "a_b"},
		{"tabs and newlines", "a\t\nb", "ab"},
		{"multi-line company", "Vodafone\nGmbH", "VodafoneGmbH"},
		{"tab", "a\tb", "ab"},
		{"space next to newline", "Deutsche \nBahn", "Deutsche_Bahn"},
		{"non-breaking space", "a\u00a0b", "a_b"},
		{"umlaut kept", "Württembergische", "Württembergische"},
		{"nfc", "Mu\u0308nchen", "M\u00fcnchen"},
		{"empty", "", ""},
		{"only junk", " <>?* ", ""},
		{"truncated", strings.Repeat("x", 60), strings.Repeat("x", 50)},
		{"truncation exposes underscore", strings.Repeat("x", 49) + " yz", strings.Repeat("x", 49)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Properties(t *testing.T) {
	pool := []rune("aZ09 _-./\\<>:\"|?*\t\n\r\x00\x01\x1f\x7f\u00e4\u00f6\u00fc\u00dfe\u0301\u00a0\u2000\u212b\u03a9\u6f22")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		n := rng.Intn(90)
		rs := make([]rune, n)
		for j := range rs {
			rs[j] = pool[rng.Intn(len(pool))]
		}
		in := string(rs)
		once := Sanitize(in)

		assert.Equal(t, once, Sanitize(once), "idempotence for %q", in)
		assert.LessOrEqual(t, Len(once), MaxComponentLen, "length for %q", in)
		assert.False(t, strings.ContainsAny(once, `<>:"|?*/\`), "illegal char in %q", once)
		for _, r := range once {
			assert.False(t, unicode.IsControl(r), "control char in %q", once)
			assert.False(t, unicode.IsSpace(r), "space in %q", once)
		}
		assert.False(t, strings.HasPrefix(once, "_") || strings.HasSuffix(once, "_"), "edge underscore in %q", once)
		assert.NotContains(t, once, "__")
	}
}

func TestFromAI_LowConfidenceOmitsCompany(t *testing.T) {
	m := metadata.DocumentMetadata{
		Company:      "Vodafone",
		Confidence:   0.3,
		DocumentType: "Rechnung",
		Keywords:     []string{},
	}
	assert.Equal(t, "2024-01-01_Rechnung.pdf", FromAI(m, "2024-01-01", ".pdf"))
}

func TestFromAI_FullComponents(t *testing.T) {
	m := metadata.DocumentMetadata{
		Company:         "Vodafone",
		Confidence:      0.9,
		DocumentType:    "Rechnung",
		Keywords:        []string{"Mobilfunk"},
		ReferenceNumber: "RE-2024-001",
	}
	assert.Equal(t, "2024-01-01_Vodafone_Rechnung_Mobilfunk_RE-2024-001.pdf", FromAI(m, "2024-01-01", ".pdf"))
}

func TestFromAI_Rules(t *testing.T) {
	t.Run("confidence exactly at threshold keeps company", func(t *testing.T) {
		m := metadata.DocumentMetadata{Company: "AXA", Confidence: 0.5, DocumentType: "Vertrag"}
		assert.Equal(t, "2024-02-02_AXA_Vertrag.docx", FromAI(m, "2024-02-02", ".docx"))
	})
	t.Run("at most three keywords, duplicates skipped", func(t *testing.T) {
		m := metadata.DocumentMetadata{
			Company:      "Telekom",
			Confidence:   0.8,
			DocumentType: "Rechnung",
			Keywords:     []string{"Telekom", "Rechnung", "Festnetz", "DSL", "Router", "Extra"},
		}
		assert.Equal(t, "2024-03-01_Telekom_Rechnung_Festnetz_DSL_Router.pdf", FromAI(m, "2024-03-01", ".pdf"))
	})
	t.Run("keyword duplicate check is case-sensitive", func(t *testing.T) {
		m := metadata.DocumentMetadata{
			Company:      "Telekom",
			Confidence:   0.8,
			DocumentType: "Rechnung",
			Keywords:     []string{"telekom", "rechnung", "Telekom"},
		}
		assert.Equal(t, "2024-03-01_Telekom_Rechnung_telekom_rechnung.pdf", FromAI(m, "2024-03-01", ".pdf"))
	})
	t.Run("low confidence company still suppresses keyword copy", func(t *testing.T) {
		m := metadata.DocumentMetadata{
			Company:      "Vodafone",
			Confidence:   0.2,
			DocumentType: "Rechnung",
			Keywords:     []string{"Vodafone", "Mobilfunk"},
		}
		assert.Equal(t, "2024-01-01_Rechnung_Mobilfunk.pdf", FromAI(m, "2024-01-01", ".pdf"))
	})
	t.Run("long reference dropped", func(t *testing.T) {
		m := metadata.DocumentMetadata{
			DocumentType:    "Vertrag",
			ReferenceNumber: strings.Repeat("9", 31),
			Confidence:      1,
		}
		assert.Equal(t, "2024-01-01_Vertrag.pdf", FromAI(m, "2024-01-01", ".pdf"))
	})
	t.Run("reference of 30 kept", func(t *testing.T) {
		ref := strings.Repeat("7", 30)
		m := metadata.DocumentMetadata{DocumentType: "Vertrag", ReferenceNumber: ref, Confidence: 1}
		assert.Equal(t, "2024-01-01_Vertrag_"+ref+".pdf", FromAI(m, "2024-01-01", ".pdf"))
	})
	t.Run("empty timestamp dropped", func(t *testing.T) {
		m := metadata.DocumentMetadata{DocumentType: "Mahnung", Confidence: 0.5}
		assert.Equal(t, "Mahnung.pdf", FromAI(m, "", ".pdf"))
	})
	t.Run("company with spaces", func(t *testing.T) {
		m := metadata.DocumentMetadata{Company: "Deutsche Bank", DocumentType: "Kontoauszug", Confidence: 0.7}
		assert.Equal(t, "2024-05-31_Deutsche_Bank_Kontoauszug.pdf", FromAI(m, "2024-05-31", ".pdf"))
	})
}

func TestFromComponents(t *testing.T) {
	assert.Equal(t, "scan.pdf", FromComponents(nil, "scan.pdf"))
	assert.Equal(t, "scan.pdf", FromComponents(Components{"", ""}, "scan.pdf"))
	assert.Equal(t, "2024-03-15_Vodafone_Rechnung.pdf",
		FromComponents(Components{"2024-03-15", "Vodafone", "Rechnung"}, "scan.pdf"))
	assert.Equal(t, "2024-03-15_Deutsche_Bank.PDF",
		FromComponents(Components{"2024-03-15", "Deutsche Bank"}, "x.PDF"))
	assert.Equal(t, "notes.txt", FromComponents(Components{" <> ", "?"}, "notes.txt"))

	long := strings.Repeat("R", 40)
	got := FromComponents(Components{"2024-03-15_10-20-30", "Techniker_Krankenkasse", "Bescheid", long}, "a.pdf")
	assert.Equal(t, "2024-03-15_10-20-30_Techniker_Krankenkasse_Bescheid_"+long+".pdf", got)
}

func TestComponents_Join(t *testing.T) {
	assert.Equal(t, "a_b", Components{"", "a", "", "b", ""}.Join())
	assert.Equal(t, "", Components{}.Join())
	assert.True(t, Components{"", ""}.Empty())
	assert.False(t, Components{"", "x"}.Empty())
}
