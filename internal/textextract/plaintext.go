package textextract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/joseph-ayodele/docnamer/internal/common"
)

// readPlainText decodes UTF-8 and falls back to Latin-1 when the bytes are
// not valid UTF-8 or already contain the replacement character.
func readPlainText(path string) (Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read text: %v", common.ErrExtraction, err)
	}
	raw = trimBOM(raw)

	if utf8.Valid(raw) && !strings.ContainsRune(string(raw), utf8.RuneError) {
		return Result{Text: string(raw), Method: MethodPlain, Pages: 1}, nil
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: latin-1 decode: %v", common.ErrExtraction, err)
	}
	return Result{Text: string(text), Method: MethodLatin1, Pages: 1}, nil
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
