package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/joseph-ayodele/docnamer/internal/common"
)

// pagesIndexEntry is the content index inside a zipped Pages document.
const pagesIndexEntry = "index.xml"

func readDOCX(path string) (Result, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: open docx: %v", common.ErrExtraction, err)
	}
	defer r.Close()

	text, err := xmlText(strings.NewReader(r.Editable().GetContent()))
	if err != nil {
		return Result{}, fmt.Errorf("%w: docx body: %v", common.ErrExtraction, err)
	}
	return Result{Text: text, Method: MethodDOCX, Pages: 1}, nil
}

func readPages(path string) (Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: open pages archive: %v", common.ErrExtraction, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != pagesIndexEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Result{}, fmt.Errorf("%w: open %s: %v", common.ErrExtraction, pagesIndexEntry, err)
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return Result{}, fmt.Errorf("%w: read %s: %v", common.ErrExtraction, pagesIndexEntry, err)
		}

		res := Result{Method: MethodPages, Pages: 1}
		text, err := xmlText(bytes.NewReader(raw))
		if err != nil {
			res.Text = string(raw)
			res.Warnings = append(res.Warnings, "pages index is not well-formed xml, using raw contents")
			return res, nil
		}
		res.Text = text
		return res, nil
	}
	return Result{}, fmt.Errorf("%w: %s not found (documents from Pages 5 and later are not supported)", common.ErrExtraction, pagesIndexEntry)
}

// xmlText concatenates the character data of an XML document. Paragraph and
// line-break elements end a line; tab elements become tabs.
func xmlText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(collapseBlankLines(sb.String())), nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := 0
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}
