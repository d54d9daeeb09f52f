package textextract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// NativePDFReader reads the text layer with ledongthuc/pdf and takes the page
// count from pdfcpu, which tolerates more malformed files.
type NativePDFReader struct{}

func (NativePDFReader) ReadText(ctx context.Context, path string, maxPages int) (text string, pages int, err error) {
	pages, countErr := pageCount(path)

	// The text layer parser panics on some broken xref tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		if countErr != nil {
			return "", 0, fmt.Errorf("open pdf: %w (pdfcpu: %v)", err, countErr)
		}
		return "", pages, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	if countErr != nil || pages == 0 {
		pages = n
	}
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", pages, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(t)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), pages, nil
}

func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf context: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("ensure page count: %w", err)
	}
	return pctx.PageCount, nil
}
