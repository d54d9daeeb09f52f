package textextract

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mnako/letters"

	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/dates"
)

var reHorizontalSpace = regexp.MustCompile(`[ \t\p{Zs}]+`)

func readHTML(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: open html: %v", common.ErrExtraction, err)
	}
	defer f.Close()

	text, err := htmlText(f)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Method: MethodHTML, Pages: 1}, nil
}

// htmlText returns the visible text of an HTML document.
func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", common.ErrExtraction, err)
	}
	doc.Find("script, style, noscript, head").Remove()
	doc.Find("br, p, div, tr, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return tidyLines(doc.Text()), nil
}

// readEML renders subject, sender and date as a letterhead, followed by the
// text body or, failing that, the text of the HTML body.
func readEML(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: open eml: %v", common.ErrExtraction, err)
	}
	defer f.Close()

	email, err := letters.ParseEmail(f)
	if err != nil {
		return Result{}, fmt.Errorf("%w: parse eml: %v", common.ErrExtraction, err)
	}

	var b strings.Builder
	if len(email.Headers.From) > 0 {
		from := email.Headers.From[0]
		if from.Name != "" {
			fmt.Fprintf(&b, "Von: %s <%s>\n", from.Name, from.Address)
		} else {
			fmt.Fprintf(&b, "Von: %s\n", from.Address)
		}
	}
	if !email.Headers.Date.IsZero() {
		fmt.Fprintf(&b, "Datum: %s\n", email.Headers.Date.Format(dates.Layout))
	}
	if email.Headers.Subject != "" {
		fmt.Fprintf(&b, "Betreff: %s\n", email.Headers.Subject)
	}
	b.WriteString("\n")

	res := Result{Method: MethodEML, Pages: 1}
	switch {
	case strings.TrimSpace(email.Text) != "":
		b.WriteString(email.Text)
	case email.HTML != "":
		body, err := htmlText(strings.NewReader(email.HTML))
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		}
		b.WriteString(body)
	}
	res.Text = strings.TrimSpace(b.String())
	return res, nil
}

func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(reHorizontalSpace.ReplaceAllString(ln, " "))
	}
	return strings.TrimSpace(collapseBlankLines(strings.Join(lines, "\n")))
}
