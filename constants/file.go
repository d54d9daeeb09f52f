package constants

import "strings"

// Format is the extraction route chosen for a file.
type Format string

const (
	PDF     Format = "PDF"
	IMAGE   Format = "IMAGE"
	TXT     Format = "TXT"
	DOCX    Format = "DOCX"
	PAGES   Format = "PAGES"
	HTML    Format = "HTML"
	EML     Format = "EML"
	UNKNOWN Format = ""
)

// FileTypes lists every supported format tag.
var FileTypes = []Format{PDF, IMAGE, TXT, DOCX, PAGES, HTML, EML}

var extToFormat = map[string]Format{
	"pdf":   PDF,
	"png":   IMAGE,
	"jpg":   IMAGE,
	"jpeg":  IMAGE,
	"tif":   IMAGE,
	"tiff":  IMAGE,
	"txt":   TXT,
	"docx":  DOCX,
	"pages": PAGES,
	"html":  HTML,
	"htm":   HTML,
	"eml":   EML,
}

// AllowedExtensions holds the extensions picked up by batch and watch mode.
var AllowedExtensions = func() map[string]struct{} {
	m := make(map[string]struct{}, len(extToFormat))
	for ext := range extToFormat {
		m[ext] = struct{}{}
	}
	return m
}()

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the format tag for ext, or UNKNOWN.
func MapExtToFormat(ext string) Format {
	return extToFormat[NormalizeExt(ext)]
}

// IsSupportedExt reports whether ext has an extraction route.
func IsSupportedExt(ext string) bool {
	return MapExtToFormat(ext) != UNKNOWN
}
